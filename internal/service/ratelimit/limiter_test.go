package ratelimit

import "testing"

func TestAllowWithinCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		if !l.Allow("k", 5, 0) {
			t.Fatalf("request %d denied within capacity", i)
		}
	}
	if l.Allow("k", 5, 0) {
		t.Fatalf("request beyond capacity allowed")
	}
}

func TestAllowIndependentKeys(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first request for a denied")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("second request for a allowed")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("first request for b denied")
	}
}
