package repository

import "testing"

func TestNormalizeRange(t *testing.T) {
	cases := []struct {
		in   string
		want HistoryRange
	}{
		{"", Range3Mo},
		{"1mo", Range1Mo},
		{"2y", Range2Y},
		{"5y", Range3Mo},
		{"garbage", Range3Mo},
	}
	for _, tc := range cases {
		if got := NormalizeRange(tc.in); got != tc.want {
			t.Fatalf("NormalizeRange(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRangeDays(t *testing.T) {
	if d := Range1Y.Days(); d != 365 {
		t.Fatalf("1y days = %d, want 365", d)
	}
	if d := HistoryRange("bogus").Days(); d != 91 {
		t.Fatalf("unknown range days = %d, want 91", d)
	}
}
