package indicators

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func TestPivotsWorkedExample(t *testing.T) {
	s := &models.PriceSeries{Symbol: "TEST", Bars: []models.PriceBar{{
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Open:      100, High: 110, Low: 90, Close: 100, Volume: 1,
	}}}
	p := Pivots(s)
	if p.Pivot != 100 {
		t.Fatalf("pivot = %v, want 100", p.Pivot)
	}
	if p.R1 != 110 || p.S1 != 90 {
		t.Fatalf("r1/s1 = %v/%v, want 110/90", p.R1, p.S1)
	}
	if p.R2 != 120 || p.S2 != 80 {
		t.Fatalf("r2/s2 = %v/%v, want 120/80", p.R2, p.S2)
	}
	if p.R3 != 130 || p.S3 != 70 {
		t.Fatalf("r3/s3 = %v/%v, want 130/70", p.R3, p.S3)
	}
}

func TestPivotsEmptySeries(t *testing.T) {
	p := Pivots(&models.PriceSeries{})
	if p.Pivot != 0 {
		t.Fatalf("empty pivots = %+v, want zero value", p)
	}
}

func TestDetectLevelsExtrema(t *testing.T) {
	// V shape then peak on the close series. The trough and the bars just
	// beside it all qualify: only the closes at distance window count.
	closes := []float64{100, 98, 96, 94, 92, 90, 92, 94, 96, 98,
		100, 102, 104, 106, 108, 110, 108, 106, 104, 102, 100}
	s := seriesFromCloses(closes)
	lv := DetectLevels(s, 5, 3)
	wantSupport := []float64{90, 92, 94}
	wantResistance := []float64{110, 108, 106}
	if len(lv.Support) != len(wantSupport) {
		t.Fatalf("support = %v, want %v", lv.Support, wantSupport)
	}
	for i := range wantSupport {
		if lv.Support[i] != wantSupport[i] {
			t.Fatalf("support = %v, want %v", lv.Support, wantSupport)
		}
	}
	if len(lv.Resistance) != len(wantResistance) {
		t.Fatalf("resistance = %v, want %v", lv.Resistance, wantResistance)
	}
	for i := range wantResistance {
		if lv.Resistance[i] != wantResistance[i] {
			t.Fatalf("resistance = %v, want %v", lv.Resistance, wantResistance)
		}
	}
}

func TestDetectLevelsNearbyLowerBarDoesNotBlock(t *testing.T) {
	// The bar after the trough closes at 96 with a lower neighbor at 95,
	// but its shoulders at distance window are both higher, so it is still
	// a support level.
	closes := []float64{110, 108, 106, 104, 102, 100, 95, 96, 104, 106,
		108, 110, 112, 114, 116, 118}
	lv := DetectLevels(seriesFromCloses(closes), 5, 3)
	want := []float64{95, 96, 100}
	if len(lv.Support) != len(want) {
		t.Fatalf("support = %v, want %v", lv.Support, want)
	}
	for i := range want {
		if lv.Support[i] != want[i] {
			t.Fatalf("support = %v, want %v", lv.Support, want)
		}
	}
	if len(lv.Resistance) != 0 {
		t.Fatalf("resistance = %v, want none", lv.Resistance)
	}
}

func TestDetectLevelsShortSeries(t *testing.T) {
	lv := DetectLevels(seriesFromCloses([]float64{100}), 5, 3)
	if len(lv.Support) != 0 || len(lv.Resistance) != 0 {
		t.Fatalf("short series levels = %+v, want none", lv)
	}
}

func TestDetectLevelsTruncation(t *testing.T) {
	// Repeated zig-zag produces several extrema; only numLevels survive.
	var closes []float64
	for i := 0; i < 8; i++ {
		depth := 90 - float64(i)
		closes = append(closes, 100, 97, 94, depth, 94, 97, 100, 103, 106, 103, 100)
	}
	lv := DetectLevels(seriesFromCloses(closes), 2, 3)
	if len(lv.Support) > 3 || len(lv.Resistance) > 3 {
		t.Fatalf("levels not truncated: %+v", lv)
	}
	for i := 1; i < len(lv.Support); i++ {
		if lv.Support[i] < lv.Support[i-1] {
			t.Fatalf("support not ascending: %v", lv.Support)
		}
	}
	for i := 1; i < len(lv.Resistance); i++ {
		if lv.Resistance[i] > lv.Resistance[i-1] {
			t.Fatalf("resistance not descending: %v", lv.Resistance)
		}
	}
}
