package signals

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func seriesFromCloses(closes []float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: "TEST"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c, Volume: 1000,
		})
	}
	return s
}

func TestAggregateBuyDominates(t *testing.T) {
	out := Aggregate(map[string]models.Signal{
		"a": {Kind: models.SignalBuy, Strength: 80},
		"b": {Kind: models.SignalBuy, Strength: 70},
		"c": {Kind: models.SignalHold, Strength: 50},
	})
	if out.Kind != models.SignalBuy {
		t.Fatalf("kind = %s, want buy", out.Kind)
	}
	if out.Strength != 75.0 {
		t.Fatalf("strength = %v, want 75.0", out.Strength)
	}
}

func TestAggregateTieIsHold(t *testing.T) {
	out := Aggregate(map[string]models.Signal{
		"a": {Kind: models.SignalBuy, Strength: 60},
		"b": {Kind: models.SignalSell, Strength: 60},
	})
	if out.Kind != models.SignalHold {
		t.Fatalf("tie kind = %s, want hold", out.Kind)
	}
}

func TestAggregateEmpty(t *testing.T) {
	out := Aggregate(nil)
	if out.Kind != models.SignalHold || out.Strength != 50 {
		t.Fatalf("empty aggregate = %+v, want hold/50", out)
	}
}

func TestGenerateShortSeriesHolds(t *testing.T) {
	rep := New().Generate(seriesFromCloses([]float64{100}))
	for name, s := range rep.Components {
		if s.Kind != models.SignalHold {
			t.Fatalf("component %s = %+v, want hold on short series", name, s)
		}
	}
	if rep.Overall.Kind != models.SignalHold {
		t.Fatalf("overall = %+v, want hold", rep.Overall)
	}
	if _, ok := rep.Components["sma_cross"]; ok {
		t.Fatalf("sma_cross should be skipped below 200 bars")
	}
}

func TestGenerateEmptySeriesNoPanic(t *testing.T) {
	rep := New().Generate(&models.PriceSeries{Symbol: "EMPTY"})
	if rep.Overall.Kind != models.SignalHold {
		t.Fatalf("empty overall = %+v, want hold", rep.Overall)
	}
}

func TestRSISignalOversold(t *testing.T) {
	// Steady decline drives RSI to 0.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	s := rsiSignal(closes)
	if s.Kind != models.SignalBuy || s.Strength != 80 {
		t.Fatalf("oversold signal = %+v, want buy/80", s)
	}
}

func TestTrendSignalUptrend(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := trendSignal(closes)
	if s.Kind != models.SignalBuy || s.Strength != 60 {
		t.Fatalf("uptrend signal = %+v, want buy/60", s)
	}
}

func TestTrendSignalNeedsHistory(t *testing.T) {
	s := trendSignal([]float64{100, 101, 102})
	if s.Kind != models.SignalHold {
		t.Fatalf("short trend = %+v, want hold", s)
	}
}

func TestSMACrossGoldenCross(t *testing.T) {
	// Long flat history, then a jump strong enough to flip the 50-day SMA
	// above the 200-day on the final bar.
	closes := make([]float64, 210)
	for i := range closes {
		closes[i] = 100
	}
	closes[209] = 200
	s := smaCrossSignal(closes)
	if s.Kind != models.SignalBuy || s.Strength != 90 {
		t.Fatalf("golden cross = %+v, want buy/90", s)
	}
}

func TestSMACrossAboveWithoutCross(t *testing.T) {
	closes := make([]float64, 210)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.1
	}
	s := smaCrossSignal(closes)
	if s.Kind != models.SignalBuy || s.Strength != 55 {
		t.Fatalf("sma above = %+v, want buy/55", s)
	}
}
