package indicators

import (
	"math"
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
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		})
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRSIRange(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 108, 107, 110, 109, 112, 111, 115, 113, 118, 116, 120}
	for i, v := range RSI(closes, 14) {
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSIShortSeriesNeutral(t *testing.T) {
	for _, v := range RSI([]float64{100, 101, 102}, 14) {
		if v != 50 {
			t.Fatalf("short series rsi = %v, want 50", v)
		}
	}
}

func TestRSIZeroLossNeutral(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := RSI(closes, 14)
	if out[len(out)-1] != 50 {
		t.Fatalf("zero-loss rsi = %v, want neutral 50", out[len(out)-1])
	}
}

func TestEMASeed(t *testing.T) {
	values := []float64{10, 20, 30}
	ema := EMA(values, 9)
	if ema[0] != 10 {
		t.Fatalf("ema[0] = %v, want first value 10", ema[0])
	}
	k := 2.0 / 10.0
	want := 20*k + 10*(1-k)
	if !almostEqual(ema[1], want) {
		t.Fatalf("ema[1] = %v, want %v", ema[1], want)
	}
}

func TestMACDHistogram(t *testing.T) {
	closes := []float64{100, 101, 103, 102, 104, 106, 105, 108, 110, 109}
	for i, p := range MACD(closes, 12, 26, 9) {
		if !almostEqual(p.Histogram, p.Line-p.Signal) {
			t.Fatalf("macd[%d] histogram %v != line-signal %v", i, p.Histogram, p.Line-p.Signal)
		}
	}
}

func TestBollingerOrdering(t *testing.T) {
	closes := []float64{100, 102, 98, 104, 96, 105, 99, 103, 101, 100,
		102, 104, 98, 97, 105, 106, 99, 100, 103, 101, 102, 98}
	for i, b := range Bollinger(closes, 20, 2) {
		if b.Upper < b.Middle || b.Middle < b.Lower {
			t.Fatalf("bands[%d] not ordered: %+v", i, b)
		}
	}
}

func TestBollingerFlatBand(t *testing.T) {
	closes := []float64{50, 50, 50, 50, 50}
	b := Bollinger(closes, 20, 2)
	lastB := b[len(b)-1]
	if lastB.PercentB != 50 {
		t.Fatalf("flat band %%B = %v, want 50", lastB.PercentB)
	}
	if lastB.Bandwidth != 0 {
		t.Fatalf("flat band bandwidth = %v, want 0", lastB.Bandwidth)
	}
}

func TestStochasticFlatRange(t *testing.T) {
	highs := []float64{100, 100, 100}
	lows := []float64{100, 100, 100}
	closes := []float64{100, 100, 100}
	for i, p := range Stochastic(highs, lows, closes, 14, 3, 3) {
		if p.K != 50 || p.D != 50 {
			t.Fatalf("flat stochastic[%d] = %+v, want 50/50", i, p)
		}
	}
}

func TestATRTrueRange(t *testing.T) {
	highs := []float64{110, 112}
	lows := []float64{90, 108}
	closes := []float64{100, 111}
	atr := ATR(highs, lows, closes, 14)
	if atr[0] != 20 {
		t.Fatalf("atr[0] = %v, want high-low 20", atr[0])
	}
	// second TR: max(112-108, |112-100|, |108-100|) = 12; prefix mean (20+12)/2
	if !almostEqual(atr[1], 16) {
		t.Fatalf("atr[1] = %v, want 16", atr[1])
	}
}

func TestADXFlatSeriesZero(t *testing.T) {
	highs := []float64{100, 100, 100, 100}
	lows := []float64{100, 100, 100, 100}
	closes := []float64{100, 100, 100, 100}
	for i, p := range ADX(highs, lows, closes, 14) {
		if p.ADX != 0 || p.PlusDI != 0 || p.MinusDI != 0 {
			t.Fatalf("flat adx[%d] = %+v, want zeros", i, p)
		}
	}
}

func TestOBVSignedVolume(t *testing.T) {
	closes := []float64{10, 11, 10.5, 10.5, 12}
	volumes := []float64{100, 200, 300, 400, 500}
	obv := OBV(closes, volumes)
	want := []float64{0, 200, -100, -100, 400}
	for i := range want {
		if obv[i] != want[i] {
			t.Fatalf("obv[%d] = %v, want %v", i, obv[i], want[i])
		}
	}
}

func TestVWAPSingleBar(t *testing.T) {
	v := VWAP([]float64{110}, []float64{90}, []float64{100}, []float64{500})
	if v[0] != 100 {
		t.Fatalf("vwap = %v, want typical price 100", v[0])
	}
}

func TestSnapshotSingleBarNoPanic(t *testing.T) {
	s := seriesFromCloses([]float64{100})
	set := Snapshot(s)
	if set.RSI != 50 {
		t.Fatalf("single bar rsi = %v, want 50", set.RSI)
	}
	if set.SMA5 != 100 {
		t.Fatalf("single bar sma5 = %v, want 100", set.SMA5)
	}
	if set.HasSMA50 {
		t.Fatalf("single bar should not report sma50 coverage")
	}
}

func TestSnapshotEmptySeries(t *testing.T) {
	set := Snapshot(&models.PriceSeries{Symbol: "EMPTY"})
	if set.RSI != 50 || set.PercentB != 50 || set.VolumeRatio != 1 {
		t.Fatalf("empty series snapshot not neutral: %+v", set)
	}
}

func TestAnnualizedVolatilityFlat(t *testing.T) {
	if v := AnnualizedVolatility([]float64{100, 100, 100, 100}, 20); v != 0 {
		t.Fatalf("flat volatility = %v, want 0", v)
	}
}
