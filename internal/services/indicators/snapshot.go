package indicators

import (
	"time"

	"StockPulse/internal/domain/models"
)

// Snapshot computes the latest-value indicator set for a series. Every
// field is defined for any series length; values without a full lookback
// degrade to prefix means or neutral constants.
func Snapshot(series *models.PriceSeries) *models.IndicatorSet {
	n := series.Len()
	set := &models.IndicatorSet{Symbol: series.Symbol, Timestamp: time.Now().UTC()}
	if n == 0 {
		set.RSI = neutralRSI
		set.PercentB = 50
		set.VolumeRatio = 1
		return set
	}
	if !series.Bars[n-1].Timestamp.IsZero() {
		set.Timestamp = series.Bars[n-1].Timestamp
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	set.SMA5 = last(SMA(closes, 5))
	set.SMA10 = last(SMA(closes, 10))
	set.SMA20 = last(SMA(closes, 20))
	set.SMA50 = last(SMA(closes, 50))
	set.EMA20 = last(EMA(closes, 20))
	set.HasSMA50 = n >= 50
	set.HasBollinger = n >= DefaultBBPeriod

	set.RSI = last(RSI(closes, DefaultRSIPeriod))

	macd := MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	set.MACD = macd[n-1].Line
	set.MACDSignal = macd[n-1].Signal
	set.MACDHistogram = macd[n-1].Histogram

	bb := Bollinger(closes, DefaultBBPeriod, DefaultBBMult)
	set.BBUpper = bb[n-1].Upper
	set.BBMiddle = bb[n-1].Middle
	set.BBLower = bb[n-1].Lower
	set.PercentB = bb[n-1].PercentB

	set.ATR = last(ATR(highs, lows, closes, DefaultATRPeriod))
	set.Volatility = AnnualizedVolatility(closes, DefaultBBPeriod)

	if n >= 6 {
		base := closes[n-6]
		if base != 0 {
			set.Momentum5 = (closes[n-1]/base - 1) * 100
		}
	}

	set.VolumeRatio = 1
	if avg := last(SMA(volumes, 20)); avg != 0 {
		set.VolumeRatio = volumes[n-1] / avg
	}

	return set
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
