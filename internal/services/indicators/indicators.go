package indicators

import (
	"math"

	"StockPulse/internal/domain/models"
)

// Default periods mirrored across the analysis endpoints.
const (
	DefaultRSIPeriod    = 14
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultStochPeriod  = 14
	DefaultStochSmoothK = 3
	DefaultStochSmoothD = 3
	DefaultADXPeriod    = 14
	DefaultBBPeriod     = 20
	DefaultBBMult       = 2.0
	DefaultATRPeriod    = 14
	DefaultLevelWindow  = 5
	TradingDaysPerYear  = 252
)

// neutralRSI fills undefined RSI positions.
const neutralRSI = 50.0

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// rollingMean computes a window mean aligned with the input. Positions with
// fewer than window samples fall back to the mean of the available prefix.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// rollingStdev computes the sample standard deviation over a window, with
// the same prefix fallback as rollingMean. Windows of size 1 yield 0.
func rollingStdev(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := i - lo + 1
		if n < 2 {
			continue
		}
		var sum float64
		for j := lo; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(n)
		var sq float64
		for j := lo; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(n-1))
	}
	return out
}

// SMA returns the simple moving average aligned with values.
func SMA(values []float64, window int) []float64 {
	return rollingMean(values, window)
}

// EMA returns the exponential moving average, seeded with the first value
// and multiplier 2/(period+1).
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI computes the relative strength index from rolling mean gains and
// losses. Positions without a full lookback, and windows with zero average
// loss, read as the neutral 50.
func RSI(closes []float64, period int) []float64 {
	out := filled(len(closes), neutralRSI)
	if len(closes) < period+1 {
		return out
	}
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		avgLoss := loss / float64(period)
		if avgLoss == 0 {
			continue
		}
		rs := (gain / float64(period)) / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the moving average convergence divergence with unseeded EMAs.
func MACD(closes []float64, fast, slow, signal int) []models.MACDPoint {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := EMA(line, signal)
	out := make([]models.MACDPoint, len(closes))
	for i := range closes {
		out[i] = models.MACDPoint{
			Line:      line[i],
			Signal:    sig[i],
			Histogram: line[i] - sig[i],
		}
	}
	return out
}

// Stochastic computes smoothed %K/%D. A flat high-low range reads as 50.
func Stochastic(highs, lows, closes []float64, period, smoothK, smoothD int) []models.StochasticPoint {
	n := len(closes)
	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - period + 1
		if lo < 0 {
			lo = 0
		}
		hh, ll := highs[lo], lows[lo]
		for j := lo + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			raw[i] = 50
			continue
		}
		raw[i] = 100 * (closes[i] - ll) / (hh - ll)
	}
	k := rollingMean(raw, smoothK)
	d := rollingMean(k, smoothD)
	out := make([]models.StochasticPoint, n)
	for i := 0; i < n; i++ {
		out[i] = models.StochasticPoint{K: k[i], D: d[i]}
	}
	return out
}

func trueRanges(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		pc := closes[i-1]
		tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-pc), math.Abs(lows[i]-pc)))
	}
	return tr
}

// ATR returns the rolling mean of the true range.
func ATR(highs, lows, closes []float64, period int) []float64 {
	return rollingMean(trueRanges(highs, lows, closes), period)
}

// ADX computes the average directional index with DI+/DI-. Zero denominators
// read as 0.
func ADX(highs, lows, closes []float64, period int) []models.ADXPoint {
	n := len(closes)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}
	atr := rollingMean(trueRanges(highs, lows, closes), period)
	plusAvg := rollingMean(plusDM, period)
	minusAvg := rollingMean(minusDM, period)

	dx := make([]float64, n)
	plusDI := make([]float64, n)
	minusDI := make([]float64, n)
	for i := 0; i < n; i++ {
		if atr[i] != 0 {
			plusDI[i] = 100 * plusAvg[i] / atr[i]
			minusDI[i] = 100 * minusAvg[i] / atr[i]
		}
		if sum := plusDI[i] + minusDI[i]; sum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}
	adx := rollingMean(dx, period)

	out := make([]models.ADXPoint, n)
	for i := 0; i < n; i++ {
		out[i] = models.ADXPoint{ADX: adx[i], PlusDI: plusDI[i], MinusDI: minusDI[i]}
	}
	return out
}

// Bollinger computes bands around the window SMA. Bandwidth reads as 0 when
// the middle band is 0; %B reads as 50 when the band is flat.
func Bollinger(closes []float64, period int, mult float64) []models.BollingerPoint {
	mid := rollingMean(closes, period)
	sd := rollingStdev(closes, period)
	out := make([]models.BollingerPoint, len(closes))
	for i := range closes {
		upper := mid[i] + mult*sd[i]
		lower := mid[i] - mult*sd[i]
		p := models.BollingerPoint{Upper: upper, Middle: mid[i], Lower: lower, PercentB: 50}
		if mid[i] != 0 {
			p.Bandwidth = (upper - lower) / mid[i] * 100
		}
		if upper != lower {
			p.PercentB = (closes[i] - lower) / (upper - lower) * 100
		}
		out[i] = p
	}
	return out
}

// OBV returns cumulative signed volume; the first bar contributes 0.
func OBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP returns the running volume-weighted average of the typical price.
// Bars with no cumulative volume fall back to the typical price itself.
func VWAP(highs, lows, closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	var pvSum, vSum float64
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		pvSum += tp * volumes[i]
		vSum += volumes[i]
		if vSum == 0 {
			out[i] = tp
			continue
		}
		out[i] = pvSum / vSum
	}
	return out
}

// pctReturns returns 1-bar fractional returns (length n-1). Zero previous
// closes contribute 0.
func pctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out[i-1] = closes[i]/closes[i-1] - 1
		}
	}
	return out
}

func stdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

// AnnualizedVolatility is the stdev of the last `window` 1-bar returns,
// annualized and expressed in percent.
func AnnualizedVolatility(closes []float64, window int) float64 {
	rets := pctReturns(closes)
	if len(rets) > window {
		rets = rets[len(rets)-window:]
	}
	return stdev(rets) * math.Sqrt(TradingDaysPerYear) * 100
}

// ReturnVolatility is the stdev of all 1-bar returns, in percent. Used for
// prediction bound margins.
func ReturnVolatility(closes []float64) float64 {
	return stdev(pctReturns(closes)) * 100
}
