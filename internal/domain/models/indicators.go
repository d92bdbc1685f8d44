package models

import "time"

// MACDPoint holds aligned MACD line, signal line and histogram values.
type MACDPoint struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// BollingerPoint holds one bar's band values.
type BollingerPoint struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64 // (upper-lower)/middle * 100
	PercentB  float64 // position of price within the band, 0-100
}

// StochasticPoint holds smoothed %K / %D values.
type StochasticPoint struct {
	K float64
	D float64
}

// ADXPoint holds directional movement values.
type ADXPoint struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// PivotPoints are classic floor-trader pivots from the last bar.
type PivotPoints struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

// Levels groups detected support/resistance levels with pivots.
type Levels struct {
	Support    []float64   `json:"support"`
	Resistance []float64   `json:"resistance"`
	Pivots     PivotPoints `json:"pivots"`
}

// IndicatorSet is the latest-value snapshot consumed by signal rules, the
// heuristic predictor and the model feature payload. Presence flags guard
// values that need a minimum history.
type IndicatorSet struct {
	Symbol    string
	Timestamp time.Time

	SMA5  float64
	SMA10 float64
	SMA20 float64
	SMA50 float64
	EMA20 float64

	RSI           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64
	PercentB float64

	ATR         float64
	Volatility  float64 // annualized, percent
	Momentum5   float64 // 5-bar change, percent
	VolumeRatio float64

	HasSMA50     bool
	HasBollinger bool
}

// Features flattens the snapshot into the payload the model server expects.
func (s *IndicatorSet) Features() map[string]float64 {
	return map[string]float64{
		"sma_5":          s.SMA5,
		"sma_10":         s.SMA10,
		"sma_20":         s.SMA20,
		"sma_50":         s.SMA50,
		"ema_20":         s.EMA20,
		"rsi":            s.RSI,
		"macd":           s.MACD,
		"macd_signal":    s.MACDSignal,
		"macd_histogram": s.MACDHistogram,
		"bb_upper":       s.BBUpper,
		"bb_middle":      s.BBMiddle,
		"bb_lower":       s.BBLower,
		"percent_b":      s.PercentB,
		"atr":            s.ATR,
		"volatility":     s.Volatility,
		"momentum_5":     s.Momentum5,
		"volume_ratio":   s.VolumeRatio,
	}
}
