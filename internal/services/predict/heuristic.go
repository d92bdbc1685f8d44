package predict

import (
	"math"
	"math/rand"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

// minHeuristicBars is the history needed before indicator readings are
// trusted; below it the heuristic degrades to a drifting random walk.
const minHeuristicBars = 20

// Heuristic predicts a price move from a weighted combination of indicator
// signals when no model predictions are available. Noise is injectable so
// tests can pin it to zero.
type Heuristic struct {
	Noise func(mean, stddev float64) float64
}

func NewHeuristic() *Heuristic {
	return &Heuristic{Noise: gaussianNoise}
}

func gaussianNoise(mean, stddev float64) float64 {
	return rand.NormFloat64()*stddev + mean
}

// Predict builds the heuristic forecast for the series.
func (h *Heuristic) Predict(series *models.PriceSeries, daysAhead int) *models.PredictionResult {
	current := series.LastClose()

	if series.Len() < minHeuristicBars {
		return h.randomWalk(series, current, daysAhead)
	}

	set := indicators.Snapshot(series)

	type component struct {
		signal float64
		weight float64
	}
	var parts []component

	if set.SMA5 > set.SMA20 {
		parts = append(parts, component{1, 0.20})
	} else {
		parts = append(parts, component{-1, 0.20})
	}

	switch {
	case set.RSI < 35:
		parts = append(parts, component{1, 0.20})
	case set.RSI > 65:
		parts = append(parts, component{-1, 0.20})
	case set.RSI > 50:
		parts = append(parts, component{0.2, 0.10})
	default:
		parts = append(parts, component{-0.2, 0.10})
	}

	if set.MACD > set.MACDSignal {
		parts = append(parts, component{0.5, 0.15})
	} else {
		parts = append(parts, component{-0.5, 0.15})
	}

	// Bollinger position within the band, 0 at the lower edge.
	if set.BBUpper != set.BBLower {
		pos := (current - set.BBLower) / (set.BBUpper - set.BBLower)
		if pos < 0.2 {
			parts = append(parts, component{1, 0.15})
		} else if pos > 0.8 {
			parts = append(parts, component{-1, 0.15})
		}
	}

	parts = append(parts, component{clamp(set.Momentum5/10, -1, 1), 0.15})

	var weightedSum, totalWeight float64
	for _, c := range parts {
		weightedSum += c.signal * c.weight
		totalWeight += c.weight
	}
	weightedSignal := weightedSum / totalWeight

	dailyVol := (set.Volatility / 100) / math.Sqrt(indicators.TradingDaysPerYear)
	change := weightedSignal*dailyVol*100*float64(daysAhead) + h.Noise(0, dailyVol*20)

	confidence := 50 + 30*math.Abs(weightedSignal)
	if set.VolumeRatio > 1.2 {
		confidence += 5
	}
	confidence -= 4 * float64(daysAhead-1)
	confidence = clamp(confidence, 30, 95)

	return h.result(series, current, change, confidence, heuristicQuality(confidence), daysAhead)
}

// randomWalk covers series too short for any indicator reading.
func (h *Heuristic) randomWalk(series *models.PriceSeries, current float64, daysAhead int) *models.PredictionResult {
	change := h.Noise(0.1, 1.5) * float64(daysAhead)
	return h.result(series, current, change, 50, models.QualityLow, daysAhead)
}

func (h *Heuristic) result(series *models.PriceSeries, current, changePct, confidence float64, quality models.PredictionQuality, daysAhead int) *models.PredictionResult {
	predicted := current * (1 + changePct/100)
	upper, lower := Bounds(series.Closes(), predicted)
	return &models.PredictionResult{
		Symbol:         series.Symbol,
		DaysAhead:      daysAhead,
		CurrentPrice:   current,
		PredictedPrice: predicted,
		ChangePercent:  changePct,
		UpperBound:     upper,
		LowerBound:     lower,
		Confidence:     confidence,
		Quality:        quality,
		Source:         models.SourceHeuristic,
		CreatedAt:      time.Now().UTC(),
	}
}

func heuristicQuality(confidence float64) models.PredictionQuality {
	switch {
	case confidence >= 75:
		return models.QualityHigh
	case confidence >= 55:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}
