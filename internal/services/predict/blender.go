package predict

import (
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

// Model blend weights. Unknown model names get the default weight.
var modelWeights = map[string]float64{
	"lstm":          0.40,
	"gru":           0.30,
	"xgboost":       0.20,
	"random_forest": 0.10,
}

const defaultModelWeight = 0.10

// Confidence and bound constants.
const (
	minEnsembleConfidence = 50.0
	maxEnsembleConfidence = 95.0
	singleModelConfidence = 60.0
	minBoundMarginPct     = 1.5
)

// Predictor blends named model predictions into one forecast, falling back
// to the indicator heuristic when no model output is available.
type Predictor struct {
	heuristic *Heuristic
}

func NewPredictor() *Predictor {
	return &Predictor{heuristic: NewHeuristic()}
}

// WithNoise overrides the heuristic noise source. Tests stub it to zero.
func (p *Predictor) WithNoise(noise func(mean, stddev float64) float64) *Predictor {
	p.heuristic.Noise = noise
	return p
}

// Predict produces the blended forecast for the series. len(preds) == 0 is
// not an error: the heuristic fallback takes over.
func (p *Predictor) Predict(series *models.PriceSeries, preds []models.ModelPrediction, daysAhead int) *models.PredictionResult {
	current := series.LastClose()

	if len(preds) == 0 {
		return p.heuristic.Predict(series, daysAhead)
	}

	var totalWeight, weightedSum float64
	prices := make([]float64, 0, len(preds))
	for _, mp := range preds {
		w, ok := modelWeights[mp.Model]
		if !ok {
			w = defaultModelWeight
		}
		totalWeight += w
		weightedSum += w * mp.Price
		prices = append(prices, mp.Price)
	}
	predicted := weightedSum / totalWeight

	// Contributions are normalized against the full total so they sum to
	// 100 up to rounding.
	contributions := make(map[string]float64, len(preds))
	for _, mp := range preds {
		w, ok := modelWeights[mp.Model]
		if !ok {
			w = defaultModelWeight
		}
		contributions[mp.Model] = round1(w / totalWeight * 100)
	}

	confidence := ensembleConfidence(prices)
	quality := ensembleQuality(confidence, len(preds))
	upper, lower := Bounds(series.Closes(), predicted)

	res := &models.PredictionResult{
		Symbol:         series.Symbol,
		DaysAhead:      daysAhead,
		CurrentPrice:   current,
		PredictedPrice: predicted,
		UpperBound:     upper,
		LowerBound:     lower,
		Confidence:     confidence,
		Quality:        quality,
		Source:         models.SourceEnsemble,
		ModelsUsed:     len(preds),
		Contributions:  contributions,
		CreatedAt:      time.Now().UTC(),
	}
	if current != 0 {
		res.ChangePercent = (predicted - current) / current * 100
	}
	return res
}

// ensembleConfidence maps prediction dispersion to confidence: low spread
// between models reads as agreement.
func ensembleConfidence(prices []float64) float64 {
	if len(prices) < 2 {
		return singleModelConfidence
	}
	var sum float64
	for _, v := range prices {
		sum += v
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return minEnsembleConfidence
	}
	var sq float64
	for _, v := range prices {
		d := v - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(prices))) / math.Abs(mean)
	return clamp(100-200*cv, minEnsembleConfidence, maxEnsembleConfidence)
}

func ensembleQuality(confidence float64, modelsUsed int) models.PredictionQuality {
	switch {
	case confidence >= 80 && modelsUsed >= 3:
		return models.QualityHigh
	case confidence >= 65 && modelsUsed >= 2:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}

// Bounds derives an uncertainty band around the prediction from realized
// return volatility, with a 1.5% floor.
func Bounds(closes []float64, predicted float64) (upper, lower float64) {
	margin := math.Max(minBoundMarginPct, 2*indicators.ReturnVolatility(closes))
	upper = predicted * (1 + margin/100)
	lower = predicted * (1 - margin/100)
	return upper, lower
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
