package predict

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
			Open:      c, High: c * 1.01, Low: c * 0.99, Close: c, Volume: 1000,
		})
	}
	return s
}

func risingSeries(n int) *models.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return seriesFromCloses(closes)
}

func zeroNoise(mean, stddev float64) float64 { return 0 }

func TestBlendSingleModelConfidence(t *testing.T) {
	p := NewPredictor()
	res := p.Predict(risingSeries(60), []models.ModelPrediction{{Model: "lstm", Price: 165}}, 1)
	if res.Confidence != 60 {
		t.Fatalf("single model confidence = %v, want 60", res.Confidence)
	}
	if res.Source != models.SourceEnsemble || res.ModelsUsed != 1 {
		t.Fatalf("unexpected result meta: %+v", res)
	}
}

func TestBlendAgreementHighConfidence(t *testing.T) {
	preds := []models.ModelPrediction{
		{Model: "lstm", Price: 160},
		{Model: "gru", Price: 160},
		{Model: "xgboost", Price: 160},
	}
	res := NewPredictor().Predict(risingSeries(60), preds, 1)
	if res.Confidence != 95 {
		t.Fatalf("agreement confidence = %v, want clamped 95", res.Confidence)
	}
	if res.Quality != models.QualityHigh {
		t.Fatalf("quality = %s, want high", res.Quality)
	}
	if math.Abs(res.PredictedPrice-160) > 1e-9 {
		t.Fatalf("predicted = %v, want 160", res.PredictedPrice)
	}
}

func TestBlendDisagreementLowConfidence(t *testing.T) {
	preds := []models.ModelPrediction{
		{Model: "lstm", Price: 100},
		{Model: "gru", Price: 300},
	}
	res := NewPredictor().Predict(risingSeries(60), preds, 1)
	if res.Confidence != 50 {
		t.Fatalf("disagreement confidence = %v, want floor 50", res.Confidence)
	}
	if res.Quality != models.QualityLow {
		t.Fatalf("quality = %s, want low", res.Quality)
	}
}

func TestContributionsSumToHundred(t *testing.T) {
	preds := []models.ModelPrediction{
		{Model: "lstm", Price: 150},
		{Model: "gru", Price: 155},
		{Model: "xgboost", Price: 160},
		{Model: "random_forest", Price: 158},
	}
	res := NewPredictor().Predict(risingSeries(60), preds, 1)
	var sum float64
	for _, c := range res.Contributions {
		sum += c
	}
	if math.Abs(sum-100) > 0.3 {
		t.Fatalf("contributions sum = %v, want ~100", sum)
	}
}

func TestUnknownModelDefaultWeight(t *testing.T) {
	preds := []models.ModelPrediction{
		{Model: "lstm", Price: 100},
		{Model: "mystery", Price: 200},
	}
	res := NewPredictor().Predict(risingSeries(60), preds, 1)
	if res.Contributions["lstm"] != 80.0 || res.Contributions["mystery"] != 20.0 {
		t.Fatalf("contributions = %v, want 80/20", res.Contributions)
	}
	want := (0.4*100 + 0.1*200) / 0.5
	if math.Abs(res.PredictedPrice-want) > 1e-9 {
		t.Fatalf("predicted = %v, want %v", res.PredictedPrice, want)
	}
}

func TestBoundsContainPrediction(t *testing.T) {
	res := NewPredictor().Predict(risingSeries(60), []models.ModelPrediction{{Model: "lstm", Price: 170}}, 1)
	if res.UpperBound < res.PredictedPrice || res.PredictedPrice < res.LowerBound {
		t.Fatalf("bounds do not contain prediction: %+v", res)
	}
	// 1.5% floor on the margin
	if res.UpperBound < res.PredictedPrice*1.015-1e-9 {
		t.Fatalf("upper bound %v below 1.5%% floor", res.UpperBound)
	}
}

func TestEmptyPredictionsFallBackToHeuristic(t *testing.T) {
	p := NewPredictor().WithNoise(zeroNoise)
	res := p.Predict(risingSeries(60), nil, 1)
	if res.Source != models.SourceHeuristic {
		t.Fatalf("source = %s, want heuristic", res.Source)
	}
	if res.ModelsUsed != 0 || res.Contributions != nil {
		t.Fatalf("fallback should carry no model meta: %+v", res)
	}
}

func TestHeuristicZeroNoiseDeterministic(t *testing.T) {
	h := NewHeuristic()
	h.Noise = zeroNoise
	s := risingSeries(60)
	a := h.Predict(s, 1)
	b := h.Predict(s, 1)
	if a.PredictedPrice != b.PredictedPrice || a.Confidence != b.Confidence {
		t.Fatalf("zero-noise heuristic not deterministic: %v vs %v", a, b)
	}
}

func TestHeuristicUptrendPositiveDrift(t *testing.T) {
	h := NewHeuristic()
	h.Noise = zeroNoise
	res := h.Predict(risingSeries(60), 1)
	if res.ChangePercent <= 0 {
		t.Fatalf("uptrend change = %v, want > 0", res.ChangePercent)
	}
	if res.Confidence < 30 || res.Confidence > 95 {
		t.Fatalf("confidence %v outside clamp", res.Confidence)
	}
}

func TestHeuristicShortSeriesRandomWalk(t *testing.T) {
	h := NewHeuristic()
	h.Noise = func(mean, stddev float64) float64 { return mean }
	res := h.Predict(seriesFromCloses([]float64{100, 101, 102}), 3)
	if res.Quality != models.QualityLow || res.Confidence != 50 {
		t.Fatalf("random walk meta = %+v, want low/50", res)
	}
	if math.Abs(res.ChangePercent-0.3) > 1e-9 {
		t.Fatalf("random walk change = %v, want 0.1*3", res.ChangePercent)
	}
}

func TestHeuristicEmptySeriesNoPanic(t *testing.T) {
	h := NewHeuristic()
	h.Noise = zeroNoise
	res := h.Predict(&models.PriceSeries{Symbol: "EMPTY"}, 1)
	if res.CurrentPrice != 0 || res.PredictedPrice != 0 {
		t.Fatalf("empty series prediction = %+v, want zeros", res)
	}
}
