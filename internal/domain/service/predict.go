package service

import (
	"context"

	"StockPulse/internal/domain/models"
)

// ModelServer returns named per-model price predictions for a feature
// payload. An empty slice (or error) triggers the heuristic fallback.
type ModelServer interface {
	Predict(ctx context.Context, symbol string, features map[string]float64, daysAhead int) ([]models.ModelPrediction, error)
}

// SignalGenerator produces component and overall trading signals for a series.
type SignalGenerator interface {
	Generate(series *models.PriceSeries) *models.SignalReport
}
