package models

import "time"

// ModelPrediction is one named model's raw price prediction.
type ModelPrediction struct {
	Model string  `json:"model"`
	Price float64 `json:"price"`
}

type PredictionQuality string

const (
	QualityHigh   PredictionQuality = "high"
	QualityMedium PredictionQuality = "medium"
	QualityLow    PredictionQuality = "low"
)

// Prediction sources.
const (
	SourceEnsemble  = "ensemble"
	SourceHeuristic = "heuristic"
)

// PredictionResult is the blended (or heuristic) forecast for a symbol.
type PredictionResult struct {
	Symbol         string             `json:"symbol"`
	DaysAhead      int                `json:"days_ahead"`
	CurrentPrice   float64            `json:"current_price"`
	PredictedPrice float64            `json:"predicted_price"`
	ChangePercent  float64            `json:"change_percent"`
	UpperBound     float64            `json:"upper_bound"`
	LowerBound     float64            `json:"lower_bound"`
	Confidence     float64            `json:"confidence"`
	Quality        PredictionQuality  `json:"quality"`
	Source         string             `json:"source"`
	ModelsUsed     int                `json:"models_used"`
	Contributions  map[string]float64 `json:"contributions,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// PredictionRecord is the persisted form of a prediction, later matured
// against the realized close for accuracy tracking.
type PredictionRecord struct {
	ID               string
	Symbol           string
	DaysAhead        int
	TargetDate       time.Time
	CurrentPrice     float64
	PredictedPrice   float64
	Confidence       float64
	Quality          PredictionQuality
	Source           string
	CreatedAt        time.Time
	Evaluated        bool
	ActualPrice      float64
	AbsPercentError  float64
	DirectionCorrect bool
}

// AccuracyReport aggregates evaluated predictions for a symbol.
type AccuracyReport struct {
	Symbol           string  `json:"symbol"`
	Evaluated        int     `json:"evaluated"`
	MAPE             float64 `json:"mape"`
	DirectionHitRate float64 `json:"direction_hit_rate"`
}
