package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// PriceSource provides historical candles and the latest quote for a symbol.
type PriceSource interface {
	Candles(ctx context.Context, symbol string, rng HistoryRange) (*models.PriceSeries, error)
	Quote(ctx context.Context, symbol string) (*models.Tick, error)
}

// TickPublisher pushes live ticks into the streaming backbone.
type TickPublisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// TickStore persists live ticks for short-term history queries.
type TickStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.Tick) error
	StoreBatch(ctx context.Context, ticks []*models.Tick) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// PredictionStore persists prediction records and resolves accuracy.
type PredictionStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, rec *models.PredictionRecord) error
	History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PredictionRecord, error)
	Unevaluated(ctx context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error)
	MarkEvaluated(ctx context.Context, id string, actual, absPctError float64, directionCorrect bool) error
	Accuracy(ctx context.Context, symbol string) (*models.AccuracyReport, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics abstracts domain-level instrumentation.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordPrediction(source, quality string)
}
