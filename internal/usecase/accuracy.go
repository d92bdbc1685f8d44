package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/queue"
)

// EvaluateJobType is the queue message type for prediction evaluation.
const EvaluateJobType = "accuracy.evaluate"

// EvaluatePayload is the queue payload for one matured prediction.
type EvaluatePayload struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
}

// AccuracyTracker periodically finds matured predictions and enqueues
// evaluation jobs; the registered job resolves the realized price and marks
// the record.
type AccuracyTracker struct {
	store    domrepo.PredictionStore
	source   domrepo.PriceSource
	queue    queue.QueueService
	metrics  domrepo.Metrics
	l        *applogger.Logger
	interval time.Duration
	batch    int
	stopCh   chan struct{}
}

func NewAccuracyTracker(
	store domrepo.PredictionStore,
	source domrepo.PriceSource,
	q queue.QueueService,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	interval time.Duration,
	batch int,
) *AccuracyTracker {
	if interval <= 0 {
		interval = time.Hour
	}
	if batch <= 0 {
		batch = 100
	}
	return &AccuracyTracker{
		store:    store,
		source:   source,
		queue:    q,
		metrics:  metrics,
		l:        l,
		interval: interval,
		batch:    batch,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the maturity scan loop.
func (t *AccuracyTracker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stopCh:
				return
			case <-ticker.C:
				t.scan(ctx)
			}
		}
	}()
}

// Stop terminates the scan loop.
func (t *AccuracyTracker) Stop() { close(t.stopCh) }

func (t *AccuracyTracker) scan(ctx context.Context) {
	recs, err := t.store.Unevaluated(ctx, time.Now().UTC(), t.batch)
	if err != nil {
		t.metrics.RecordError("accuracy_scan")
		t.l.Error("accuracy scan failed", applogger.Error(err))
		return
	}
	for _, rec := range recs {
		payload := EvaluatePayload{
			ID:             rec.ID,
			Symbol:         rec.Symbol,
			CurrentPrice:   rec.CurrentPrice,
			PredictedPrice: rec.PredictedPrice,
		}
		if err := t.queue.PublishMessage(ctx, EvaluateJobType, payload); err != nil {
			t.metrics.RecordError("accuracy_enqueue")
			t.l.Error("enqueue evaluation failed",
				applogger.String("id", rec.ID), applogger.Error(err))
		}
	}
	if len(recs) > 0 {
		t.l.Info("accuracy evaluations enqueued", applogger.Int("count", len(recs)))
	}
}

// EvaluateJob resolves the realized price for a matured prediction and
// marks the record with its error and directional hit.
type EvaluateJob struct {
	store   domrepo.PredictionStore
	source  domrepo.PriceSource
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewEvaluateJob(store domrepo.PredictionStore, source domrepo.PriceSource, metrics domrepo.Metrics, l *applogger.Logger) *EvaluateJob {
	return &EvaluateJob{store: store, source: source, metrics: metrics, l: l}
}

func (j *EvaluateJob) Name() string { return "accuracy-evaluate" }
func (j *EvaluateJob) Type() string { return EvaluateJobType }

func (j *EvaluateJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[EvaluatePayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	tick, err := j.source.Quote(ctx, p.Symbol)
	if err != nil {
		j.metrics.RecordError("accuracy_quote")
		return fmt.Errorf("resolve actual price %s: %w", p.Symbol, err)
	}
	actual := tick.Price
	if actual <= 0 {
		return fmt.Errorf("invalid actual price %f for %s", actual, p.Symbol)
	}

	absPctError := math.Abs(p.PredictedPrice-actual) / actual * 100
	// Direction is judged against the close at prediction time: did the
	// model call the sign of the move right?
	predictedUp := p.PredictedPrice >= p.CurrentPrice
	actualUp := actual >= p.CurrentPrice
	directionCorrect := predictedUp == actualUp

	if err := j.store.MarkEvaluated(ctx, p.ID, actual, absPctError, directionCorrect); err != nil {
		j.metrics.RecordError("accuracy_mark")
		return fmt.Errorf("mark evaluated: %w", err)
	}
	j.l.Debug("prediction evaluated",
		applogger.String("id", p.ID),
		applogger.String("symbol", p.Symbol),
		applogger.Any("abs_pct_error", absPctError),
		applogger.Bool("direction_correct", directionCorrect),
	)
	return nil
}

var _ queue.Job = (*EvaluateJob)(nil)
