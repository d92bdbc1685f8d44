package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/predict"
)

type fakeSource struct {
	series *models.PriceSeries
	quote  *models.Tick
	err    error
}

func (f *fakeSource) Candles(ctx context.Context, symbol string, rng domrepo.HistoryRange) (*models.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeSource) Quote(ctx context.Context, symbol string) (*models.Tick, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

type fakeModelServer struct {
	preds []models.ModelPrediction
	err   error
}

func (f *fakeModelServer) Predict(ctx context.Context, symbol string, features map[string]float64, daysAhead int) ([]models.ModelPrediction, error) {
	return f.preds, f.err
}

type fakePredictionStore struct {
	stored []*models.PredictionRecord

	markedID        string
	markedActual    float64
	markedAbsErr    float64
	markedDirection bool
}

func (f *fakePredictionStore) Init(ctx context.Context) error { return nil }
func (f *fakePredictionStore) Store(ctx context.Context, rec *models.PredictionRecord) error {
	f.stored = append(f.stored, rec)
	return nil
}
func (f *fakePredictionStore) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PredictionRecord, error) {
	return f.stored, nil
}
func (f *fakePredictionStore) Unevaluated(ctx context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error) {
	return nil, nil
}
func (f *fakePredictionStore) MarkEvaluated(ctx context.Context, id string, actual, absPctError float64, directionCorrect bool) error {
	f.markedID = id
	f.markedActual = actual
	f.markedAbsErr = absPctError
	f.markedDirection = directionCorrect
	return nil
}
func (f *fakePredictionStore) Accuracy(ctx context.Context, symbol string) (*models.AccuracyReport, error) {
	return &models.AccuracyReport{Symbol: symbol}, nil
}
func (f *fakePredictionStore) Health(ctx context.Context) error { return nil }
func (f *fakePredictionStore) Close() error                     { return nil }

type fakeMetrics struct {
	predictions int
}

func (f *fakeMetrics) RecordMessageSent(string, string) {}
func (f *fakeMetrics) RecordError(string)               {}
func (f *fakeMetrics) RecordLastPrice(string, float64)  {}
func (f *fakeMetrics) RecordLatency(string, float64)    {}
func (f *fakeMetrics) RecordPrediction(string, string)  { f.predictions++ }

func testSeries(n int, start float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: "AAPL"}
	ts := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.PriceBar{
			Timestamp: ts.AddDate(0, 0, i),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000,
		})
		price += 0.5
	}
	return s
}

func newTestUseCase(src *fakeSource, srv *fakeModelServer, store *fakePredictionStore, m *fakeMetrics) *PredictionUseCase {
	predictor := predict.NewPredictor().WithNoise(func(mean, stddev float64) float64 { return mean })
	return NewPredictionUseCase(src, srv, predictor, store, m)
}

func TestPredictUsesModelEnsemble(t *testing.T) {
	src := &fakeSource{series: testSeries(60, 100)}
	srv := &fakeModelServer{preds: []models.ModelPrediction{
		{Model: "lstm", Price: 140},
		{Model: "gru", Price: 141},
		{Model: "xgboost", Price: 139},
	}}
	store := &fakePredictionStore{}
	m := &fakeMetrics{}
	uc := newTestUseCase(src, srv, store, m)

	res, err := uc.Predict(context.Background(), "AAPL", 3, domrepo.Range6Mo)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.Source != models.SourceEnsemble {
		t.Fatalf("source = %q, want ensemble", res.Source)
	}
	if res.ModelsUsed != 3 {
		t.Fatalf("models used = %d, want 3", res.ModelsUsed)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.stored))
	}
	rec := store.stored[0]
	if rec.Symbol != "AAPL" || rec.DaysAhead != 3 {
		t.Fatalf("stored record = %+v", rec)
	}
	wantTarget := rec.CreatedAt.AddDate(0, 0, 3)
	if !rec.TargetDate.Equal(wantTarget) {
		t.Fatalf("target date = %v, want %v", rec.TargetDate, wantTarget)
	}
	if m.predictions != 1 {
		t.Fatalf("prediction metric recorded %d times", m.predictions)
	}
}

func TestPredictFallsBackToHeuristicOnModelError(t *testing.T) {
	src := &fakeSource{series: testSeries(60, 100)}
	srv := &fakeModelServer{err: errors.New("model server down")}
	store := &fakePredictionStore{}
	uc := newTestUseCase(src, srv, store, &fakeMetrics{})

	res, err := uc.Predict(context.Background(), "AAPL", 1, domrepo.Range6Mo)
	if err != nil {
		t.Fatalf("predict should degrade, got error: %v", err)
	}
	if res.Source != models.SourceHeuristic {
		t.Fatalf("source = %q, want heuristic", res.Source)
	}
	if len(store.stored) != 1 {
		t.Fatalf("fallback prediction not stored")
	}
}

func TestPredictRequiresSymbol(t *testing.T) {
	uc := newTestUseCase(&fakeSource{}, &fakeModelServer{}, &fakePredictionStore{}, &fakeMetrics{})
	if _, err := uc.Predict(context.Background(), "", 1, domrepo.Range3Mo); !errors.Is(err, models.ErrInvalidSeries) {
		t.Fatalf("empty symbol error = %v, want ErrInvalidSeries", err)
	}
}

func TestHistoryValidatesWindow(t *testing.T) {
	uc := newTestUseCase(&fakeSource{}, &fakeModelServer{}, &fakePredictionStore{}, &fakeMetrics{})
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := uc.History(context.Background(), "AAPL", from, to, 10); !errors.Is(err, models.ErrInvalidSeries) {
		t.Fatalf("inverted window error = %v, want ErrInvalidSeries", err)
	}
}
