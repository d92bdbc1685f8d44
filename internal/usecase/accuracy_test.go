package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestEvaluateJobMarksDirectionHit(t *testing.T) {
	store := &fakePredictionStore{}
	src := &fakeSource{quote: &models.Tick{Symbol: "AAPL", Price: 110, Timestamp: time.Now()}}
	job := NewEvaluateJob(store, src, &fakeMetrics{}, testLogger(t))

	// Predicted up from 100, realized 110: direction correct,
	// error |105-110|/110*100.
	err := job.Handle(context.Background(), EvaluatePayload{
		ID:             "AAPL-1",
		Symbol:         "AAPL",
		CurrentPrice:   100,
		PredictedPrice: 105,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.markedID != "AAPL-1" {
		t.Fatalf("marked id = %q", store.markedID)
	}
	if !store.markedDirection {
		t.Fatalf("direction should be correct")
	}
	want := math.Abs(105.0-110.0) / 110.0 * 100
	if math.Abs(store.markedAbsErr-want) > 1e-9 {
		t.Fatalf("abs pct error = %f, want %f", store.markedAbsErr, want)
	}
}

func TestEvaluateJobMarksDirectionMiss(t *testing.T) {
	store := &fakePredictionStore{}
	src := &fakeSource{quote: &models.Tick{Symbol: "AAPL", Price: 95, Timestamp: time.Now()}}
	job := NewEvaluateJob(store, src, &fakeMetrics{}, testLogger(t))

	// Predicted up from 100, realized 95: direction wrong.
	err := job.Handle(context.Background(), EvaluatePayload{
		ID:             "AAPL-2",
		Symbol:         "AAPL",
		CurrentPrice:   100,
		PredictedPrice: 105,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.markedDirection {
		t.Fatalf("direction should be wrong")
	}
}

func TestEvaluateJobRejectsBadQuote(t *testing.T) {
	store := &fakePredictionStore{}
	src := &fakeSource{quote: &models.Tick{Symbol: "AAPL", Price: 0}}
	job := NewEvaluateJob(store, src, &fakeMetrics{}, testLogger(t))

	err := job.Handle(context.Background(), EvaluatePayload{
		ID: "AAPL-3", Symbol: "AAPL", CurrentPrice: 100, PredictedPrice: 105,
	})
	if err == nil {
		t.Fatalf("zero actual price accepted")
	}
	if store.markedID != "" {
		t.Fatalf("record marked despite bad quote")
	}
}
