package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

type recordingProc struct {
	mu    sync.Mutex
	ticks []*models.Tick
	err   error
}

func (p *recordingProc) Process(ctx context.Context, t *models.Tick) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ticks = append(p.ticks, t)
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ticks)
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string) {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLastPrice(string, float64)  {}
func (nopMetrics) RecordLatency(string, float64)    {}
func (nopMetrics) RecordPrediction(string, string)  {}

func tick(symbol string, price float64) *models.Tick {
	return &models.Tick{Symbol: symbol, Price: price, Volume: 10, Timestamp: time.Now()}
}

func TestPipelineForwardsValidTick(t *testing.T) {
	proc := &recordingProc{}
	p := NewTickPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), tick("AAPL", 101.5)); err != nil {
		t.Fatalf("process valid tick: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("forwarded %d ticks, want 1", proc.count())
	}
}

func TestPipelineRejectsInvalidTick(t *testing.T) {
	proc := &recordingProc{}
	p := NewTickPipeline(proc, nopMetrics{})

	bad := []*models.Tick{
		nil,
		{Symbol: "", Price: 1, Volume: 1, Timestamp: time.Now()},
		{Symbol: "AAPL", Price: 0, Volume: 1, Timestamp: time.Now()},
		{Symbol: "AAPL", Price: 1, Volume: -1, Timestamp: time.Now()},
		{Symbol: "AAPL", Price: 1, Volume: 1},
	}
	for i, bt := range bad {
		if err := p.Process(context.Background(), bt); err == nil {
			t.Fatalf("case %d: invalid tick accepted", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("forwarded %d invalid ticks", proc.count())
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &recordingProc{}
	p := NewTickPipeline(proc, nopMetrics{}, WithMaxRPS(1))

	// Second tick for the same symbol inside the interval is dropped
	// without error; a different symbol passes.
	if err := p.Process(context.Background(), tick("AAPL", 100)); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := p.Process(context.Background(), tick("AAPL", 100.1)); err != nil {
		t.Fatalf("throttled tick should not error: %v", err)
	}
	if err := p.Process(context.Background(), tick("MSFT", 300)); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("forwarded %d ticks, want 2", proc.count())
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &recordingProc{}
	p := NewTickPipeline(proc, nopMetrics{}, WithTransform(func(t *models.Tick) *models.Tick {
		t.Symbol = "X:" + t.Symbol
		return t
	}))

	if err := p.Process(context.Background(), tick("AAPL", 100)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := proc.ticks[0].Symbol; got != "X:AAPL" {
		t.Fatalf("transformed symbol = %q", got)
	}
}
