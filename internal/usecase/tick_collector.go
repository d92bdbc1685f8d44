package usecase

import (
	"context"
	"sync"
	"time"

	drepo "StockPulse/internal/domain/repository"
	mid "StockPulse/internal/middleware"
	applogger "StockPulse/pkg/logger"
)

// TickCollector polls the price source for watched symbols and feeds ticks
// through the pipeline into the streaming backbone.
type TickCollector struct {
	source   drepo.PriceSource
	proc     *TickProcessor
	metrics  drepo.Metrics
	pipe     *mid.TickPipeline
	l        *applogger.Logger
	symbols  []string
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(
	source drepo.PriceSource,
	proc *TickProcessor,
	metrics drepo.Metrics,
	pipe *mid.TickPipeline,
	l *applogger.Logger,
	symbols []string,
	interval time.Duration,
) *TickCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &TickCollector{
		source:   source,
		proc:     proc,
		metrics:  metrics,
		pipe:     pipe,
		l:        l,
		symbols:  symbols,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the poll loop.
func (c *TickCollector) Start(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.loop(ctx)
	return nil
}

func (c *TickCollector) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

// pollOnce fetches quotes for all watched symbols concurrently.
func (c *TickCollector) pollOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, symbol := range c.symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			tick, err := c.source.Quote(ctx, symbol)
			if err != nil {
				c.metrics.RecordError("quote_poll")
				c.l.Warn("quote poll failed",
					applogger.String("symbol", symbol), applogger.Error(err))
				return
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, tick)
			} else {
				_ = c.proc.Process(ctx, tick)
			}
			c.metrics.RecordLastPrice(tick.Symbol, tick.Price)
		}(symbol)
	}
	wg.Wait()
}

// Processor returns the underlying TickProcessor for lifecycle management.
func (c *TickCollector) Processor() *TickProcessor { return c.proc }

// Shutdown stops the pipeline and the poll loop.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return nil
}
