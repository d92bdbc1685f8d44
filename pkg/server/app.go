package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/handler/api"
	"StockPulse/internal/service/stream"
	"StockPulse/internal/usecase"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	collector  *usecase.TickCollector
	consumer   *pkgkafka.Consumer
	kh         *usecase.KafkaTicksHandler
	chClient   *pkgch.Client
	hub        *stream.Hub
	router     *api.Router
	tracker    *usecase.AccuracyTracker
	queue      *queue.RedisQueue
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	hub *stream.Hub,
	router *api.Router,
	tracker *usecase.AccuracyTracker,
	q *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		hub:       hub,
		router:    router,
		tracker:   tracker,
		queue:     q,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.router,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start quote polling
	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.l.Error("collector start error", applogger.Error(err))
			return err
		}
		a.l.Info("collector started",
			applogger.Strings("symbols", a.cfg.MarketData.Symbols),
			applogger.Duration("interval", a.cfg.MarketData.PollInterval))
	}

	// Start Kafka consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start accuracy evaluation loop and its queue workers
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.l.Error("queue start error", applogger.Error(err))
			return err
		}
		a.queue.StartRetryProcessor()
	}
	if a.tracker != nil {
		a.tracker.Start(ctx)
		a.l.Info("accuracy tracker started",
			applogger.Duration("interval", a.cfg.Accuracy.CheckInterval))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop ingest first so nothing new enters the pipeline.
	if a.collector != nil {
		if err := a.collector.Shutdown(shutdownCtx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	if a.tracker != nil {
		a.tracker.Stop()
	}
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.l.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher and storage) after consumers drain.
	if a.collector != nil && a.collector.Processor() != nil {
		a.collector.Processor().Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
