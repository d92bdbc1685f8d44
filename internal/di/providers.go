package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	mid "StockPulse/internal/middleware"
	internalrepo "StockPulse/internal/repository"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/stream"
	modelsrv "StockPulse/internal/services/models"
	"StockPulse/internal/services/predict"
	"StockPulse/internal/services/signals"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/queue"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	db := databaseName(cfg)

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(db),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.ticks (
            ts DateTime64(3),
            symbol String,
            price Float64,
            volume Float64,
            event_id String
        ) ENGINE = MergeTree ORDER BY (symbol, ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.predictions (
            id String,
            symbol String,
            days_ahead Int32,
            target_date DateTime,
            current_price Float64,
            predicted_price Float64,
            confidence Float64,
            quality String,
            source String,
            created_at DateTime,
            evaluated UInt8,
            actual_price Float64,
            abs_pct_error Float64,
            direction_correct UInt8
        ) ENGINE = MergeTree ORDER BY (symbol, created_at)`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, m repository.Metrics) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	// Measure handler latency and count handler errors through hooks.
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.HookFuncs{
			Before: func(ctx context.Context, topic string, km kafkago.Message, data []byte) (context.Context, kafkago.Message, []byte, error) {
				ctx = pkgkafka.WithStartTime(ctx, time.Now())
				ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
				return ctx, km, data, nil
			},
			After: func(ctx context.Context, topic string, km kafkago.Message, data []byte, err error) {
				if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
					m.RecordLatency("consume_handle", time.Since(start).Seconds())
				}
			},
			Err: func(ctx context.Context, topic string, km kafkago.Message, data []byte, err error) {
				m.RecordError("consume")
			},
		},
	))
	return consumer, nil
}

// ProvideRateLimiter creates the shared token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCacheService builds the candle cache used by the market data client.
// With Redis enabled it is a layered memory-over-Redis cache, otherwise
// in-process memory only.
func ProvideCacheService(cfg *config.Config, l *applogger.Logger) pkgcache.Service {
	mem := pkgcache.NewMemoryCache()
	if !cfg.Redis.Enabled {
		return mem
	}

	host, port := splitAddr(cfg.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		l.Warn("redis cache unavailable, using memory cache", applogger.Error(err))
		return mem
	}
	return pkgcache.NewLayeredCache(rc)
}

// ProvideBytesCache builds the response cache for analysis endpoints.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvidePriceSource creates the upstream market data client.
func ProvidePriceSource(cfg *config.Config, c pkgcache.Service, rl *ratelimit.Limiter, l *applogger.Logger) repository.PriceSource {
	return marketdata.New(cfg, c, rl, l)
}

// ProvideModelServer creates the model-serving HTTP client.
func ProvideModelServer(cfg *config.Config) domsvc.ModelServer {
	return modelsrv.NewClient(cfg)
}

// ProvideSignalGenerator creates the rule-based signal generator.
func ProvideSignalGenerator() domsvc.SignalGenerator {
	return signals.New()
}

// ProvidePredictor creates the ensemble blender.
func ProvidePredictor() *predict.Predictor {
	return predict.NewPredictor()
}

// ProvideTickStore creates ClickHouse tick storage.
func ProvideTickStore(chClient *pkgch.Client, cfg *config.Config) repository.TickStore {
	return internalrepo.NewClickHouseTickStore(chClient.DB(), databaseName(cfg)+".ticks")
}

// ProvideTickPublisher creates the Kafka tick publisher.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.TickPublisher {
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePredictionStore creates ClickHouse prediction storage.
func ProvidePredictionStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PredictionStore {
	store := internalrepo.NewCHPredictionStore(chClient, databaseName(cfg)+".predictions")
	if s, ok := store.(interface{ SetLogger(*applogger.Logger) }); ok {
		s.SetLogger(l)
	}
	return store
}

// ProvideTickProcessor creates the tick routing processor.
func ProvideTickProcessor(
	pub repository.TickPublisher,
	store repository.TickStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	backend := cfg.Stream.Backend
	if backend == "" {
		backend = "kafka"
	}
	return usecase.NewTickProcessor(pub, store, m, backend)
}

// ProvideTickPipeline builds the validation and throttling pipeline in front
// of the processor.
func ProvideTickPipeline(proc *usecase.TickProcessor, m repository.Metrics, cfg *config.Config) *mid.TickPipeline {
	maxRPS := cfg.Stream.MaxRPS
	if maxRPS <= 0 {
		maxRPS = 50
	}
	bufSize := cfg.Stream.BufferSize
	if bufSize <= 0 {
		bufSize = 2000
	}
	return mid.NewTickPipeline(proc, m,
		mid.WithMaxRPS(maxRPS),
		mid.WithBufferSize(bufSize),
	)
}

// ProvideTickCollector creates the quote polling collector.
func ProvideTickCollector(
	source repository.PriceSource,
	proc *usecase.TickProcessor,
	m repository.Metrics,
	pipe *mid.TickPipeline,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.TickCollector {
	return usecase.NewTickCollector(source, proc, m, pipe, l, cfg.MarketData.Symbols, cfg.MarketData.PollInterval)
}

// ProvideHub creates the WebSocket fan-out hub.
func ProvideHub(l *applogger.Logger) *stream.Hub {
	return stream.NewHub(l)
}

// ProvideKafkaTicksHandler registers the handler for the ticks topic.
func ProvideKafkaTicksHandler(
	cfg *config.Config,
	store repository.TickStore,
	hub *stream.Hub,
	m repository.Metrics,
) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, hub, m)
}

// ProvideAnalysisUseCase creates the technical analysis use case.
func ProvideAnalysisUseCase(source repository.PriceSource, gen domsvc.SignalGenerator) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(source, gen)
}

// ProvidePredictionUseCase creates the prediction use case.
func ProvidePredictionUseCase(
	source repository.PriceSource,
	modelSrv domsvc.ModelServer,
	predictor *predict.Predictor,
	store repository.PredictionStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionUseCase {
	uc := usecase.NewPredictionUseCase(source, modelSrv, predictor, store, m)
	uc.SetLogger(l)
	return uc
}

// ProvideTicksUseCase creates the tick history use case.
func ProvideTicksUseCase(store repository.TickStore) *usecase.TicksUseCase {
	return usecase.NewTicksUseCase(store)
}

// AccuracyWorker bundles the maturity tracker with the Redis queue that
// executes its evaluation jobs.
type AccuracyWorker struct {
	Tracker *usecase.AccuracyTracker
	Queue   *queue.RedisQueue
}

// ProvideAccuracyWorker builds the accuracy tracker and its Redis-backed job
// queue. The bundle is empty when Redis or accuracy tracking is disabled.
func ProvideAccuracyWorker(
	cfg *config.Config,
	store repository.PredictionStore,
	source repository.PriceSource,
	m repository.Metrics,
	l *applogger.Logger,
) *AccuracyWorker {
	if !cfg.Accuracy.Enabled || !cfg.Redis.Enabled {
		return &AccuracyWorker{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		QueueSize:  1000,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rdb, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewEvaluateJob(store, source, m, l))

	tracker := usecase.NewAccuracyTracker(store, source, q, m, l, cfg.Accuracy.CheckInterval, cfg.Accuracy.BatchSize)
	return &AccuracyWorker{Tracker: tracker, Queue: q}
}

// ProvideRouter assembles the HTTP API router.
func ProvideRouter(
	cfg *config.Config,
	l *applogger.Logger,
	analysis *usecase.AnalysisUseCase,
	prediction *usecase.PredictionUseCase,
	ticks *usecase.TicksUseCase,
	hub *stream.Hub,
	limiter *ratelimit.Limiter,
	bytesCache icache.BytesCache,
	tickStore repository.TickStore,
	predStore repository.PredictionStore,
) *api.Router {
	ah := api.NewAnalysisHandler(l, analysis)
	ah.SetCache(bytesCache, cfg.Cache.AnalysisTTL)
	ph := api.NewPredictionsHandler(l, prediction, ticks)

	r := api.NewRouter(l, ah, ph, hub, limiter, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	r.AddHealthCheck("clickhouse_ticks", tickStore.Health)
	r.AddHealthCheck("clickhouse_predictions", predStore.Health)
	return r
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	chClient *pkgch.Client,
	hub *stream.Hub,
	router *api.Router,
	worker *AccuracyWorker,
	producer *pkgkafka.Producer,
) *server.App {
	// Aggregate repeated error logs and ship them to Kafka.
	if len(cfg.Kafka.Brokers) > 0 {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "stockpulse.logs.errors",
			Publisher:      kafkaLogSink{producer},
		})
	}
	return server.New(cfg, l, collector, consumer, kh, chClient, hub, router, worker.Tracker, worker.Queue)
}

// kafkaLogSink adapts the Kafka producer to the log collector's publisher.
type kafkaLogSink struct {
	p *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.p.Publish(ctx, topic, nil, payload)
}

func databaseName(cfg *config.Config) string {
	if cfg.ClickHouse.Database != "" {
		return cfg.ClickHouse.Database
	}
	return "stockpulse"
}

// splitAddr splits "host:port", defaulting to localhost:6379.
func splitAddr(addr string) (string, int) {
	host, port := "localhost", 6379
	if addr == "" {
		return host, port
	}
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
		if p, err := strconv.Atoi(addr[i+1:]); err == nil && p > 0 {
			port = p
		}
	} else {
		host = addr
	}
	return host, port
}
