package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// Broadcaster pushes ticks to live subscribers.
type Broadcaster interface {
	Broadcast(t *models.Tick)
}

// KafkaTicksHandler consumes tick messages, persists them and fans them out
// to websocket subscribers.
type KafkaTicksHandler struct {
	topic   string
	storage domrepo.TickStore
	hub     Broadcaster
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, storage domrepo.TickStore, hub Broadcaster, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, storage: storage, hub: hub, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var t models.Tick
	if err := json.Unmarshal(b, &t); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(t.Timestamp).Seconds())

	if h.hub != nil {
		h.hub.Broadcast(&t)
	}

	start := time.Now()
	if err := h.storage.Store(ctx, &t); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	h.metrics.RecordMessageSent("clickhouse", t.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
