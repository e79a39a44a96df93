package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"petstore-service/internal/interfaces"
	"petstore-service/internal/models"
)

// Publisher writes purchase events to Kafka
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a new Kafka publisher for the purchases topic
func NewPublisher(brokers []string, purchasesTopic string) *Publisher {
	// Hash balancer keys messages by store id so events for one store stay
	// ordered on one partition.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  purchasesTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,

		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    1,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}

	return &Publisher{writer: writer}
}

// PublishPurchase publishes one purchase-completed event
func (p *Publisher) PublishPurchase(ctx context.Context, event *models.PurchaseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.Store)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventType)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		log.Error().Err(err).
			Str("purchase_id", event.PurchaseID).
			Int("store", event.Store).
			Msg("Failed to publish purchase event")
		return fmt.Errorf("failed to publish purchase event: %w", err)
	}

	log.Info().
		Str("purchase_id", event.PurchaseID).
		Int("store", event.Store).
		Msg("Published purchase event")

	return nil
}

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close purchases writer: %w", err)
	}
	return nil
}

// OutboxConfig tunes the outbox worker loop
type OutboxConfig struct {
	LockKey      int64
	BatchSize    int
	PollInterval time.Duration
}

// OutboxWorker drains committed outbox rows through a MessagePublisher. An
// advisory lock keeps a single active worker across order-service replicas.
type OutboxWorker struct {
	publisher interfaces.MessagePublisher
	outbox    interfaces.OutboxRepository
	cfg       OutboxConfig
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(publisher interfaces.MessagePublisher, outbox interfaces.OutboxRepository, cfg OutboxConfig) *OutboxWorker {
	return &OutboxWorker{
		publisher: publisher,
		outbox:    outbox,
		cfg:       cfg,
	}
}

// Run polls the outbox until the context is cancelled
func (w *OutboxWorker) Run(ctx context.Context) {
	log.Info().
		Int64("lock_key", w.cfg.LockKey).
		Int("batch_size", w.cfg.BatchSize).
		Dur("poll_interval", w.cfg.PollInterval).
		Msg("Starting outbox worker")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping outbox worker")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to process outbox batch")
			}
		}
	}
}

// processBatch publishes a single batch of outbox events
func (w *OutboxWorker) processBatch(ctx context.Context) error {
	acquired, err := w.outbox.TryAcquireOutboxLock(ctx, w.cfg.LockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		log.Debug().Msg("Lock held by another worker, skipping batch")
		return nil
	}

	defer func() {
		if err := w.outbox.ReleaseOutboxLock(ctx, w.cfg.LockKey); err != nil {
			log.Error().Err(err).Msg("Failed to release outbox lock")
		}
	}()

	events, err := w.outbox.FetchOutboxBatchOrdered(ctx, w.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox batch: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	var successfulIDs []int64
	for _, event := range events {
		var purchase models.PurchaseEvent
		if err := json.Unmarshal([]byte(event.Payload), &purchase); err != nil {
			log.Error().Err(err).
				Int64("outbox_id", event.ID).
				Str("event_type", event.EventType).
				Msg("Failed to decode outbox payload")

			if incrementErr := w.outbox.IncrementPublishAttempts(ctx, event.ID, err.Error()); incrementErr != nil {
				log.Error().Err(incrementErr).Int64("outbox_id", event.ID).Msg("Failed to increment publish attempts")
			}
			continue
		}

		if err := w.publisher.PublishPurchase(ctx, &purchase); err != nil {
			log.Error().Err(err).
				Int64("outbox_id", event.ID).
				Str("event_type", event.EventType).
				Msg("Failed to publish outbox event")

			if incrementErr := w.outbox.IncrementPublishAttempts(ctx, event.ID, err.Error()); incrementErr != nil {
				log.Error().Err(incrementErr).Int64("outbox_id", event.ID).Msg("Failed to increment publish attempts")
			}
			continue
		}

		successfulIDs = append(successfulIDs, event.ID)
	}

	if len(successfulIDs) > 0 {
		if err := w.outbox.MarkOutboxPublished(ctx, successfulIDs); err != nil {
			return fmt.Errorf("failed to mark events as published: %w", err)
		}
		log.Info().
			Int("published_count", len(successfulIDs)).
			Int("total_count", len(events)).
			Msg("Outbox batch processed")
	}

	return nil
}
