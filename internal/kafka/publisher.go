package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/techblueera/be-health-service-sub001/internal/models"
	"github.com/techblueera/be-health-service-sub001/internal/repository"
)

// Publisher ships order events to Kafka. Every event reaches the
// topic through the outbox loop, so delivery is at-least-once and
// ordered per order.
type Publisher struct {
	writer *kafka.Writer
}

// OutboxConfig tunes the outbox publisher loop
type OutboxConfig struct {
	LockKey      int64
	BatchSize    int
	PollInterval time.Duration
}

// NewPublisher creates a new Kafka publisher. The hash balancer keys
// messages by order id so per-order ordering is preserved.
func NewPublisher(brokers []string, ordersTopic string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  ordersTopic,
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

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// RunOutboxPublisher polls the outbox and ships pending events until
// the context is cancelled. The advisory lock keeps a single active
// worker across replicas.
func (p *Publisher) RunOutboxPublisher(ctx context.Context, outboxRepo *repository.OutboxRepository, cfg OutboxConfig) {
	log.Info().
		Int64("lock_key", cfg.LockKey).
		Int("batch_size", cfg.BatchSize).
		Dur("poll_interval", cfg.PollInterval).
		Msg("Starting outbox publisher")

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping outbox publisher")
			return
		case <-ticker.C:
			if err := p.processOutboxBatch(ctx, outboxRepo, cfg.LockKey, cfg.BatchSize); err != nil {
				log.Error().Err(err).Msg("Failed to process outbox batch")
			}
		}
	}
}

// processOutboxBatch processes a single batch of outbox events
func (p *Publisher) processOutboxBatch(ctx context.Context, outboxRepo *repository.OutboxRepository, lockKey int64, batchSize int) error {
	acquired, err := outboxRepo.TryAcquireOutboxLock(ctx, lockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		// Another worker holds the lock, skip this cycle
		return nil
	}

	defer func() {
		if err := outboxRepo.ReleaseOutboxLock(ctx, lockKey); err != nil {
			log.Error().Err(err).Msg("Failed to release outbox lock")
		}
	}()

	events, err := outboxRepo.FetchOutboxBatchOrdered(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox batch: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	var successfulIDs []int64
	for _, event := range events {
		if err := p.publishOutboxEvent(ctx, &event); err != nil {
			log.Error().
				Err(err).
				Int64("outbox_id", int64(event.ID)).
				Str("event_type", event.EventType).
				Str("key", event.Key).
				Msg("Failed to publish outbox event")

			if incrementErr := outboxRepo.IncrementPublishAttempts(ctx, int64(event.ID), err.Error()); incrementErr != nil {
				log.Error().Err(incrementErr).Int64("outbox_id", int64(event.ID)).Msg("Failed to increment publish attempts")
			}
			continue
		}

		successfulIDs = append(successfulIDs, int64(event.ID))
	}

	if len(successfulIDs) > 0 {
		if err := outboxRepo.MarkOutboxPublished(ctx, successfulIDs); err != nil {
			return fmt.Errorf("failed to mark events as published: %w", err)
		}
		log.Info().
			Int("published_count", len(successfulIDs)).
			Int("total_count", len(events)).
			Msg("Outbox batch processed")
	}

	return nil
}

// publishOutboxEvent ships one outbox row to Kafka, keyed for
// per-order partition ordering.
func (p *Publisher) publishOutboxEvent(ctx context.Context, outboxEvent *models.OutboxEvent) error {
	message := kafka.Message{
		Key:   []byte(outboxEvent.Key),
		Value: []byte(outboxEvent.Payload),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(outboxEvent.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	return nil
}
