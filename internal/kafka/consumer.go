package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// Consumer reads order events for the worker process
type Consumer struct {
	reader *kafka.Reader
}

var _ interfaces.MessageConsumer = (*Consumer)(nil)

// NewConsumer creates a consumer bound to the orders topic
func NewConsumer(brokers []string, ordersTopic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       ordersTopic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &Consumer{reader: reader}
}

// ConsumeOrderEvents reads events until the context is cancelled.
// Offsets are committed only after the handler succeeds; failed events
// are logged and skipped rather than blocking the partition.
func (c *Consumer) ConsumeOrderEvents(ctx context.Context, handler interfaces.OrderEventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		var event models.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Error().Err(err).
				Int64("offset", message.Offset).
				Msg("Failed to unmarshal order event, skipping")
			if err := c.reader.CommitMessages(ctx, message); err != nil {
				return fmt.Errorf("failed to commit message: %w", err)
			}
			continue
		}

		if err := handler.HandleOrderEvent(ctx, &event); err != nil {
			log.Error().Err(err).
				Str("event_id", event.EventID).
				Str("event_type", event.EventType).
				Str("order_id", event.OrderID.String()).
				Msg("Failed to handle order event")
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			return fmt.Errorf("failed to commit message: %w", err)
		}
	}
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
