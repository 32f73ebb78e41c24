package interfaces

import (
	"context"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// OrderEventHandler processes one consumed order event
type OrderEventHandler interface {
	HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// MessageConsumer defines the contract for consuming order events
type MessageConsumer interface {
	ConsumeOrderEvents(ctx context.Context, handler OrderEventHandler) error
	Close() error
}
