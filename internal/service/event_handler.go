package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// CacheInvalidationHandler drops cached availability for every
// inventory record touched by a consumed order event. Invalidation is
// idempotent, so redelivered events are harmless.
type CacheInvalidationHandler struct {
	cache interfaces.CacheRepository
}

// NewCacheInvalidationHandler creates a new cache invalidation handler
func NewCacheInvalidationHandler(cache interfaces.CacheRepository) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache}
}

// HandleOrderEvent implements interfaces.OrderEventHandler.
func (h *CacheInvalidationHandler) HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	for _, inventoryID := range event.InventoryIDs {
		if err := h.cache.DeleteAvailability(ctx, inventoryID); err != nil {
			return err
		}
	}

	log.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("order_id", event.OrderID.String()).
		Int("inventory_count", len(event.InventoryIDs)).
		Msg("Processed order event")

	return nil
}
