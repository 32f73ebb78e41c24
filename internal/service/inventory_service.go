package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// InventoryService registers stock and answers cached availability reads.
type InventoryService struct {
	invRepo interfaces.InventoryRepository
	cache   interfaces.CacheRepository
}

// NewInventoryService creates a new inventory service
func NewInventoryService(invRepo interfaces.InventoryRepository, cache interfaces.CacheRepository) *InventoryService {
	return &InventoryService{
		invRepo: invRepo,
		cache:   cache,
	}
}

// CreateInventory registers a new inventory record for a seller, variant
// and location. The combination is unique; a duplicate yields a
// ConflictError from the repository.
func (s *InventoryService) CreateInventory(ctx context.Context, req *models.CreateInventoryRequest) (*models.InventoryRecord, error) {
	if err := validateCreateInventoryRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inventory := &models.InventoryRecord{
		ID:             uuid.New(),
		SellerID:       req.SellerID,
		VariantID:      req.VariantID,
		LocationCode:   req.LocationCode,
		Batches:        models.BatchList(req.Batches),
		AvailableStock: models.BatchList(req.Batches).SellableQuantity(now),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.invRepo.CreateInventory(ctx, inventory); err != nil {
		return nil, err
	}

	log.Info().
		Str("inventory_id", inventory.ID.String()).
		Str("seller_id", inventory.SellerID).
		Str("variant_id", inventory.VariantID).
		Int("available_stock", inventory.AvailableStock).
		Msg("Inventory registered")

	return inventory, nil
}

// GetAvailability serves availability from cache when possible and
// falls back to the database, repopulating the cache asynchronously.
func (s *InventoryService) GetAvailability(ctx context.Context, inventoryID uuid.UUID) (*models.AvailabilityResponse, error) {
	if cached, err := s.cache.GetAvailability(ctx, inventoryID); err == nil && cached != nil {
		return availabilityFromRecord(cached, true), nil
	} else if err != nil {
		log.Warn().Err(err).Str("inventory_id", inventoryID.String()).Msg("Availability cache read failed, falling back to database")
	}

	inventory, err := s.invRepo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inventory == nil {
		return nil, models.NewNotFoundError("inventory", inventoryID.String())
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.SetAvailability(cacheCtx, inventory); err != nil {
			log.Warn().Err(err).Str("inventory_id", inventoryID.String()).Msg("Failed to populate availability cache")
		}
	}()

	return availabilityFromRecord(inventory, false), nil
}

// availabilityFromRecord recomputes sellable stock from the batches so
// a batch that expired after the record was last written is not
// reported as available.
func availabilityFromRecord(inventory *models.InventoryRecord, cacheHit bool) *models.AvailabilityResponse {
	return &models.AvailabilityResponse{
		InventoryID:    inventory.ID,
		SellerID:       inventory.SellerID,
		VariantID:      inventory.VariantID,
		AvailableStock: inventory.Batches.SellableQuantity(time.Now().UTC()),
		CacheHit:       cacheHit,
		LastUpdated:    inventory.UpdatedAt,
	}
}

func validateCreateInventoryRequest(req *models.CreateInventoryRequest) error {
	if req.SellerID == "" {
		return models.NewValidationError("seller_id", "seller id is required", nil)
	}
	if req.VariantID == "" {
		return models.NewValidationError("variant_id", "variant id is required", nil)
	}
	if req.LocationCode == "" {
		return models.NewValidationError("location_code", "location code is required", nil)
	}
	if len(req.Batches) == 0 {
		return models.NewValidationError("batches", "at least one batch is required", nil)
	}
	for i, batch := range req.Batches {
		if batch.Quantity < 0 {
			return models.NewValidationError("batches", "batch quantity cannot be negative", i)
		}
		if batch.UnitPrice < 0 || batch.MRP < 0 {
			return models.NewValidationError("batches", "batch prices cannot be negative", i)
		}
		if batch.UnitPrice > batch.MRP {
			return models.NewValidationError("batches", "unit price cannot exceed mrp", i)
		}
	}
	return nil
}
