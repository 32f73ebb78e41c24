package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

func TestCreateInventory_ComputesAvailableStock(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	svc := NewInventoryService(invRepo, new(MockCacheRepository))

	invRepo.On("CreateInventory", mock.Anything, mock.MatchedBy(func(inv *models.InventoryRecord) bool {
		return inv.AvailableStock == 8 && inv.Version == 1 && inv.ID != uuid.Nil
	})).Return(nil)

	inventory, err := svc.CreateInventory(context.Background(), &models.CreateInventoryRequest{
		SellerID:     "seller-1",
		VariantID:    "variant-1",
		LocationCode: "LOC-A",
		Batches: []models.Batch{
			{Quantity: 5, UnitPrice: 10, MRP: 12},
			{Quantity: 3, UnitPrice: 11, MRP: 13},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 8, inventory.AvailableStock)
	invRepo.AssertExpectations(t)
}

func TestCreateInventory_Validation(t *testing.T) {
	svc := NewInventoryService(new(MockInventoryRepository), new(MockCacheRepository))

	cases := []struct {
		name string
		req  *models.CreateInventoryRequest
	}{
		{"missing seller", &models.CreateInventoryRequest{VariantID: "v", LocationCode: "L", Batches: []models.Batch{{Quantity: 1, UnitPrice: 1, MRP: 1}}}},
		{"missing variant", &models.CreateInventoryRequest{SellerID: "s", LocationCode: "L", Batches: []models.Batch{{Quantity: 1, UnitPrice: 1, MRP: 1}}}},
		{"missing location", &models.CreateInventoryRequest{SellerID: "s", VariantID: "v", Batches: []models.Batch{{Quantity: 1, UnitPrice: 1, MRP: 1}}}},
		{"no batches", &models.CreateInventoryRequest{SellerID: "s", VariantID: "v", LocationCode: "L"}},
		{"negative quantity", &models.CreateInventoryRequest{SellerID: "s", VariantID: "v", LocationCode: "L", Batches: []models.Batch{{Quantity: -1, UnitPrice: 1, MRP: 1}}}},
		{"price above mrp", &models.CreateInventoryRequest{SellerID: "s", VariantID: "v", LocationCode: "L", Batches: []models.Batch{{Quantity: 1, UnitPrice: 5, MRP: 4}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateInventory(context.Background(), tc.req)
			assert.True(t, models.IsValidationError(err))
		})
	}
}

func TestCreateInventory_ConflictPassesThrough(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	svc := NewInventoryService(invRepo, new(MockCacheRepository))

	invRepo.On("CreateInventory", mock.Anything, mock.Anything).
		Return(models.NewConflictError("inventory record", "duplicate"))

	_, err := svc.CreateInventory(context.Background(), &models.CreateInventoryRequest{
		SellerID:     "seller-1",
		VariantID:    "variant-1",
		LocationCode: "LOC-A",
		Batches:      []models.Batch{{Quantity: 1, UnitPrice: 1, MRP: 2}},
	})

	assert.True(t, models.IsConflictError(err))
}

func TestGetAvailability_CacheHit(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	cache := new(MockCacheRepository)
	svc := NewInventoryService(invRepo, cache)

	inventory := newTestInventory(models.Batch{Quantity: 7, UnitPrice: 10, MRP: 12})
	inventory.UpdatedAt = time.Now()
	cache.On("GetAvailability", mock.Anything, inventory.ID).Return(inventory, nil)

	result, err := svc.GetAvailability(context.Background(), inventory.ID)

	assert.NoError(t, err)
	assert.True(t, result.CacheHit)
	assert.Equal(t, 7, result.AvailableStock)
	assert.Equal(t, inventory.UpdatedAt, result.LastUpdated)
	invRepo.AssertNotCalled(t, "GetInventory", mock.Anything, mock.Anything)
}

func TestGetAvailability_CacheMissFallsBack(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	cache := new(MockCacheRepository)
	svc := NewInventoryService(invRepo, cache)

	inventory := newTestInventory(models.Batch{Quantity: 7, UnitPrice: 10, MRP: 12})
	cache.On("GetAvailability", mock.Anything, inventory.ID).Return(nil, nil)
	invRepo.On("GetInventory", mock.Anything, inventory.ID).Return(inventory, nil)
	// Repopulation happens in a goroutine; it may not run before the
	// test finishes.
	cache.On("SetAvailability", mock.Anything, inventory).Return(nil).Maybe()

	result, err := svc.GetAvailability(context.Background(), inventory.ID)

	assert.NoError(t, err)
	assert.False(t, result.CacheHit)
	assert.Equal(t, 7, result.AvailableStock)
}

func TestGetAvailability_ExcludesExpiredBatches(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	cache := new(MockCacheRepository)
	svc := NewInventoryService(invRepo, cache)

	expired := time.Now().Add(-time.Hour)
	fresh := time.Now().Add(24 * time.Hour)
	inventory := newTestInventory(
		models.Batch{Quantity: 4, UnitPrice: 10, MRP: 12, ExpiresAt: &expired},
		models.Batch{Quantity: 3, UnitPrice: 11, MRP: 13, ExpiresAt: &fresh},
	)
	// A batch that expired after the record was cached must not be
	// reported as available.
	cache.On("GetAvailability", mock.Anything, inventory.ID).Return(inventory, nil)

	result, err := svc.GetAvailability(context.Background(), inventory.ID)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.AvailableStock)
}

func TestGetAvailability_NotFound(t *testing.T) {
	invRepo := new(MockInventoryRepository)
	cache := new(MockCacheRepository)
	svc := NewInventoryService(invRepo, cache)

	id := uuid.New()
	cache.On("GetAvailability", mock.Anything, id).Return(nil, nil)
	invRepo.On("GetInventory", mock.Anything, id).Return(nil, nil)

	_, err := svc.GetAvailability(context.Background(), id)

	assert.True(t, models.IsNotFoundError(err))
}
