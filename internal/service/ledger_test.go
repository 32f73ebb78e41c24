package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

func newTestInventory(batches ...models.Batch) *models.InventoryRecord {
	list := models.BatchList(batches)
	return &models.InventoryRecord{
		ID:             uuid.New(),
		SellerID:       "seller-1",
		VariantID:      "variant-1",
		LocationCode:   "LOC-A",
		Batches:        list,
		AvailableStock: list.TotalQuantity(),
		Version:        1,
	}
}

func TestAllocateStock_SpansBatches(t *testing.T) {
	inventory := newTestInventory(
		models.Batch{Quantity: 5, UnitPrice: 10, MRP: 12},
		models.Batch{Quantity: 3, UnitPrice: 12, MRP: 14},
	)

	allocation, err := AllocateStock(inventory, 6)

	assert.NoError(t, err)
	assert.Equal(t, 6, allocation.Quantity)
	// Prices snapshot from the first consumed batch.
	assert.Equal(t, 10.0, allocation.UnitPrice)
	assert.Equal(t, 12.0, allocation.MRP)

	// First batch fully consumed and pruned, second partially drawn.
	assert.Len(t, inventory.Batches, 1)
	assert.Equal(t, 2, inventory.Batches[0].Quantity)
	assert.Equal(t, 12.0, inventory.Batches[0].UnitPrice)
	assert.Equal(t, 2, inventory.AvailableStock)
}

func TestAllocateStock_ExactBatch(t *testing.T) {
	inventory := newTestInventory(
		models.Batch{Quantity: 4, UnitPrice: 9, MRP: 11},
	)

	allocation, err := AllocateStock(inventory, 4)

	assert.NoError(t, err)
	assert.Equal(t, 9.0, allocation.UnitPrice)
	assert.Empty(t, inventory.Batches)
	assert.Equal(t, 0, inventory.AvailableStock)
}

func TestAllocateStock_InsufficientLeavesRecordUntouched(t *testing.T) {
	inventory := newTestInventory(
		models.Batch{Quantity: 2, UnitPrice: 10, MRP: 12},
		models.Batch{Quantity: 1, UnitPrice: 11, MRP: 13},
	)

	allocation, err := AllocateStock(inventory, 5)

	assert.Nil(t, allocation)
	assert.True(t, models.IsInsufficientStockError(err))

	var stockErr *models.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Record must not change on failure.
	assert.Len(t, inventory.Batches, 2)
	assert.Equal(t, 2, inventory.Batches[0].Quantity)
	assert.Equal(t, 1, inventory.Batches[1].Quantity)
	assert.Equal(t, 3, inventory.AvailableStock)
}

func TestAllocateStock_SkipsEmptyBatches(t *testing.T) {
	inventory := newTestInventory(
		models.Batch{Quantity: 0, UnitPrice: 8, MRP: 10},
		models.Batch{Quantity: 3, UnitPrice: 10, MRP: 12},
	)

	allocation, err := AllocateStock(inventory, 2)

	assert.NoError(t, err)
	// The empty leading batch contributes nothing and is pruned.
	assert.Equal(t, 10.0, allocation.UnitPrice)
	assert.Len(t, inventory.Batches, 1)
	assert.Equal(t, 1, inventory.Batches[0].Quantity)
	assert.Equal(t, 1, inventory.AvailableStock)
}

func TestAllocateStock_ExpiredStockIsNotSellable(t *testing.T) {
	expired := time.Now().Add(-24 * time.Hour)
	inventory := newTestInventory(
		models.Batch{Quantity: 5, UnitPrice: 10, MRP: 12, ExpiresAt: &expired},
	)

	allocation, err := AllocateStock(inventory, 3)

	assert.Nil(t, allocation)
	assert.True(t, models.IsInsufficientStockError(err))

	var stockErr *models.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)

	// Failed allocations never mutate the record.
	assert.Len(t, inventory.Batches, 1)
	assert.Equal(t, 5, inventory.Batches[0].Quantity)
}

func TestAllocateStock_SkipsAndPrunesExpiredBatches(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	fresh := time.Now().Add(30 * 24 * time.Hour)
	inventory := newTestInventory(
		models.Batch{Quantity: 4, UnitPrice: 8, MRP: 10, ExpiresAt: &expired},
		models.Batch{Quantity: 5, UnitPrice: 11, MRP: 13, ExpiresAt: &fresh},
	)

	allocation, err := AllocateStock(inventory, 3)

	assert.NoError(t, err)
	// The expired leading batch contributes neither stock nor price.
	assert.Equal(t, 11.0, allocation.UnitPrice)
	assert.Equal(t, 13.0, allocation.MRP)
	assert.Len(t, inventory.Batches, 1)
	assert.Equal(t, 2, inventory.Batches[0].Quantity)
	assert.Equal(t, 2, inventory.AvailableStock)
}

func TestAllocateStock_RejectsNonPositiveQuantity(t *testing.T) {
	inventory := newTestInventory(models.Batch{Quantity: 5, UnitPrice: 10, MRP: 12})

	for _, qty := range []int{0, -1} {
		allocation, err := AllocateStock(inventory, qty)
		assert.Nil(t, allocation)
		assert.True(t, models.IsValidationError(err))
	}
	assert.Equal(t, 5, inventory.AvailableStock)
}
