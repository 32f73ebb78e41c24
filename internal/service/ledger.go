// Package service holds the business logic: the stock ledger, the
// order fulfillment engine and the alternative-seller ranking engine.
package service

import (
	"time"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// Allocation is the outcome of deducting a quantity from an inventory
// record. The snapshot prices come from the first batch the FIFO walk
// consumed; they are never renegotiated after the order persists.
type Allocation struct {
	Quantity  int
	UnitPrice float64
	MRP       float64
}

// AllocateStock deducts qty from the record's batches in stored order
// (FIFO), pruning batches that reach zero, and keeps availableStock
// equal to the sum of the remaining sellable batch quantities. Expired
// batches are never consumed; the walk prunes them alongside emptied
// ones.
//
// The record is mutated in place; callers must hold the row lock and
// write the record back inside the same transaction as the order. When
// sellable stock is insufficient the record is left untouched and an
// InsufficientStockError is returned, which aborts the whole order
// transaction.
func AllocateStock(inventory *models.InventoryRecord, qty int) (*Allocation, error) {
	if qty <= 0 {
		return nil, models.NewValidationError("quantity", "quantity must be positive", qty)
	}

	now := time.Now().UTC()
	available := inventory.Batches.SellableQuantity(now)
	if available < qty {
		return nil, models.NewInsufficientStockError(inventory.ID.String(), qty, available)
	}

	allocation := &Allocation{Quantity: qty}

	remaining := qty
	priced := false
	kept := inventory.Batches[:0]
	for _, batch := range inventory.Batches {
		if batch.Expired(now) {
			continue
		}
		if remaining > 0 && batch.Quantity > 0 {
			take := batch.Quantity
			if take > remaining {
				take = remaining
			}
			if !priced {
				allocation.UnitPrice = batch.UnitPrice
				allocation.MRP = batch.MRP
				priced = true
			}
			batch.Quantity -= take
			remaining -= take
		}
		if batch.Quantity > 0 {
			kept = append(kept, batch)
		}
	}

	inventory.Batches = kept
	inventory.AvailableStock = inventory.Batches.TotalQuantity()

	return allocation, nil
}
