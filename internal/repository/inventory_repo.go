package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// InventoryRepository handles database operations for inventory records
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetInventory retrieves an inventory record by id
func (r *InventoryRepository) GetInventory(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	var inventory models.InventoryRecord
	query := `SELECT id, seller_id, variant_id, location_code, batches, available_stock, version, created_at, updated_at
			  FROM inventory_records WHERE id = $1`

	err := r.db.GetContext(ctx, &inventory, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("inventory_id", id.String()).Msg("Failed to get inventory record")
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}

	return &inventory, nil
}

// GetInventoryForUpdate retrieves an inventory record with a row lock.
// Every ledger mutation goes through this lock so concurrent orders
// against the same record observe linearizable deduction.
func (r *InventoryRepository) GetInventoryForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.InventoryRecord, error) {
	var inventory models.InventoryRecord
	query := `SELECT id, seller_id, variant_id, location_code, batches, available_stock, version, created_at, updated_at
			  FROM inventory_records WHERE id = $1 FOR UPDATE`

	err := tx.GetContext(ctx, &inventory, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("inventory_id", id.String()).Msg("Failed to get inventory record for update")
		return nil, fmt.Errorf("failed to get inventory record for update: %w", err)
	}

	return &inventory, nil
}

// UpdateInventoryBatches writes back the batch list and derived stock
// after an allocation, bumping the record version.
func (r *InventoryRepository) UpdateInventoryBatches(ctx context.Context, tx *sqlx.Tx, inventory *models.InventoryRecord) error {
	query := `UPDATE inventory_records
			  SET batches = $2, available_stock = $3, version = version + 1, updated_at = NOW()
			  WHERE id = $1 AND version = $4`

	result, err := tx.ExecContext(ctx, query, inventory.ID, inventory.Batches, inventory.AvailableStock, inventory.Version)
	if err != nil {
		log.Error().Err(err).Str("inventory_id", inventory.ID.String()).Msg("Failed to update inventory batches")
		return fmt.Errorf("failed to update inventory batches: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed: inventory version mismatch")
	}

	inventory.Version++
	inventory.UpdatedAt = time.Now()

	return nil
}

// CreateInventory creates a new inventory record. The unique
// constraint on (seller_id, variant_id, location_code) surfaces as a
// ConflictError.
func (r *InventoryRepository) CreateInventory(ctx context.Context, inventory *models.InventoryRecord) error {
	query := `INSERT INTO inventory_records (id, seller_id, variant_id, location_code, batches, available_stock, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query, inventory.ID, inventory.SellerID, inventory.VariantID,
		inventory.LocationCode, inventory.Batches, inventory.AvailableStock)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return models.NewConflictError("inventory record",
				fmt.Sprintf("seller %s already stocks variant %s at %s",
					inventory.SellerID, inventory.VariantID, inventory.LocationCode))
		}
		log.Error().Err(err).Str("inventory_id", inventory.ID.String()).Msg("Failed to create inventory record")
		return fmt.Errorf("failed to create inventory record: %w", err)
	}

	inventory.Version = 1
	now := time.Now()
	inventory.CreatedAt = now
	inventory.UpdatedAt = now

	return nil
}

// FindByVariants returns every inventory record stocking one of the
// given variants with at least one non-empty batch, excluding the
// listed sellers.
func (r *InventoryRepository) FindByVariants(ctx context.Context, variantIDs []string, excludeSellerIDs []string) ([]models.InventoryRecord, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	if excludeSellerIDs == nil {
		excludeSellerIDs = []string{}
	}

	var records []models.InventoryRecord
	query := `SELECT id, seller_id, variant_id, location_code, batches, available_stock, version, created_at, updated_at
			  FROM inventory_records
			  WHERE variant_id = ANY($1)
			    AND available_stock > 0
			    AND NOT (seller_id = ANY($2))
			  ORDER BY seller_id, variant_id`

	err := r.db.SelectContext(ctx, &records, query, pq.Array(variantIDs), pq.Array(excludeSellerIDs))
	if err != nil {
		log.Error().Err(err).Msg("Failed to find inventory records by variants")
		return nil, fmt.Errorf("failed to find inventory records by variants: %w", err)
	}

	return records, nil
}

// BeginTx starts a new database transaction
func (r *InventoryRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}
