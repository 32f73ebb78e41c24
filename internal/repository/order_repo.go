package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

const orderColumns = `id, buyer_id, items, total_item_count, total_list_price, discount, grand_total, delivery_type, status, rider_id, created_at, updated_at`

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db         *sqlx.DB
	outboxRepo *OutboxRepository
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{
		db:         db,
		outboxRepo: NewOutboxRepository(db),
	}
}

// CreateOrder persists a new order inside the caller's transaction so
// it commits or rolls back together with the stock deductions.
func (r *OrderRepository) CreateOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `INSERT INTO orders (id, buyer_id, items, total_item_count, total_list_price, discount, grand_total, delivery_type, status, rider_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := tx.ExecContext(ctx, query, order.ID, order.BuyerID, order.Items, order.TotalItemCount,
		order.TotalListPrice, order.Discount, order.GrandTotal, order.DeliveryType, order.Status, order.RiderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("Failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	return nil
}

// GetOrder retrieves an order by id
func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("order_id", id.String()).Msg("Failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// UpdateOrderStatus updates status and rider assignment. The status
// predicate makes the transition conditional: a concurrent update that
// already moved the order out of the expected status matches zero rows
// and surfaces as a conflict instead of overwriting it.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to models.OrderStatus, riderID *string) error {
	query := `UPDATE orders SET status = $2, rider_id = COALESCE($3, rider_id), updated_at = NOW() WHERE id = $1 AND status = $4`

	result, err := tx.ExecContext(ctx, query, id, to, riderID, from)
	if err != nil {
		log.Error().Err(err).Str("order_id", id.String()).Msg("Failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewConflictError("order", "order status changed concurrently")
	}

	return nil
}

// GetOngoingOrderByBuyer returns the buyer's most recent order still
// in an ongoing status, or nil when none exists.
func (r *OrderRepository) GetOngoingOrderByBuyer(ctx context.Context, buyerID string) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + `
			  FROM orders
			  WHERE buyer_id = $1 AND status IN ($2, $3)
			  ORDER BY created_at DESC
			  LIMIT 1`

	err := r.db.GetContext(ctx, &order, query, buyerID, models.OrderStatusPlaced, models.OrderStatusInProgress)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to get ongoing order")
		return nil, fmt.Errorf("failed to get ongoing order: %w", err)
	}

	return &order, nil
}

// ListOrdersByBuyer returns a page of the buyer's orders plus the
// total count for pagination.
func (r *OrderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string, query *models.ListOrdersQuery) ([]models.Order, int, error) {
	where := `WHERE buyer_id = $1`
	args := []interface{}{buyerID}

	if query.Status != nil {
		where += ` AND status = $2`
		args = append(args, *query.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		log.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	offset := (query.Page - 1) * query.Limit
	listQuery := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		orderColumns, where, direction, query.Limit, offset)

	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, listQuery, args...); err != nil {
		log.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to list orders")
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// CreateOutboxEvent creates a new outbox event for reliable message publishing
func (r *OrderRepository) CreateOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType, key string, payload interface{}) error {
	return r.outboxRepo.InsertOutboxEvent(ctx, tx, eventType, key, payload)
}

// BeginTx starts a new database transaction
func (r *OrderRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}
