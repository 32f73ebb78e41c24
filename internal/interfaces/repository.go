package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// InventoryRepository defines the contract for inventory data operations
type InventoryRepository interface {
	// Transaction management
	BeginTx(ctx context.Context) (*sqlx.Tx, error)

	// Inventory operations
	GetInventory(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error)
	GetInventoryForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.InventoryRecord, error)
	UpdateInventoryBatches(ctx context.Context, tx *sqlx.Tx, inventory *models.InventoryRecord) error
	CreateInventory(ctx context.Context, inventory *models.InventoryRecord) error

	// FindByVariants returns every inventory record carrying one of the
	// given variants with stock, excluding the listed sellers.
	FindByVariants(ctx context.Context, variantIDs []string, excludeSellerIDs []string) ([]models.InventoryRecord, error)
}

// OrderRepository defines the contract for order data operations
type OrderRepository interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)

	CreateOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// UpdateOrderStatus moves the order from one status to another only
	// if it is still in the expected starting status, so concurrent
	// updates cannot both apply from the same snapshot.
	UpdateOrderStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to models.OrderStatus, riderID *string) error
	GetOngoingOrderByBuyer(ctx context.Context, buyerID string) (*models.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string, query *models.ListOrdersQuery) ([]models.Order, int, error)

	// Outbox operations
	CreateOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType, key string, payload interface{}) error
}

// CacheRepository defines the contract for availability caching
type CacheRepository interface {
	GetAvailability(ctx context.Context, inventoryID uuid.UUID) (*models.InventoryRecord, error)
	SetAvailability(ctx context.Context, inventory *models.InventoryRecord) error
	DeleteAvailability(ctx context.Context, inventoryID uuid.UUID) error
	Close() error
}
