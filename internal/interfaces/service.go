package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// OrderService defines the contract for order business operations
type OrderService interface {
	CreateOrder(ctx context.Context, buyerID string, req *models.CreateOrderRequest) (*models.OrderResponse, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, actor *models.Session, req *models.UpdateOrderRequest) (*models.Order, error)
	GetOngoingOrder(ctx context.Context, buyerID string) (*models.OngoingOrderResponse, error)
	ListOrders(ctx context.Context, buyerID string, query *models.ListOrdersQuery) (*models.OrderListResponse, error)
}

// AlternativesService defines the contract for the alternative-seller lookup
type AlternativesService interface {
	FindAlternativeSellers(ctx context.Context, orderID string, query *models.AlternativesQuery) ([]models.AlternativeSeller, error)
}

// InventoryService defines the contract for inventory operations
type InventoryService interface {
	CreateInventory(ctx context.Context, req *models.CreateInventoryRequest) (*models.InventoryRecord, error)
	GetAvailability(ctx context.Context, inventoryID uuid.UUID) (*models.AvailabilityResponse, error)
}
