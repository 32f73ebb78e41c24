package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqlx.Tx), args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to models.OrderStatus, riderID *string) error {
	args := m.Called(ctx, tx, id, from, to, riderID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOngoingOrderByBuyer(ctx context.Context, buyerID string) (*models.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string, query *models.ListOrdersQuery) ([]models.Order, int, error) {
	args := m.Called(ctx, buyerID, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) CreateOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType, key string, payload interface{}) error {
	args := m.Called(ctx, tx, eventType, key, payload)
	return args.Error(0)
}

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqlx.Tx), args.Error(1)
}

func (m *MockInventoryRepository) GetInventory(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) GetInventoryForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) UpdateInventoryBatches(ctx context.Context, tx *sqlx.Tx, inventory *models.InventoryRecord) error {
	args := m.Called(ctx, tx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateInventory(ctx context.Context, inventory *models.InventoryRecord) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepository) FindByVariants(ctx context.Context, variantIDs []string, excludeSellerIDs []string) ([]models.InventoryRecord, error) {
	args := m.Called(ctx, variantIDs, excludeSellerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryRecord), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetAvailability(ctx context.Context, inventoryID uuid.UUID) (*models.InventoryRecord, error) {
	args := m.Called(ctx, inventoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryRecord), args.Error(1)
}

func (m *MockCacheRepository) SetAvailability(ctx context.Context, inventory *models.InventoryRecord) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteAvailability(ctx context.Context, inventoryID uuid.UUID) error {
	args := m.Called(ctx, inventoryID)
	return args.Error(0)
}

func (m *MockCacheRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSellerResolver struct {
	mock.Mock
}

func (m *MockSellerResolver) ResolveSeller(ctx context.Context, id string) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRiderDirectory struct {
	mock.Mock
}

func (m *MockRiderDirectory) GetRiderByID(ctx context.Context, riderID string) (*models.Rider, error) {
	args := m.Called(ctx, riderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rider), args.Error(1)
}
