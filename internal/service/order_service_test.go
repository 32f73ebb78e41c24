package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

func newTestOrderService(orderRepo *MockOrderRepository, invRepo *MockInventoryRepository) *OrderService {
	return NewOrderService(orderRepo, invRepo, new(MockCacheRepository),
		new(MockSellerResolver), new(MockUserDirectory), new(MockRiderDirectory))
}

// newMockTx opens a transaction against a stub driver so the commit
// and rollback calls the service issues can be verified.
func newMockTx(t *testing.T) (*sqlx.Tx, sqlmock.Sqlmock) {
	t.Helper()

	db, smock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	smock.ExpectBegin()
	tx, err := sqlx.NewDb(db, "sqlmock").Beginx()
	require.NoError(t, err)
	return tx, smock
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	_, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items:        nil,
		DeliveryType: models.DeliveryCourier,
	})

	assert.True(t, models.IsValidationError(err))
}

func TestCreateOrder_RejectsUnknownDeliveryType(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	_, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items:        []models.OrderItemRequest{{InventoryID: uuid.New().String(), Quantity: 1}},
		DeliveryType: "DRONE",
	})

	assert.True(t, models.IsValidationError(err))
}

func TestCreateOrder_RejectsBadQuantityAndID(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	_, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items:        []models.OrderItemRequest{{InventoryID: uuid.New().String(), Quantity: 0}},
		DeliveryType: models.DeliveryCourier,
	})
	assert.True(t, models.IsValidationError(err))

	_, err = svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items:        []models.OrderItemRequest{{InventoryID: "not-a-uuid", Quantity: 1}},
		DeliveryType: models.DeliveryCourier,
	})
	assert.True(t, models.IsValidationError(err))
}

func TestCreateOrder_RejectsNegativeDiscount(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	_, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items:        []models.OrderItemRequest{{InventoryID: uuid.New().String(), Quantity: 1}},
		DeliveryType: models.DeliveryCourier,
		Discount:     -5,
	})

	assert.True(t, models.IsValidationError(err))
}

func TestCreateOrder_CommitsAllocationsAndTotals(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	invRepo := new(MockInventoryRepository)
	cache := new(MockCacheRepository)
	users := new(MockUserDirectory)
	svc := NewOrderService(orderRepo, invRepo, cache, new(MockSellerResolver), users, new(MockRiderDirectory))

	tx, smock := newMockTx(t)
	smock.ExpectCommit()

	rec1 := &models.InventoryRecord{
		ID: uuid.New(), SellerID: "seller-1", VariantID: "variant-1", LocationCode: "LOC-A",
		Batches: models.BatchList{{Quantity: 5, UnitPrice: 10, MRP: 12}}, AvailableStock: 5,
	}
	rec2 := &models.InventoryRecord{
		ID: uuid.New(), SellerID: "seller-2", VariantID: "variant-2", LocationCode: "LOC-B",
		Batches: models.BatchList{{Quantity: 3, UnitPrice: 20, MRP: 25}}, AvailableStock: 3,
	}

	orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	invRepo.On("GetInventoryForUpdate", mock.Anything, tx, rec1.ID).Return(rec1, nil)
	invRepo.On("GetInventoryForUpdate", mock.Anything, tx, rec2.ID).Return(rec2, nil)
	invRepo.On("UpdateInventoryBatches", mock.Anything, tx, rec1).Return(nil)
	invRepo.On("UpdateInventoryBatches", mock.Anything, tx, rec2).Return(nil)
	orderRepo.On("CreateOrder", mock.Anything, tx, mock.Anything).Return(nil)
	orderRepo.On("CreateOutboxEvent", mock.Anything, tx, models.EventTypeOrderPlaced, mock.Anything, mock.Anything).Return(nil)
	// Cache invalidation and contact enrichment run outside the
	// transaction and may race the test's end.
	cache.On("DeleteAvailability", mock.Anything, mock.Anything).Return(nil).Maybe()
	users.On("GetUserByID", mock.Anything, "buyer-1").Return(nil, assert.AnError).Maybe()

	response, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items: []models.OrderItemRequest{
			{InventoryID: rec1.ID.String(), Quantity: 2},
			{InventoryID: rec2.ID.String(), Quantity: 1},
		},
		DeliveryType: models.DeliveryCourier,
		Discount:     5,
	})

	assert.NoError(t, err)
	order := response.Order
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, 3, order.TotalItemCount)
	// 2 x 12 + 1 x 25 at MRP, 2 x 10 + 1 x 20 = 40 at unit price.
	assert.Equal(t, 49.0, order.TotalListPrice)
	assert.Equal(t, 35.0, order.GrandTotal)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 10.0, order.Items[0].UnitPrice)
	assert.Equal(t, 20.0, order.Items[1].UnitPrice)

	// The deductions were written through the same transaction.
	assert.Equal(t, 3, rec1.AvailableStock)
	assert.Equal(t, 2, rec2.AvailableStock)
	require.NoError(t, smock.ExpectationsWereMet())
	orderRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
}

func TestCreateOrder_FailedItemRollsBackEverything(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	invRepo := new(MockInventoryRepository)
	svc := newTestOrderService(orderRepo, invRepo)

	tx, smock := newMockTx(t)
	smock.ExpectRollback()

	rec1 := &models.InventoryRecord{
		ID: uuid.New(), SellerID: "seller-1", VariantID: "variant-1", LocationCode: "LOC-A",
		Batches: models.BatchList{{Quantity: 5, UnitPrice: 10, MRP: 12}}, AvailableStock: 5,
	}
	rec2 := &models.InventoryRecord{
		ID: uuid.New(), SellerID: "seller-2", VariantID: "variant-2", LocationCode: "LOC-B",
		Batches: models.BatchList{{Quantity: 1, UnitPrice: 20, MRP: 25}}, AvailableStock: 1,
	}

	orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	invRepo.On("GetInventoryForUpdate", mock.Anything, tx, rec1.ID).Return(rec1, nil)
	invRepo.On("GetInventoryForUpdate", mock.Anything, tx, rec2.ID).Return(rec2, nil)
	// Only the first item's deduction is attempted before the second
	// item fails sufficiency.
	invRepo.On("UpdateInventoryBatches", mock.Anything, tx, rec1).Return(nil)

	_, err := svc.CreateOrder(context.Background(), "buyer-1", &models.CreateOrderRequest{
		Items: []models.OrderItemRequest{
			{InventoryID: rec1.ID.String(), Quantity: 2},
			{InventoryID: rec2.ID.String(), Quantity: 2},
		},
		DeliveryType: models.DeliveryCourier,
	})

	assert.True(t, models.IsInsufficientStockError(err))

	// Nothing was persisted: the transaction rolled back and neither
	// the order row nor the outbox event was ever written.
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "CreateOutboxEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, smock.ExpectationsWereMet())
}

func TestUpdateOrder_NothingToUpdate(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	actor := &models.Session{UserID: "buyer-1", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), uuid.New(), actor, &models.UpdateOrderRequest{})

	assert.True(t, models.IsValidationError(err))
}

func TestUpdateOrder_NotFound(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	orderID := uuid.New()
	orderRepo.On("GetOrder", mock.Anything, orderID).Return(nil, nil)

	status := models.OrderStatusCancelled
	actor := &models.Session{UserID: "buyer-1", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), orderID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsNotFoundError(err))
	orderRepo.AssertExpectations(t)
}

func TestUpdateOrder_ForbiddenForOtherBuyer(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusPlaced}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	status := models.OrderStatusCancelled
	actor := &models.Session{UserID: "buyer-2", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsAuthorizationError(err))
}

func TestUpdateOrder_OrderManagerMayActOnAnyOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusCompleted}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	// The manager passes the ownership check; the request still fails
	// on the transition rule, proving authorization came first.
	status := models.OrderStatusPlaced
	actor := &models.Session{UserID: "manager-1", Valid: true, Roles: []string{RoleOrderManager}}
	_, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsValidationError(err))
	assert.False(t, models.IsAuthorizationError(err))
}

func TestUpdateOrder_RejectsCancelFromInProgress(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusInProgress}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	status := models.OrderStatusCancelled
	actor := &models.Session{UserID: "buyer-1", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsValidationError(err))
}

func TestUpdateOrder_RejectsBackwardTransition(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusCompleted}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	status := models.OrderStatusInProgress
	actor := &models.Session{UserID: "buyer-1", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsValidationError(err))
}

func TestUpdateOrder_CancelCommitsWithOutboxEvent(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	tx, smock := newMockTx(t)
	smock.ExpectCommit()

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusPlaced}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	orderRepo.On("UpdateOrderStatus", mock.Anything, tx, order.ID,
		models.OrderStatusPlaced, models.OrderStatusCancelled, (*string)(nil)).Return(nil)
	orderRepo.On("CreateOutboxEvent", mock.Anything, tx, models.EventTypeOrderCancelled,
		order.ID.String(), mock.Anything).Return(nil)

	status := models.OrderStatusCancelled
	actor := &models.Session{UserID: "buyer-1", Valid: true}
	updated, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	require.NoError(t, smock.ExpectationsWereMet())
	orderRepo.AssertExpectations(t)
}

func TestUpdateOrder_ConcurrentTransitionConflicts(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	tx, smock := newMockTx(t)
	smock.ExpectRollback()

	// The snapshot still says PLACED, but by the time the conditional
	// update runs another writer has moved the order on.
	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusPlaced}
	orderRepo.On("GetOrder", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("BeginTx", mock.Anything).Return(tx, nil)
	orderRepo.On("UpdateOrderStatus", mock.Anything, tx, order.ID,
		models.OrderStatusPlaced, models.OrderStatusCancelled, (*string)(nil)).
		Return(models.NewConflictError("order", "order status changed concurrently"))

	status := models.OrderStatusCancelled
	actor := &models.Session{UserID: "buyer-1", Valid: true}
	_, err := svc.UpdateOrder(context.Background(), order.ID, actor, &models.UpdateOrderRequest{Status: &status})

	assert.True(t, models.IsConflictError(err))
	orderRepo.AssertNotCalled(t, "CreateOutboxEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, smock.ExpectationsWereMet())
}

func TestGetOngoingOrder_None(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	orderRepo.On("GetOngoingOrderByBuyer", mock.Anything, "buyer-1").Return(nil, nil)

	response, err := svc.GetOngoingOrder(context.Background(), "buyer-1")

	assert.NoError(t, err)
	assert.False(t, response.HasOngoingOrder)
	assert.Nil(t, response.Order)
}

func TestGetOngoingOrder_Found(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	order := &models.Order{ID: uuid.New(), BuyerID: "buyer-1", Status: models.OrderStatusPlaced}
	orderRepo.On("GetOngoingOrderByBuyer", mock.Anything, "buyer-1").Return(order, nil)

	response, err := svc.GetOngoingOrder(context.Background(), "buyer-1")

	assert.NoError(t, err)
	assert.True(t, response.HasOngoingOrder)
	assert.Equal(t, order.ID, response.Order.ID)
}

func TestListOrders_DefaultsAndPagination(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	svc := newTestOrderService(orderRepo, new(MockInventoryRepository))

	orderRepo.On("ListOrdersByBuyer", mock.Anything, "buyer-1",
		mock.MatchedBy(func(q *models.ListOrdersQuery) bool {
			return q.Page == 1 && q.Limit == 20
		})).Return([]models.Order{}, 45, nil)

	response, err := svc.ListOrders(context.Background(), "buyer-1", &models.ListOrdersQuery{Page: 0, Limit: 0})

	assert.NoError(t, err)
	assert.Equal(t, 45, response.Pagination.TotalCount)
	assert.Equal(t, 3, response.Pagination.TotalPages)
	assert.NotNil(t, response.Orders)
	assert.Empty(t, response.Orders)
}

func TestListOrders_RejectsUnknownStatus(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockInventoryRepository))

	bad := models.OrderStatus("SHIPPED")
	_, err := svc.ListOrders(context.Background(), "buyer-1", &models.ListOrdersQuery{Status: &bad})

	assert.True(t, models.IsValidationError(err))
}
