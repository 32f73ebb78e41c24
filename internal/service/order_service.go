package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techblueera/be-health-service-sub001/internal/interfaces"
	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// RoleOrderManager may update any order, not only its own buyer's.
const RoleOrderManager = "order_manager"

// OrderService turns validated item lists into persisted orders and
// owns the order update path.
type OrderService struct {
	orderRepo interfaces.OrderRepository
	invRepo   interfaces.InventoryRepository
	cache     interfaces.CacheRepository
	sellers   interfaces.SellerResolver
	users     interfaces.UserDirectory
	riders    interfaces.RiderDirectory
}

// NewOrderService creates a new order service with dependency injection
func NewOrderService(
	orderRepo interfaces.OrderRepository,
	invRepo interfaces.InventoryRepository,
	cache interfaces.CacheRepository,
	sellers interfaces.SellerResolver,
	users interfaces.UserDirectory,
	riders interfaces.RiderDirectory,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		invRepo:   invRepo,
		cache:     cache,
		sellers:   sellers,
		users:     users,
		riders:    riders,
	}
}

// CreateOrder allocates stock for every line item and persists the
// order in one transaction: either the order and all deductions
// commit, or nothing does. Response enrichment happens after commit
// and never fails the order.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	if err := s.validateCreateRequest(buyerID, req); err != nil {
		return nil, err
	}

	order, err := s.createOrderTransaction(ctx, buyerID, req)
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(order)

	response := &models.OrderResponse{Order: order}
	s.enrichResponse(ctx, response)

	return response, nil
}

func (s *OrderService) validateCreateRequest(buyerID string, req *models.CreateOrderRequest) error {
	if buyerID == "" {
		return models.NewValidationError("buyer_id", "buyer id is required", nil)
	}
	if len(req.Items) == 0 {
		return models.NewValidationError("items", "order must contain at least one item", nil)
	}
	if !models.IsValidDeliveryType(req.DeliveryType) {
		return models.NewValidationError("delivery_type", "unknown delivery type", req.DeliveryType)
	}
	if req.Discount < 0 {
		return models.NewValidationError("discount", "discount cannot be negative", req.Discount)
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return models.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1", item.Quantity)
		}
		if _, err := uuid.Parse(item.InventoryID); err != nil {
			return models.NewValidationError(fmt.Sprintf("items[%d].inventory_id", i), "invalid inventory id", item.InventoryID)
		}
	}
	return nil
}

// createOrderTransaction runs the whole allocation inside one database
// transaction. A failure on any line item rolls back every deduction.
func (s *OrderService) createOrderTransaction(ctx context.Context, buyerID string, req *models.CreateOrderRequest) (*models.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order := &models.Order{
		ID:           uuid.New(),
		BuyerID:      buyerID,
		DeliveryType: req.DeliveryType,
		Status:       models.OrderStatusPlaced,
		Discount:     req.Discount,
	}

	subtotal := 0.0
	for _, item := range req.Items {
		inventoryID := uuid.MustParse(item.InventoryID)

		inventory, err := s.invRepo.GetInventoryForUpdate(ctx, tx, inventoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory: %w", err)
		}
		if inventory == nil {
			return nil, models.NewNotFoundError("inventory record", item.InventoryID)
		}

		allocation, err := AllocateStock(inventory, item.Quantity)
		if err != nil {
			return nil, err
		}

		if err := s.invRepo.UpdateInventoryBatches(ctx, tx, inventory); err != nil {
			return nil, fmt.Errorf("failed to persist allocation: %w", err)
		}

		order.Items = append(order.Items, models.OrderLineItem{
			InventoryID: inventory.ID,
			VariantID:   inventory.VariantID,
			SellerID:    inventory.SellerID,
			Quantity:    item.Quantity,
			UnitPrice:   allocation.UnitPrice,
			MRP:         allocation.MRP,
		})

		order.TotalItemCount += item.Quantity
		order.TotalListPrice += allocation.MRP * float64(item.Quantity)
		subtotal += allocation.UnitPrice * float64(item.Quantity)
	}

	// A discount may never drive the grand total negative; oversized
	// discounts are rejected rather than clamped.
	if req.Discount > subtotal {
		return nil, models.NewValidationError("discount", "discount exceeds order subtotal", req.Discount)
	}
	order.GrandTotal = subtotal - req.Discount

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	event := s.buildOrderEvent(models.EventTypeOrderPlaced, order)
	if err := s.orderRepo.CreateOutboxEvent(ctx, tx, event.EventType, order.ID.String(), event); err != nil {
		return nil, fmt.Errorf("failed to create outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("buyer_id", buyerID).
		Int("item_count", order.TotalItemCount).
		Float64("grand_total", order.GrandTotal).
		Msg("Order placed")

	return order, nil
}

// enrichResponse attaches pickup and buyer contact details via the
// remote facades. Failures are logged and the field omitted; an order
// is never failed by enrichment.
func (s *OrderService) enrichResponse(ctx context.Context, response *models.OrderResponse) {
	order := response.Order

	if order.DeliveryType == models.DeliverySelfPickup && len(order.Items) > 0 {
		seller, err := s.sellers.ResolveSeller(ctx, order.Items[0].SellerID)
		if err != nil {
			log.Warn().Err(err).
				Str("order_id", order.ID.String()).
				Str("seller_id", order.Items[0].SellerID).
				Msg("Skipping pickup enrichment")
		} else {
			response.Pickup = &models.PickupInfo{
				SellerID:   seller.ID,
				SellerName: seller.Name,
				Address:    seller.Address,
				Phone:      seller.Phone,
			}
		}
	}

	user, err := s.users.GetUserByID(ctx, order.BuyerID)
	if err != nil {
		log.Warn().Err(err).
			Str("order_id", order.ID.String()).
			Str("buyer_id", order.BuyerID).
			Msg("Skipping buyer contact enrichment")
		return
	}
	response.BuyerContact = &models.BuyerContact{
		Name:  user.Name,
		Phone: user.Phone,
		Email: user.Email,
	}
}

// invalidateAvailability drops cached availability for every inventory
// record the order touched.
func (s *OrderService) invalidateAvailability(order *models.Order) {
	items := order.Items
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for _, item := range items {
			if err := s.cache.DeleteAvailability(ctx, item.InventoryID); err != nil {
				log.Error().Err(err).
					Str("inventory_id", item.InventoryID.String()).
					Msg("Failed to invalidate availability cache")
			}
		}
	}()
}

// UpdateOrder applies a status and/or rider change. Only the order's
// buyer (or an order manager) may update it; a transition to CANCELLED
// is permitted only from PLACED, and no other backward transition is
// allowed.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, actor *models.Session, req *models.UpdateOrderRequest) (*models.Order, error) {
	if req.Status == nil && req.RiderID == nil {
		return nil, models.NewValidationError("request", "nothing to update", nil)
	}

	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.NewNotFoundError("order", orderID.String())
	}

	if actor.UserID != order.BuyerID && !actor.HasRole(RoleOrderManager) {
		return nil, models.NewAuthorizationError("order belongs to another buyer")
	}

	newStatus := order.Status
	if req.Status != nil {
		if !models.IsValidOrderStatus(*req.Status) {
			return nil, models.NewValidationError("order_status", "unknown order status", *req.Status)
		}
		if !models.CanTransition(order.Status, *req.Status) {
			return nil, models.NewValidationError("order_status",
				fmt.Sprintf("cannot transition from %s to %s", order.Status, *req.Status), *req.Status)
		}
		newStatus = *req.Status
	}

	if req.RiderID != nil {
		s.checkRider(ctx, *req.RiderID)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The conditional update re-checks the starting status inside the
	// transaction; a concurrent transition surfaces as a conflict.
	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, order.Status, newStatus, req.RiderID); err != nil {
		return nil, err
	}

	order.Status = newStatus
	if req.RiderID != nil {
		order.RiderID = req.RiderID
	}

	eventType := models.EventTypeOrderStatusChanged
	if newStatus == models.OrderStatusCancelled {
		eventType = models.EventTypeOrderCancelled
	}
	event := s.buildOrderEvent(eventType, order)
	if err := s.orderRepo.CreateOutboxEvent(ctx, tx, event.EventType, order.ID.String(), event); err != nil {
		return nil, fmt.Errorf("failed to create outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("order_id", orderID.String()).
		Str("status", string(newStatus)).
		Msg("Order updated")

	return order, nil
}

// checkRider verifies the rider exists. Directory outages only log; a
// definitive not-found is logged too since the assignment itself is
// the courier dispatcher's call.
func (s *OrderService) checkRider(ctx context.Context, riderID string) {
	if _, err := s.riders.GetRiderByID(ctx, riderID); err != nil {
		log.Warn().Err(err).Str("rider_id", riderID).Msg("Rider lookup failed during assignment")
	}
}

// GetOngoingOrder returns the buyer's open order, if any.
func (s *OrderService) GetOngoingOrder(ctx context.Context, buyerID string) (*models.OngoingOrderResponse, error) {
	if buyerID == "" {
		return nil, models.NewValidationError("buyer_id", "buyer id is required", nil)
	}

	order, err := s.orderRepo.GetOngoingOrderByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	return &models.OngoingOrderResponse{
		HasOngoingOrder: order != nil,
		Order:           order,
	}, nil
}

// ListOrders returns a filtered, paginated page of the buyer's orders.
func (s *OrderService) ListOrders(ctx context.Context, buyerID string, query *models.ListOrdersQuery) (*models.OrderListResponse, error) {
	if buyerID == "" {
		return nil, models.NewValidationError("buyer_id", "buyer id is required", nil)
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Status != nil && !models.IsValidOrderStatus(*query.Status) {
		return nil, models.NewValidationError("status", "unknown order status", *query.Status)
	}

	orders, total, err := s.orderRepo.ListOrdersByBuyer(ctx, buyerID, query)
	if err != nil {
		return nil, err
	}

	totalPages := (total + query.Limit - 1) / query.Limit
	filters := map[string]string{}
	if query.Status != nil {
		filters["status"] = string(*query.Status)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &models.OrderListResponse{
		Orders: orders,
		Pagination: models.Pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			TotalCount: total,
			TotalPages: totalPages,
		},
		Filters: filters,
	}, nil
}

func (s *OrderService) buildOrderEvent(eventType string, order *models.Order) *models.OrderEvent {
	inventoryIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		inventoryIDs = append(inventoryIDs, item.InventoryID)
	}

	return &models.OrderEvent{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		OrderID:      order.ID,
		BuyerID:      order.BuyerID,
		Status:       order.Status,
		InventoryIDs: inventoryIDs,
		RiderID:      order.RiderID,
		Timestamp:    time.Now(),
	}
}
