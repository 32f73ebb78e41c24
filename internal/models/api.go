package models

import (
	"time"

	"github.com/google/uuid"
)

// Alternative-seller ranking strategies
type RankingFilter string

const (
	RankingSuggested RankingFilter = "suggested"
	RankingCheapest  RankingFilter = "cheapest"
	RankingNearest   RankingFilter = "nearest"
)

// IsValidRankingFilter reports whether f names a known strategy.
func IsValidRankingFilter(f RankingFilter) bool {
	switch f {
	case RankingSuggested, RankingCheapest, RankingNearest:
		return true
	}
	return false
}

// API Request Models

// OrderItemRequest references one inventory record and a quantity.
type OrderItemRequest struct {
	InventoryID string `json:"inventory_id" binding:"required" validate:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1" validate:"required,min=1"`
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	Items        []OrderItemRequest `json:"items" binding:"required" validate:"required"`
	DeliveryType DeliveryType       `json:"delivery_type" binding:"required" validate:"required"`
	Discount     float64            `json:"discount" validate:"min=0"`
}

// UpdateOrderRequest represents a status and/or rider update
type UpdateOrderRequest struct {
	Status  *OrderStatus `json:"order_status,omitempty"`
	RiderID *string      `json:"rider,omitempty"`
}

// ListOrdersQuery captures filter, pagination and sort parameters
type ListOrdersQuery struct {
	Status   *OrderStatus `form:"status"`
	Page     int          `form:"page"`
	Limit    int          `form:"limit"`
	SortDesc bool         `form:"-"`
}

// AlternativesQuery captures the alternatives lookup parameters
type AlternativesQuery struct {
	Filter    RankingFilter
	Latitude  *float64
	Longitude *float64
}

// CreateInventoryRequest represents a request to register stock
type CreateInventoryRequest struct {
	SellerID     string  `json:"seller_id" binding:"required" validate:"required"`
	VariantID    string  `json:"variant_id" binding:"required" validate:"required"`
	LocationCode string  `json:"location_code" binding:"required" validate:"required"`
	Batches      []Batch `json:"batches" binding:"required" validate:"required"`
}

// API Response Models

// PickupInfo is the self-pickup enrichment attached to order responses.
type PickupInfo struct {
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// BuyerContact is the buyer enrichment attached to order responses.
type BuyerContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// OrderResponse is a persisted order plus best-effort enrichment.
// Enrichment fields are omitted when the remote lookups fail.
type OrderResponse struct {
	Order        *Order        `json:"order"`
	Pickup       *PickupInfo   `json:"pickup,omitempty"`
	BuyerContact *BuyerContact `json:"buyer_contact,omitempty"`
}

// OngoingOrderResponse reports whether the buyer has an open order
type OngoingOrderResponse struct {
	HasOngoingOrder bool   `json:"has_ongoing_order"`
	Order           *Order `json:"order,omitempty"`
}

// Pagination describes a page of results
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// OrderListResponse is the paginated order listing
type OrderListResponse struct {
	Orders     []Order           `json:"orders"`
	Pagination Pagination        `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}

// AlternativeSeller is one ranked entry of the alternatives lookup.
// DistanceMeters is nil when either side lacks coordinates.
type AlternativeSeller struct {
	SellerID       string   `json:"seller_id"`
	SellerName     string   `json:"seller_name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	ItemCount      int      `json:"item_count"`
	TotalPrice     float64  `json:"total_price"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// AvailabilityResponse represents the response for inventory availability
type AvailabilityResponse struct {
	InventoryID    uuid.UUID `json:"inventory_id"`
	SellerID       string    `json:"seller_id"`
	VariantID      string    `json:"variant_id"`
	AvailableStock int       `json:"available_stock"`
	CacheHit       bool      `json:"cache_hit"`
	LastUpdated    time.Time `json:"last_updated"`
}
