package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "PLACED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// statusRank orders the forward-only lifecycle. CANCELLED is reachable
// only from PLACED and is therefore not part of the rank chain.
var statusRank = map[OrderStatus]int{
	OrderStatusPlaced:     0,
	OrderStatusInProgress: 1,
	OrderStatusCompleted:  2,
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s OrderStatus) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another. Transitions are monotonic forward; the single allowed
// reversal is PLACED -> CANCELLED.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return from == OrderStatusPlaced
	}
	if from == OrderStatusCancelled {
		return false
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// DeliveryType represents how an order is handed over to the buyer
type DeliveryType string

const (
	DeliverySelfPickup DeliveryType = "SELF_PICKUP"
	DeliveryCourier    DeliveryType = "COURIER"
)

// IsValidDeliveryType reports whether d is a known delivery type.
func IsValidDeliveryType(d DeliveryType) bool {
	return d == DeliverySelfPickup || d == DeliveryCourier
}

// Event types published through the outbox
const (
	EventTypeOrderPlaced        = "order_placed"
	EventTypeOrderStatusChanged = "order_status_changed"
	EventTypeOrderCancelled     = "order_cancelled"
)

// Batch is a dated, priced sub-quantity of stock within an inventory
// record. Batches are consumed in stored order (FIFO) during
// allocation and pruned once their quantity reaches zero. An expired
// batch is never sellable regardless of its quantity.
type Batch struct {
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unit_price"`
	MRP       float64    `json:"mrp"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the batch has passed its expiry instant.
// Batches without an expiry never expire.
func (b Batch) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// BatchList stores batches as a JSONB column.
type BatchList []Batch

// Value implements driver.Valuer for JSONB storage.
func (b BatchList) Value() (driver.Value, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batches: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner for JSONB storage.
func (b *BatchList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported batch list source type %T", src)
	}
}

// TotalQuantity returns the sum of all batch quantities, expired
// batches included.
func (b BatchList) TotalQuantity() int {
	total := 0
	for _, batch := range b {
		total += batch.Quantity
	}
	return total
}

// SellableQuantity returns the sum of quantities across batches that
// have not expired as of now.
func (b BatchList) SellableQuantity(now time.Time) int {
	total := 0
	for _, batch := range b {
		if batch.Expired(now) {
			continue
		}
		total += batch.Quantity
	}
	return total
}

// CheapestUnitPrice returns the lowest unit price among non-empty,
// non-expired batches. The second return value is false when no batch
// has sellable stock.
func (b BatchList) CheapestUnitPrice(now time.Time) (float64, bool) {
	best := 0.0
	found := false
	for _, batch := range b {
		if batch.Quantity <= 0 || batch.Expired(now) {
			continue
		}
		if !found || batch.UnitPrice < best {
			best = batch.UnitPrice
			found = true
		}
	}
	return best, found
}

// InventoryRecord identifies a sellable item variant at one seller and
// location. availableStock always equals the sum of non-expired batch
// quantities at the time of the last write; the record is mutated only
// inside a ledger transaction.
type InventoryRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	SellerID       string    `db:"seller_id" json:"seller_id"`
	VariantID      string    `db:"variant_id" json:"variant_id"`
	LocationCode   string    `db:"location_code" json:"location_code"`
	Batches        BatchList `db:"batches" json:"batches"`
	AvailableStock int       `db:"available_stock" json:"available_stock"`
	Version        int64     `db:"version" json:"version"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OrderLineItem is a priced snapshot of one allocated item. It is
// immutable once the order is persisted.
type OrderLineItem struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	VariantID   string    `json:"variant_id"`
	SellerID    string    `json:"seller_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	MRP         float64   `json:"mrp"`
}

// LineItemList stores order line items as a JSONB column.
type LineItemList []OrderLineItem

// Value implements driver.Valuer for JSONB storage.
func (l LineItemList) Value() (driver.Value, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal line items: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LineItemList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported line item list source type %T", src)
	}
}

// Order represents the orders table structure
type Order struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	BuyerID        string       `db:"buyer_id" json:"buyer_id"`
	Items          LineItemList `db:"items" json:"items"`
	TotalItemCount int          `db:"total_item_count" json:"total_item_count"`
	TotalListPrice float64      `db:"total_list_price" json:"total_list_price"`
	Discount       float64      `db:"discount" json:"discount"`
	GrandTotal     float64      `db:"grand_total" json:"grand_total"`
	DeliveryType   DeliveryType `db:"delivery_type" json:"delivery_type"`
	Status         OrderStatus  `db:"status" json:"status"`
	RiderID        *string      `db:"rider_id" json:"rider_id,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// IsOngoing reports whether the order still needs fulfillment work.
func (o *Order) IsOngoing() bool {
	return o.Status == OrderStatusPlaced || o.Status == OrderStatusInProgress
}

// DistinctVariantIDs returns the unique variant ids across line items,
// preserving first-seen order.
func (o *Order) DistinctVariantIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	var ids []string
	for _, item := range o.Items {
		if _, ok := seen[item.VariantID]; ok {
			continue
		}
		seen[item.VariantID] = struct{}{}
		ids = append(ids, item.VariantID)
	}
	return ids
}

// SellerIDs returns the unique seller ids across line items.
func (o *Order) SellerIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	var ids []string
	for _, item := range o.Items {
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		ids = append(ids, item.SellerID)
	}
	return ids
}

// OutboxEvent represents the outbox pattern table for reliable event publishing
type OutboxEvent struct {
	ID              int       `db:"id" json:"id"`
	EventType       string    `db:"event_type" json:"event_type"`
	Key             string    `db:"key" json:"key"`
	Payload         string    `db:"payload" json:"payload"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Published       bool      `db:"published" json:"published"`
	PublishAttempts int       `db:"publish_attempts" json:"publish_attempts"`
	LastError       *string   `db:"last_error" json:"last_error,omitempty"`
}

// OrderEvent represents order lifecycle events published to Kafka
type OrderEvent struct {
	EventID      string      `json:"event_id"`
	EventType    string      `json:"event_type"`
	OrderID      uuid.UUID   `json:"order_id"`
	BuyerID      string      `json:"buyer_id"`
	Status       OrderStatus `json:"status"`
	InventoryIDs []uuid.UUID `json:"inventory_ids,omitempty"`
	RiderID      *string     `json:"rider_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Remote domain models returned by the external directory services.

// Seller is a business directory entry (pharmacy / medical store).
type Seller struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OwnerUserID  string   `json:"owner_user_id"`
	Address      string   `json:"address"`
	LocationCode string   `json:"location_code"`
	Phone        string   `json:"phone"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// User is a user directory entry.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Rider is a rider directory entry.
type Rider struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

// Session is the result of validating a session token with the user
// service. Cached entries are advisory and expire on a fixed TTL.
type Session struct {
	UserID string   `json:"user_id"`
	Valid  bool     `json:"valid"`
	Roles  []string `json:"roles,omitempty"`
}

// HasRole reports whether the session carries the given role.
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
