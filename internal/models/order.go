package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a member of the status enum. Any
// member may follow any other; transition ordering is intentionally not
// enforced.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}

	return false
}

// OrderItem is an immutable snapshot of name, price and quantity taken at
// checkout; later product edits never alter historical orders. ImageURL is a
// display field resolved from the live product at read time.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
}

type Order struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	Items           []OrderItem    `json:"items"`
	Total           float64        `json:"total"`
	ShippingAddress Address        `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentDetails  map[string]any `json:"payment_details,omitempty"`
	Status          OrderStatus    `json:"status"`
	Username        string         `json:"username,omitempty"`
	UserEmail       string         `json:"user_email,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type CreateOrderRequest struct {
	ShippingAddress Address        `json:"shipping_address" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	PaymentDetails  map[string]any `json:"payment_details,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
