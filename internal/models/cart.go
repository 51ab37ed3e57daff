package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem holds a price snapshot captured when the item was added; the item
// is not repriced when the live product changes. Name and ImageURL are display
// fields resolved from the live product at read time and are never persisted.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Name      string    `json:"name,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  []CartItem{},
		Total:  0,
	}
}

// RecomputeTotal restores the invariant total == Σ(item.price × item.quantity).
// Called after every cart mutation.
func (c *Cart) RecomputeTotal() {
	var total float64

	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}

	c.Total = total
}

// FindItem returns the index of the item referencing productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}
