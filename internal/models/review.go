package models

import (
	"time"

	"github.com/google/uuid"
)

// Review; one per (user, product) pair, gated on a delivered order containing
// the product. Username and the Product* fields are display-only.
type Review struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	ProductID       uuid.UUID `json:"product_id"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	Username        string    `json:"username,omitempty"`
	ProductName     string    `json:"product_name,omitempty"`
	ProductImageURL string    `json:"product_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}
