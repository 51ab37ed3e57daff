package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSecondaryImages caps the images gallery besides the primary image.
	MaxSecondaryImages = 5

	DefaultImageURL = "https://dummyimage.com/200x200/e0e0e0/333333&text=Product"
)

type Product struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	ImageURL        string    `json:"image_url"`
	ImagePublicID   string    `json:"image_public_id,omitempty"`
	Images          []string  `json:"images"`
	ImagesPublicIDs []string  `json:"images_public_ids,omitempty"`
	Category        string    `json:"category"`
	Stock           int       `json:"stock"`
	Featured        bool      `json:"featured"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Description     string   `json:"description" validate:"required"`
	Price           float64  `json:"price" validate:"gte=0"`
	ImageURL        string   `json:"image_url,omitempty"`
	ImagePublicID   string   `json:"image_public_id,omitempty"`
	Images          []string `json:"images,omitempty" validate:"max=5"`
	ImagesPublicIDs []string `json:"images_public_ids,omitempty" validate:"max=5"`
	Category        string   `json:"category" validate:"required"`
	Stock           int      `json:"stock" validate:"gte=0"`
	Featured        bool     `json:"featured"`
}

type UpdateProductRequest struct {
	Name            *string   `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description     *string   `json:"description,omitempty"`
	Price           *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL        *string   `json:"image_url,omitempty"`
	ImagePublicID   *string   `json:"image_public_id,omitempty"`
	Images          *[]string `json:"images,omitempty" validate:"omitempty,max=5"`
	ImagesPublicIDs *[]string `json:"images_public_ids,omitempty" validate:"omitempty,max=5"`
	Category        *string   `json:"category,omitempty"`
	Stock           *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Featured        *bool     `json:"featured,omitempty"`
}

// NewProduct builds a product from a create request, applying the image
// fallbacks explicitly rather than relying on storage-layer defaults.
func NewProduct(req *CreateProductRequest) *Product {
	p := &Product{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		ImagePublicID:   req.ImagePublicID,
		Images:          req.Images,
		ImagesPublicIDs: req.ImagesPublicIDs,
		Category:        req.Category,
		Stock:           req.Stock,
		Featured:        req.Featured,
	}

	p.NormalizeImages()

	return p
}

// NormalizeImages promotes the first gallery image to the primary slot when no
// primary image is set, falling back to the placeholder.
func (p *Product) NormalizeImages() {
	if p.Images == nil {
		p.Images = []string{}
	}

	if p.ImageURL == "" {
		if len(p.Images) > 0 {
			p.ImageURL = p.Images[0]
		} else {
			p.ImageURL = DefaultImageURL
		}
	}
}

// ListProductsQuery carries catalog filter, sort and pagination options.
type ListProductsQuery struct {
	Category string
	Featured bool
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page     int
	Limit    int
}

const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortNewest    = "newest"
)

type ProductListResponse struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}
