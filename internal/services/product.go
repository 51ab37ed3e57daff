package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	"github.com/shopora/shopora-platform/internal/cache"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
)

// ImageStore removes uploaded assets from the media CDN. Deletions are best
// effort; a failed removal never blocks the catalog operation.
type ImageStore interface {
	Destroy(ctx context.Context, publicID string) error
}

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, q *models.ListProductsQuery) (*models.ProductListResponse, error)
}

type productService struct {
	repo   repository.ProductRepository
	cache  cache.Cache
	images ImageStore
}

func NewProductService(repo repository.ProductRepository, c cache.Cache, images ImageStore) ProductService {
	return &productService{repo: repo, cache: c, images: images}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := models.NewProduct(req)

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, apperrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to cache product", "productId", id, "error", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.ImagePublicID != nil {
		product.ImagePublicID = *req.ImagePublicID
	}
	if req.Images != nil {
		if len(*req.Images) > models.MaxSecondaryImages {
			return nil, apperrors.ValidationError("Too many gallery images")
		}
		product.Images = *req.Images
	}
	if req.ImagesPublicIDs != nil {
		product.ImagesPublicIDs = *req.ImagesPublicIDs
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}

	product.NormalizeImages()

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, apperrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

// DeleteProduct removes the product together with its reviews and cart
// references, then cleans up CDN assets and the cache entry.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return apperrors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return apperrors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, id)
	s.destroyImages(ctx, product)

	return nil
}

func (s *productService) ListProducts(ctx context.Context, q *models.ListProductsQuery) (*models.ProductListResponse, error) {

	products, total, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	// limit 0 means unpaged; the whole catalog is one page
	pages := 1
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}

	return &models.ProductListResponse{
		Products: products,
		Pagination: models.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: pages,
		},
	}, nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to invalidate product cache", "productId", id, "error", err)
	}
}

func (s *productService) destroyImages(ctx context.Context, product *models.Product) {

	if s.images == nil {
		return
	}

	publicIDs := make([]string, 0, len(product.ImagesPublicIDs)+1)
	if product.ImagePublicID != "" {
		publicIDs = append(publicIDs, product.ImagePublicID)
	}
	publicIDs = append(publicIDs, product.ImagesPublicIDs...)

	logger := middleware.LoggerFromContext(ctx)

	for _, publicID := range publicIDs {
		if err := s.images.Destroy(ctx, publicID); err != nil {
			logger.Warn("failed to remove product image", "publicId", publicID, "error", err)
		}
	}
}
