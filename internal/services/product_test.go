package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	cacheMocks "github.com/shopora/shopora-platform/internal/cache/mocks"
	appErrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/repositories/mocks"
	service "github.com/shopora/shopora-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubImageStore struct {
	mock.Mock
}

func (s *stubImageStore) Destroy(ctx context.Context, publicID string) error {
	return s.Called(ctx, publicID).Error(0)
}

func setupProductService(images service.ImageStore) (*mocks.ProductRepository, *cacheMocks.Cache, service.ProductService) {
	repo := new(mocks.ProductRepository)
	c := new(cacheMocks.Cache)

	return repo, c, service.NewProductService(repo, c, images)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Placeholder Image Applied", func(t *testing.T) {
		// Arrange
		repo, _, productService := setupProductService(nil)
		repo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		// Act
		product, err := productService.CreateProduct(ctx, &models.CreateProductRequest{
			Name:        "Widget",
			Description: "A widget",
			Price:       9.99,
			Category:    "tools",
			Stock:       5,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.DefaultImageURL, product.ImageURL)
		assert.NotNil(t, product.Images)
		repo.AssertExpectations(t)
	})

	t.Run("Success - First Gallery Image Promoted", func(t *testing.T) {
		// Arrange
		repo, _, productService := setupProductService(nil)
		repo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		// Act
		product, err := productService.CreateProduct(ctx, &models.CreateProductRequest{
			Name:        "Widget",
			Description: "A widget",
			Category:    "tools",
			Images:      []string{"https://cdn.example.com/1.png", "https://cdn.example.com/2.png"},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/1.png", product.ImageURL)
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	cacheKey := "product:" + productID.String()

	t.Run("Success - Cache Miss Populates Cache", func(t *testing.T) {
		// Arrange
		repo, c, productService := setupProductService(nil)
		stored := &models.Product{ID: productID, Name: "Widget"}
		c.On("Get", ctx, cacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("GetProductByID", ctx, productID).Return(stored, nil).Once()
		c.On("Set", ctx, cacheKey, stored, mock.Anything).Return(nil).Once()

		// Act
		product, err := productService.GetProductByID(ctx, productID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Widget", product.Name)
		c.AssertExpectations(t)
	})

	t.Run("Success - Cache Hit Skips Repository", func(t *testing.T) {
		// Arrange
		repo, c, productService := setupProductService(nil)
		c.On("Get", ctx, cacheKey, mock.Anything).Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Product)
			*dest = models.Product{ID: productID, Name: "Cached Widget"}
		}).Return(true, nil).Once()

		// Act
		product, err := productService.GetProductByID(ctx, productID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Cached Widget", product.Name)
		repo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		repo, c, productService := setupProductService(nil)
		c.On("Get", ctx, cacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		product, err := productService.GetProductByID(ctx, productID)

		// Assert
		assert.Nil(t, product)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	cacheKey := "product:" + productID.String()

	t.Run("Success - Partial Update Invalidates Cache", func(t *testing.T) {
		// Arrange
		repo, c, productService := setupProductService(nil)
		stored := &models.Product{ID: productID, Name: "Widget", Price: 9.99, Stock: 5, ImageURL: "https://cdn.example.com/w.png"}
		repo.On("GetProductByID", ctx, productID).Return(stored, nil).Once()
		repo.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
		c.On("Delete", ctx, cacheKey).Return(nil).Once()

		newPrice := 14.99

		// Act
		product, err := productService.UpdateProduct(ctx, productID, &models.UpdateProductRequest{Price: &newPrice})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 14.99, product.Price)
		// untouched fields survive
		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, 5, product.Stock)
		c.AssertExpectations(t)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	cacheKey := "product:" + productID.String()

	t.Run("Success - Cleans Cache And CDN Assets", func(t *testing.T) {
		// Arrange
		images := new(stubImageStore)
		repo, c, productService := setupProductService(images)
		stored := &models.Product{
			ID:              productID,
			Name:            "Widget",
			ImagePublicID:   "shopora/widget-main",
			ImagesPublicIDs: []string{"shopora/widget-1"},
		}
		repo.On("GetProductByID", ctx, productID).Return(stored, nil).Once()
		repo.On("DeleteProduct", ctx, productID).Return(nil).Once()
		c.On("Delete", ctx, cacheKey).Return(nil).Once()
		images.On("Destroy", ctx, "shopora/widget-main").Return(nil).Once()
		images.On("Destroy", ctx, "shopora/widget-1").Return(nil).Once()

		// Act & Assert
		assert.NoError(t, productService.DeleteProduct(ctx, productID))
		images.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Product", func(t *testing.T) {
		// Arrange
		repo, _, productService := setupProductService(nil)
		repo.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		err := productService.DeleteProduct(ctx, productID)

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		repo.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Pagination Computed From Total", func(t *testing.T) {
		// Arrange
		repo, _, productService := setupProductService(nil)
		q := &models.ListProductsQuery{Page: 2, Limit: 10}
		repo.On("ListProducts", ctx, q).Return([]*models.Product{{ID: uuid.New()}}, 25, nil).Once()

		// Act
		resp, err := productService.ListProducts(ctx, q)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 25, resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.Page)
		assert.Equal(t, 3, resp.Pagination.Pages)
	})

	t.Run("Success - Zero Limit Returns Whole Catalog As One Page", func(t *testing.T) {
		// Arrange
		repo, _, productService := setupProductService(nil)
		q := &models.ListProductsQuery{Page: 1, Limit: 0}
		products := []*models.Product{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
		repo.On("ListProducts", ctx, q).Return(products, 3, nil).Once()

		// Act
		resp, err := productService.ListProducts(ctx, q)

		// Assert
		require.NoError(t, err)
		assert.Len(t, resp.Products, 3)
		assert.Equal(t, 3, resp.Pagination.Total)
		assert.Equal(t, 0, resp.Pagination.Limit)
		assert.Equal(t, 1, resp.Pagination.Pages)
	})
}
