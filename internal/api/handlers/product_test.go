package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/api/handlers"
	appErrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/services/mocks"
	"github.com/shopora/shopora-platform/internal/testutils"
	"github.com/shopora/shopora-platform/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupProductTest() (*mocks.ProductService, *handlers.ProductHandler) {
	mockProductService := new(mocks.ProductService)
	productHandler := handlers.NewProductHandler(mockProductService)

	return mockProductService, productHandler
}

func TestProductList(t *testing.T) {
	t.Run("Success - No Limit Means Unpaged", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequest("GET", "/api/v1/products", nil, nil, nil)
		recorder := httptest.NewRecorder()

		mockProductService.On("ListProducts", mock.Anything, mock.MatchedBy(func(q *models.ListProductsQuery) bool {
			return q.Page == 1 && q.Limit == 0 && !q.Featured
		})).Return(&models.ProductListResponse{Products: []*models.Product{}}, nil).Once()

		// Act
		productHandler.List()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Success - Filters And Clamped Limit", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequest("GET",
			"/api/v1/products?category=tools&featured=true&search=widget&minPrice=5&maxPrice=50&page=3&limit=500&sort=price_asc",
			nil, nil, nil)
		recorder := httptest.NewRecorder()

		mockProductService.On("ListProducts", mock.Anything, mock.MatchedBy(func(q *models.ListProductsQuery) bool {
			return q.Category == "tools" &&
				q.Featured &&
				q.Search == "widget" &&
				q.Sort == "price_asc" &&
				q.Page == 3 &&
				q.Limit == 100 &&
				q.MinPrice != nil && *q.MinPrice == 5 &&
				q.MaxPrice != nil && *q.MaxPrice == 50
		})).Return(&models.ProductListResponse{Products: []*models.Product{}}, nil).Once()

		// Act
		productHandler.List()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Success - Garbage Pagination Falls Back To Defaults", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequest("GET", "/api/v1/products?page=abc&limit=-5&minPrice=cheap", nil, nil, nil)
		recorder := httptest.NewRecorder()

		mockProductService.On("ListProducts", mock.Anything, mock.MatchedBy(func(q *models.ListProductsQuery) bool {
			return q.Page == 1 && q.Limit == 0 && q.MinPrice == nil
		})).Return(&models.ProductListResponse{Products: []*models.Product{}}, nil).Once()

		// Act
		productHandler.List()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockProductService.AssertExpectations(t)
	})
}

func TestProductGet(t *testing.T) {
	t.Run("Success - Retrieve Product", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		productID := uuid.New()

		req := testutils.CreateTestRequest("GET", "/api/v1/products/"+productID.String(), nil, nil,
			map[string]string{"id": productID.String()})
		recorder := httptest.NewRecorder()

		product := &models.Product{ID: productID, Name: "Widget"}
		mockProductService.On("GetProductByID", mock.Anything, productID).Return(product, nil).Once()

		// Act
		productHandler.Get()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		productID := uuid.New()

		req := testutils.CreateTestRequest("GET", "/api/v1/products/"+productID.String(), nil, nil,
			map[string]string{"id": productID.String()})
		recorder := httptest.NewRecorder()

		mockProductService.On("GetProductByID", mock.Anything, productID).
			Return(nil, appErrors.NotFoundError("Product not found")).Once()

		// Act
		productHandler.Get()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Failure - Malformed ID", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()

		req := testutils.CreateTestRequest("GET", "/api/v1/products/42", nil, nil,
			map[string]string{"id": "42"})
		recorder := httptest.NewRecorder()

		// Act
		productHandler.Get()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		mockProductService.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})
}

func TestProductCreate(t *testing.T) {
	t.Run("Success - Product Created", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()

		createRequest := models.CreateProductRequest{
			Name:        "Widget",
			Description: "A widget",
			Price:       9.99,
			Category:    "tools",
			Stock:       10,
		}
		requestBody, _ := json.Marshal(createRequest)

		req := testutils.CreateTestRequest("POST", "/api/v1/products", bytes.NewBuffer(requestBody), testUser(), nil)
		recorder := httptest.NewRecorder()

		created := &models.Product{ID: uuid.New(), Name: "Widget"}
		mockProductService.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req *models.CreateProductRequest) bool {
			return req.Name == createRequest.Name && req.Stock == createRequest.Stock
		})).Return(created, nil).Once()

		// Act
		productHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)

		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Required Fields", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()

		requestBody, _ := json.Marshal(models.CreateProductRequest{Price: 9.99})
		req := testutils.CreateTestRequest("POST", "/api/v1/products", bytes.NewBuffer(requestBody), testUser(), nil)
		recorder := httptest.NewRecorder()

		// Act
		productHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)

		mockProductService.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})
}

func TestProductDelete(t *testing.T) {
	t.Run("Success - Product Deleted", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		productID := uuid.New()

		req := testutils.CreateTestRequest("DELETE", "/api/v1/products/"+productID.String(), nil, testUser(),
			map[string]string{"id": productID.String()})
		recorder := httptest.NewRecorder()

		mockProductService.On("DeleteProduct", mock.Anything, productID).Return(nil).Once()

		// Act
		productHandler.Delete()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockProductService.AssertExpectations(t)
	})
}
