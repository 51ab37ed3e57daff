package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	"github.com/shopora/shopora-platform/internal/models"
	service "github.com/shopora/shopora-platform/internal/services"
	"github.com/shopora/shopora-platform/internal/utils"
	"github.com/shopora/shopora-platform/internal/utils/response"
)

// maxPageSize caps explicit limits; a request without a limit is unpaged and
// returns the full catalog.
const maxPageSize = 100

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

func (h *ProductHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		q := parseListQuery(r)

		resp, err := h.productService.ListProducts(r.Context(), q)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, resp)
	}
}

func (h *ProductHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("product created",
			"productId", product.ID, "name", product.Name)
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("product deleted", "productId", id)
		response.Success(w, http.StatusOK, map[string]string{"message": "Product deleted"})
	}
}

func parseListQuery(r *http.Request) *models.ListProductsQuery {

	values := r.URL.Query()

	q := &models.ListProductsQuery{
		Category: values.Get("category"),
		Featured: values.Get("featured") == "true",
		Search:   values.Get("search"),
		Sort:     values.Get("sort"),
		Page:     1,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		if limit > maxPageSize {
			limit = maxPageSize
		}
		q.Limit = limit
	}

	if minPrice, err := strconv.ParseFloat(values.Get("minPrice"), 64); err == nil {
		q.MinPrice = &minPrice
	}

	if maxPrice, err := strconv.ParseFloat(values.Get("maxPrice"), 64); err == nil {
		q.MaxPrice = &maxPrice
	}

	return q
}
