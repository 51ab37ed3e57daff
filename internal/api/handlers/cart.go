package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	service "github.com/shopora/shopora-platform/internal/services"
	"github.com/shopora/shopora-platform/internal/utils"
	"github.com/shopora/shopora-platform/internal/utils/response"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

func (h *CartHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), user.ID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), user.ID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("item added to cart",
			"userId", user.ID, "productId", req.ProductID, "quantity", req.Quantity)
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), user.ID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), user.ID, productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), user.ID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}
