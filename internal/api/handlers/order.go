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

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.Checkout(r.Context(), user, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("checkout failed",
				"userId", user.ID, "error", err)
			response.Error(w, err)

			return
		}

		middleware.LoggerFromContext(r.Context()).Info("order placed",
			"orderId", order.ID, "userId", user.ID, "total", order.Total)
		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), user, id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ListMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		orders, err := h.orderService.ListMyOrders(r.Context(), user.ID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) ListAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("order status updated",
			"orderId", id, "status", req.Status)
		response.Success(w, http.StatusOK, order)
	}
}
