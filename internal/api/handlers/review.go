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

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New()}
}

func (h *ReviewHandler) ListByProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		reviews, err := h.reviewService.ListReviewsByProduct(r.Context(), productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}

func (h *ReviewHandler) ListMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		reviews, err := h.reviewService.ListMyReviews(r.Context(), user.ID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}

func (h *ReviewHandler) Create() http.HandlerFunc {
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

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.CreateReview(r.Context(), user, productID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("review created",
			"reviewId", review.ID, "productId", productID, "userId", user.ID)
		response.Success(w, http.StatusCreated, review)
	}
}

func (h *ReviewHandler) Update() http.HandlerFunc {
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

		var req models.UpdateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.UpdateReview(r.Context(), user, id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, review)
	}
}

func (h *ReviewHandler) Delete() http.HandlerFunc {
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

		if err := h.reviewService.DeleteReview(r.Context(), user, id); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Review deleted"})
	}
}
