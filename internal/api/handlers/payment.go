package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils"
	"github.com/shopora/shopora-platform/internal/utils/response"
	"github.com/shopora/shopora-platform/pkg/stripe"
)

type CreatePaymentIntentRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Description string `json:"description,omitempty"`
}

type PaymentHandler struct {
	client              stripe.Client
	supportedCurrencies []string
	validator           *validator.Validate
}

func NewPaymentHandler(client stripe.Client, supportedCurrencies []string) *PaymentHandler {
	return &PaymentHandler{
		client:              client,
		supportedCurrencies: supportedCurrencies,
		validator:           validator.New(),
	}
}

// CreateIntent proxies payment intent creation so the publishable client never
// holds the secret key. Amount is in the currency's smallest unit.
func (h *PaymentHandler) CreateIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		if h.client == nil {
			response.Error(w, apperrors.ThirdPartyError("Payments are not configured"))
			return
		}

		var req CreatePaymentIntentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		currency := strings.ToLower(req.Currency)
		if !slices.Contains(h.supportedCurrencies, currency) {
			response.Error(w, apperrors.ValidationError("Unsupported currency: "+req.Currency))
			return
		}

		intent, err := h.client.CreatePaymentIntent(req.Amount, currency, req.Description, map[string]string{
			"userId": user.ID.String(),
		})
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("payment intent creation failed",
				"userId", user.ID, "error", err)
			response.Error(w, apperrors.ThirdPartyError("Failed to create payment intent").WithError(err))

			return
		}

		response.Success(w, http.StatusCreated, map[string]string{
			"id":            intent.ID,
			"client_secret": intent.ClientSecret,
		})
	}
}

// GetIntent reports the status of an intent; only the user the intent was
// created for (or an admin) may read it.
func (h *PaymentHandler) GetIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		user, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		if h.client == nil {
			response.Error(w, apperrors.ThirdPartyError("Payments are not configured"))
			return
		}

		intentID := r.PathValue("id")
		if intentID == "" {
			response.Error(w, apperrors.BadRequestError("Missing payment intent ID"))
			return
		}

		intent, err := h.client.GetPaymentIntent(intentID)
		if err != nil {
			response.Error(w, apperrors.NotFoundError("Payment intent not found").WithError(err))
			return
		}

		if user.Role != models.RoleAdmin && intent.Metadata["userId"] != user.ID.String() {
			response.Error(w, apperrors.ForbiddenError("Access denied"))
			return
		}

		response.Success(w, http.StatusOK, map[string]any{
			"id":       intent.ID,
			"status":   string(intent.Status),
			"amount":   intent.Amount,
			"currency": string(intent.Currency),
		})
	}
}
