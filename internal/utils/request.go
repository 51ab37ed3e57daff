package utils

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/utils/response"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()))
		response.Error(w, errors.BadRequestError(err.Error()))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		slog.Warn("Validation failed", slog.String("error", err.Error()))

		var validationErrs validator.ValidationErrors
		if stderrors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, errors.ValidationError("Invalid input data").WithDetail(err.Error()))
		return false
	}

	return true
}

// ParseID extracts a UUID path parameter.
func ParseID(r *http.Request, name string) (uuid.UUID, error) {

	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, errors.BadRequestError("Missing " + name + " parameter")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequestError("Invalid " + name + " format").WithError(err)
	}

	return id, nil
}
