package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopora/shopora-platform/internal/api/middleware"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	service "github.com/shopora/shopora-platform/internal/services"
	"github.com/shopora/shopora-platform/internal/utils/response"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		key := r.PathValue("key")
		if key == "" {
			response.Error(w, apperrors.BadRequestError("Missing setting key"))
			return
		}

		setting, err := h.settingsService.GetSetting(r.Context(), key)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, setting)
	}
}

func (h *SettingsHandler) Put() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		key := r.PathValue("key")
		if key == "" {
			response.Error(w, apperrors.BadRequestError("Missing setting key"))
			return
		}

		var value json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
			response.Error(w, apperrors.BadRequestError("Invalid JSON body").WithError(err))
			return
		}

		setting, err := h.settingsService.PutSetting(r.Context(), key, value)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("setting updated", "key", key)
		response.Success(w, http.StatusOK, setting)
	}
}
