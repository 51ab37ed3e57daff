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

// AdminHandler groups the user administration endpoints. Role checks happen
// in the Authorize middleware; the self-lockout guards live in the service.
type AdminHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService, validator: validator.New()}
}

func (h *AdminHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		users, err := h.userService.ListUsers(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, users)
	}
}

func (h *AdminHandler) GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

func (h *AdminHandler) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		actor, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateRoleRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.UpdateRole(r.Context(), actor, id, req.Role)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("user role updated",
			"userId", id, "role", req.Role, "actorId", actor.ID)
		response.Success(w, http.StatusOK, user)
	}
}

func (h *AdminHandler) UpdateActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		actor, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateActiveRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.UpdateActive(r.Context(), actor, id, *req.Active)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("user active flag updated",
			"userId", id, "active", *req.Active, "actorId", actor.ID)
		response.Success(w, http.StatusOK, user)
	}
}

func (h *AdminHandler) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		actor, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.userService.DeleteUser(r.Context(), actor, id); err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("user deleted",
			"userId", id, "actorId", actor.ID)
		response.Success(w, http.StatusOK, map[string]string{"message": "User deleted"})
	}
}
