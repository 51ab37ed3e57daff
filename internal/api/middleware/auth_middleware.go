package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils/response"
)

type userContextKey string

// UserContextKey holds the resolved *models.User principal.
const UserContextKey = userContextKey("principal")

// PrincipalStore resolves the acting user; satisfied by the user repository.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddleware struct {
	jwtKey []byte
	users  PrincipalStore
}

func NewAuthMiddleware(jwtKey []byte, users PrincipalStore) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey, users: users}
}

// Authenticate verifies the bearer token, resolves the principal from the
// user store and rejects inactive or deleted accounts.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format: "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")

		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		tokenString := tokenParts[1]

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))
				return nil, errors.BadRequestError("unexpected signing method")
			}
			return m.jwtKey, nil
		})

		if err != nil {
			logger.Warn("JWT parsing failed", slog.String("error", err.Error()))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		if !token.Valid {
			logger.Warn("Invalid token")
			response.Error(w, errors.UnauthorizedError("Invalid token"))
			return
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			logger.Warn("Expired token", slog.String("userId", claims.UserID.String()))
			response.Error(w, errors.UnauthorizedError("Token expired"))
			return
		}

		user, err := m.users.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Warn("Token principal not found", slog.String("userId", claims.UserID.String()))
			response.Error(w, errors.UnauthorizedError("User not found or inactive"))
			return
		}

		if !user.Active {
			logger.Warn("Inactive principal rejected", slog.String("userId", user.ID.String()))
			response.Error(w, errors.UnauthorizedError("User not found or inactive"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)

		requestScopedLogger := logger.With(slog.String("userId", user.ID.String()))
		ctx = context.WithValue(ctx, LoggerKey, requestScopedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Authorize is the second-stage role check; it assumes Authenticate already
// ran and placed the principal in the context.
func (m *AuthMiddleware) Authorize(roles ...string) func(http.Handler) http.HandlerFunc {
	return func(next http.Handler) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			logger := LoggerFromContext(r.Context())

			user, ok := PrincipalFromContext(r.Context())
			if !ok {
				logger.Warn("Authorization attempted without authenticated principal")
				response.Error(w, errors.UnauthorizedError("Authentication required"))
				return
			}

			if !slices.Contains(roles, user.Role) {
				logger.Warn("Role not permitted",
					slog.String("role", user.Role),
					slog.Any("required", roles))
				response.Error(w, errors.ForbiddenError("Access denied: You don't have the required permission"))
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}
