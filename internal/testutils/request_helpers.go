package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/shopora/shopora-platform/internal/api/middleware"
	"github.com/shopora/shopora-platform/internal/models"
)

// CreateTestRequest builds a request carrying a discard logger and, when user
// is non-nil, an authenticated principal, mirroring what the middleware chain
// would have set.
func CreateTestRequest(method, target string, body io.Reader, user *models.User, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	if user != nil {
		ctx = context.WithValue(ctx, middleware.UserContextKey, user)
	}

	return req.WithContext(ctx)
}
