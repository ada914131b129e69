// Package handlers wires the HTTP surface: chi handlers for projects and
// tasks, the identity middlewares, the router, and the mapping from service
// errors to response envelopes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/middleware"
	"github.com/volchd/projects-api/pkg/api"
	appErrors "github.com/volchd/projects-api/pkg/errors"
)

// contextKey is used for context values
type contextKey struct {
	name string
}

var userIDKey = contextKey{"userID"}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// getUserID safely extracts userID from context
func getUserID(r *http.Request) (string, bool) {
	userIDVal := r.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	return userID, ok && userID != ""
}

// respondError converts service errors to HTTP responses. Validation errors
// carry every violation; not-found errors carry their client-facing message;
// anything else becomes the 500 envelope with a correlation id, and only the
// log sees the underlying error.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.WriteValidationErrors(w, appErrors.Violations(err))
	case appErrors.IsNotFound(err):
		message := "Not found"
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
		api.WriteMessage(w, http.StatusNotFound, message)
	default:
		requestID := middleware.GetRequestIDFromRequest(r)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", requestID),
		)
		api.WriteInternalError(w, requestID)
	}
}
