package handlers

import (
	"net/http"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/pkg/api"
)

// Authenticator extracts the caller's user id from the API Gateway Lambda
// authorizer context ("sub" claim). Token verification itself happened in
// the authorizer; by the time a request reaches this process the claim is
// trusted.
func Authenticator(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context())
			if !ok {
				logger.Error("proxy request context missing")
				api.WriteMessage(w, http.StatusInternalServerError, "Authentication context not available")
				return
			}

			if proxyCtx.Authorizer == nil || proxyCtx.Authorizer.Lambda == nil {
				api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, ok := proxyCtx.Authorizer.Lambda["sub"].(string)
			if !ok || userID == "" {
				api.WriteMessage(w, http.StatusUnauthorized, "Invalid authentication")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// HeaderIdentity resolves the caller from the X-User-ID header, falling back
// to a fixed id. It stands in for the authorizer when running against
// DynamoDB Local and in handler tests; never mount it behind a public
// endpoint.
func HeaderIdentity(fallbackUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				userID = fallbackUserID
			}
			if userID == "" {
				api.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}
