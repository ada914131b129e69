package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/volchd/projects-api/pkg/api"
)

// Recovery turns a handler panic into the standard JSON 500 envelope instead
// of a broken connection. The panic value and stack go to the log under the
// request's correlation id; the client only sees the id.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := GetRequestIDFromRequest(r)
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("requestId", requestID),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)

					// If the handler already started the response there is
					// nothing left to salvage; the server closes the
					// connection.
					if w.Header().Get("Content-Type") == "" {
						api.WriteInternalError(w, requestID)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
