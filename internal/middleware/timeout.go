package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/volchd/projects-api/pkg/api"
)

// Timeout bounds each request. The handler runs in its own goroutine; when
// the deadline wins the race the client gets a 408 and the handler's context
// is cancelled so in-flight DynamoDB calls stop.
func Timeout(logger *zap.Logger, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			done := make(chan struct{})

			go func() {
				defer func() {
					// A panic in here would otherwise kill the process:
					// this goroutine is outside the Recovery middleware
					// when Timeout is mounted before it.
					if rec := recover(); rec != nil {
						requestID := GetRequestIDFromRequest(r)
						logger.Error("panic in request goroutine",
							zap.Any("panic", rec),
							zap.String("requestId", requestID),
							zap.ByteString("stack", debug.Stack()),
						)
						if w.Header().Get("Content-Type") == "" {
							api.WriteInternalError(w, requestID)
						}
					}
					close(done)
				}()
				next.ServeHTTP(w, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("request timed out",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout),
					zap.String("requestId", GetRequestIDFromRequest(r)),
				)
				if w.Header().Get("Content-Type") == "" {
					api.WriteMessage(w, http.StatusRequestTimeout, "Request timeout")
				}
			}
		})
	}
}
