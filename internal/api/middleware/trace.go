package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/worktodo-api/internal/api/shared"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
)

// TraceMiddleware attaches a trace ID to the request context, along with a
// logger carrying that ID, so logs for one request can be correlated. Apply
// it before any handler that logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
