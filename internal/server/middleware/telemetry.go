package middleware

import (
	"net/http"
	"time"

	"bahayscout/backend/internal/telemetry"
	"bahayscout/backend/internal/telemetry/domain"
	"bahayscout/backend/internal/telemetry/otel"
)

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
	RequestID  string `json:"request_id,omitempty"`
}

// Telemetry records the request duration histogram and emits an http_request event after each request.
// Best-effort: emit failures are logged by telemetry.EmitAsync. Either of emitter and metrics may be nil.
// skipRoutes is the set of route templates to ignore (e.g. /health).
func Telemetry(emitter telemetry.EventEmitter, metrics *otel.HTTPMetrics, skipRoutes map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			route := routeTemplate(r)
			if skipRoutes[route] {
				return
			}
			ctx := r.Context()
			elapsed := time.Since(start)
			metrics.Record(ctx, r.Method, route, rec.status, elapsed)
			if emitter == nil {
				return
			}
			ev := telemetry.NewEvent(domain.EventHTTPRequest, "http_middleware", httpRequestMetadata{
				Method:     r.Method,
				Route:      route,
				StatusCode: rec.status,
				DurationMs: elapsed.Milliseconds(),
				ClientIP:   ClientIPFromContext(ctx),
				RequestID:  GetRequestID(ctx),
			})
			ev.UserID, _ = GetUserID(ctx)
			ev.SessionID, _ = GetSessionID(ctx)
			telemetry.EmitAsync(emitter, ctx, ev)
		})
	}
}
