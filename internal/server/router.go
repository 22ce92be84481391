// Package server assembles the HTTP router and middleware chain and the gRPC health server.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"bahayscout/backend/internal/audit"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/server/middleware"
	"bahayscout/backend/internal/telemetry"
	"bahayscout/backend/internal/telemetry/otel"
)

// Registrar mounts a group of routes. Every HTTP handler package implements it.
type Registrar interface {
	Register(r *mux.Router)
}

// RouterConfig holds the cross-cutting dependencies of the middleware chain. Nil fields disable
// the matching middleware behaviour (no auth, no audit, no telemetry).
type RouterConfig struct {
	Log            *zap.Logger
	Tokens         middleware.AccessValidator
	Audit          audit.AuditLogger
	Events         telemetry.EventEmitter
	Metrics        *otel.HTTPMetrics
	AllowedOrigins []string
	// ServiceName names the otelhttp server spans.
	ServiceName string
}

var (
	// unobservedRoutes are not measured or emitted as telemetry.
	unobservedRoutes = map[string]bool{"/health": true, "/ready": true, "/api/ws": true}
	// explicitlyAuditedRoutes are audited by the identity service with their own actions.
	explicitlyAuditedRoutes = map[string]bool{
		"/api/auth/register": true,
		"/api/auth/login":    true,
		"/api/auth/refresh":  true,
		"/api/auth/logout":   true,
	}
)

// NewRouter mounts every registrar on a mux router and wraps it in the middleware chain:
// otelhttp, request id, client IP, recover and CORS outside the router; auth, logging, telemetry
// and audit on matched routes.
func NewRouter(cfg RouterConfig, registrars ...Registrar) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteErr(w, log, httpx.NewError(http.StatusNotFound, "Not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteErr(w, log, httpx.NewError(http.StatusMethodNotAllowed, "Method not allowed"))
	})
	for _, reg := range registrars {
		reg.Register(r)
	}
	r.Use(
		middleware.Authenticate(cfg.Tokens),
		middleware.Logging(log),
		middleware.Telemetry(cfg.Events, cfg.Metrics, unobservedRoutes),
		middleware.Audit(cfg.Audit, explicitlyAuditedRoutes),
	)

	var h http.Handler = r
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.Recover(log)(h)
	h = middleware.ClientIP(h)
	h = middleware.RequestID(h)
	name := cfg.ServiceName
	if name == "" {
		name = "bahayscout-api"
	}
	return otelhttp.NewHandler(h, name, otelhttp.WithFilter(func(r *http.Request) bool {
		return !unobservedRoutes[r.URL.Path]
	}))
}
