package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"bahayscout/backend/internal/audit"
)

// auditMetadata is stored with every request-derived audit entry.
type auditMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id,omitempty"`
}

// Audit records an audit entry after each authenticated mutating request (POST, PUT, PATCH, DELETE).
// Action and resource come from audit.ParseRoute; the resource id is the {id} route variable.
// skipRoutes holds templates audited explicitly elsewhere (e.g. /api/auth/logout).
// LogEvent is best-effort, so failures never change the response.
func Audit(logger audit.AuditLogger, skipRoutes map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			next.ServeHTTP(rec, r)
			if logger == nil || !isMutating(r.Method) {
				return
			}
			userID, ok := GetUserID(r.Context())
			if !ok {
				return
			}
			route := routeTemplate(r)
			if skipRoutes[route] {
				return
			}
			ar := audit.ParseRoute(r.Method, route)
			logger.LogEvent(r.Context(), userID, ar.Action, ar.Resource, mux.Vars(r)["id"], auditMetadata{
				Method:     r.Method,
				Route:      route,
				StatusCode: rec.status,
				RequestID:  GetRequestID(r.Context()),
			})
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
