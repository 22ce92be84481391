package middleware

import (
	"net/http"
	"strings"

	"bahayscout/backend/internal/security"
)

const bearerPrefix = "bearer "

// AccessValidator validates access tokens.
type AccessValidator interface {
	ValidateAccess(token string) (security.Subject, error)
}

// Authenticate puts the user and session of a valid Bearer access token into the request context.
// Requests without a token, or with an invalid one, continue anonymously; handlers that need a
// caller reject them with 401 through rbac.RequireProfile.
func Authenticate(tokens AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := tokens.ValidateAccess(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), sub.UserID, sub.SessionID)))
		})
	}
}

// extractBearer returns the token of an "Authorization: Bearer <token>" header, or "".
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
