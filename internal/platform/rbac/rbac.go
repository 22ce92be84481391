// Package rbac resolves the caller's profile and enforces the buyer < lister < admin role hierarchy.
package rbac

import (
	"context"
	"net/http"
	"strings"

	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/server/middleware"
)

// ProfileGetter loads the profile of an account.
type ProfileGetter interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// RequireProfile returns the caller's profile.
// Errors: 401 when unauthenticated, 404 "Profile not found" when the account has none.
func RequireProfile(ctx context.Context, getter ProfileGetter) (*domain.Profile, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return nil, httpx.ErrUnauthorized
	}
	p, err := getter.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, httpx.NotFound("Profile")
	}
	return p, nil
}

// OptionalProfile returns the caller's profile, or nil for anonymous requests.
func OptionalProfile(ctx context.Context, getter ProfileGetter) (*domain.Profile, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return nil, nil
	}
	return getter.GetByUserID(ctx, userID)
}

// RequireRole returns the caller's profile if its role is at least required.
// Errors: as RequireProfile, plus 403 "Forbidden: <Role> role required".
func RequireRole(ctx context.Context, getter ProfileGetter, required domain.Role) (*domain.Profile, error) {
	p, err := RequireProfile(ctx, getter)
	if err != nil {
		return nil, err
	}
	if !domain.HasRole(p.Role, required) {
		return nil, httpx.NewError(http.StatusForbidden, "Forbidden: "+titleCase(string(required))+" role required")
	}
	return p, nil
}

// RequireAdmin is RequireRole(ctx, getter, domain.RoleAdmin).
func RequireAdmin(ctx context.Context, getter ProfileGetter) (*domain.Profile, error) {
	return RequireRole(ctx, getter, domain.RoleAdmin)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
