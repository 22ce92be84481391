package rbac

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/server/middleware"
)

type mockGetter struct {
	profiles map[string]*domain.Profile
	err      error
}

func (m *mockGetter) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profiles[userID], nil
}

func statusOf(t *testing.T, err error) (int, string) {
	t.Helper()
	var he *httpx.Error
	if !errors.As(err, &he) {
		t.Fatalf("error %v is not *httpx.Error", err)
	}
	return he.Status, he.Message
}

func TestRequireRole(t *testing.T) {
	getter := &mockGetter{profiles: map[string]*domain.Profile{
		"u-buyer":  {ID: "p1", Role: domain.RoleBuyer},
		"u-lister": {ID: "p2", Role: domain.RoleLister},
		"u-admin":  {ID: "p3", Role: domain.RoleAdmin},
	}}
	tests := []struct {
		name       string
		userID     string
		required   domain.Role
		wantStatus int
		wantMsg    string
	}{
		{"anonymous", "", domain.RoleBuyer, http.StatusUnauthorized, "Unauthorized"},
		{"no profile", "u-ghost", domain.RoleBuyer, http.StatusNotFound, "Profile not found"},
		{"buyer needs lister", "u-buyer", domain.RoleLister, http.StatusForbidden, "Forbidden: Lister role required"},
		{"lister ok", "u-lister", domain.RoleLister, 0, ""},
		{"admin is lister", "u-admin", domain.RoleLister, 0, ""},
		{"lister not admin", "u-lister", domain.RoleAdmin, http.StatusForbidden, "Forbidden: Admin role required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := middleware.WithIdentity(context.Background(), tt.userID, "s")
			p, err := RequireRole(ctx, getter, tt.required)
			if tt.wantStatus == 0 {
				if err != nil || p == nil {
					t.Fatalf("RequireRole = %v, %v", p, err)
				}
				return
			}
			status, msg := statusOf(t, err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("got %d %q, want %d %q", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestRequireProfile_RepoError(t *testing.T) {
	boom := errors.New("db down")
	ctx := middleware.WithIdentity(context.Background(), "u", "s")
	if _, err := RequireProfile(ctx, &mockGetter{err: boom}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want repo error", err)
	}
}

func TestOptionalProfile(t *testing.T) {
	getter := &mockGetter{profiles: map[string]*domain.Profile{"u": {ID: "p"}}}
	p, err := OptionalProfile(context.Background(), getter)
	if err != nil || p != nil {
		t.Errorf("anonymous: %v, %v", p, err)
	}
	p, err = OptionalProfile(middleware.WithIdentity(context.Background(), "u", "s"), getter)
	if err != nil || p == nil || p.ID != "p" {
		t.Errorf("authenticated: %v, %v", p, err)
	}
}
