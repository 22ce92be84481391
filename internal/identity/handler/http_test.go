package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bahayscout/backend/internal/identity/service"
)

type fakeAuth struct {
	err       error
	in        service.RegisterInput
	userAgent string
	refresh   string
	loggedOut bool
}

func (f *fakeAuth) result() (*service.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.AuthResult{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Unix(0, 0).UTC(), UserID: "u1"}, nil
}

func (f *fakeAuth) Register(_ context.Context, in service.RegisterInput, ua string) (*service.AuthResult, error) {
	f.in, f.userAgent = in, ua
	return f.result()
}

func (f *fakeAuth) Login(_ context.Context, _, _, ua string) (*service.AuthResult, error) {
	f.userAgent = ua
	return f.result()
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*service.AuthResult, error) {
	f.refresh = token
	return f.result()
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.refresh, f.loggedOut = token, true
	return f.err
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	h.Register(r)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("User-Agent", "bahay-test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	svc := &fakeAuth{}
	rec := serve(NewHandler(svc, nil), http.MethodPost, "/api/auth/register",
		`{"email":"a@b.ph","password":"bahay2024","displayName":"Ana","role":"lister"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"accessToken":"at","refreshToken":"rt","expiresAt":"1970-01-01T00:00:00Z","userId":"u1"}`, rec.Body.String())
	assert.Equal(t, "lister", svc.in.Role)
	assert.Equal(t, "bahay-test", svc.userAgent)

	svc.err = service.ErrEmailAlreadyRegistered
	rec = serve(NewHandler(svc, nil), http.MethodPost, "/api/auth/register", `{"email":"a@b.ph"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, rec.Body.String())
}

func TestLoginAndRefreshErrors(t *testing.T) {
	tests := []struct {
		name, target string
		err          error
		want         string
	}{
		{"bad credentials", "/api/auth/login", service.ErrInvalidCredentials, "Invalid email or password"},
		{"expired refresh", "/api/auth/refresh", service.ErrInvalidRefreshToken, "Invalid or expired refresh token"},
		{"reuse", "/api/auth/refresh", service.ErrRefreshTokenReuse, "Refresh token reuse detected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&fakeAuth{err: tt.err}, nil), http.MethodPost, tt.target, `{"email":"a@b.ph","refreshToken":"x"}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
		})
	}
}

func TestLogout(t *testing.T) {
	svc := &fakeAuth{}
	rec := serve(NewHandler(svc, nil), http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.loggedOut)
	assert.Empty(t, svc.refresh)

	rec = serve(NewHandler(svc, nil), http.MethodPost, "/api/auth/logout", `{"refreshToken":"rt"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rt", svc.refresh)
}
