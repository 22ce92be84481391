package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/identity/service"
	"bahayscout/backend/internal/platform/httpx"
)

// AuthService is the auth service used by the handler.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput, userAgent string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password, userAgent string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Handler serves the /api/auth token endpoints.
type Handler struct {
	svc AuthService
	log *zap.Logger
}

// NewHandler returns an auth Handler.
func NewHandler(svc AuthService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts register, login, refresh and logout.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/register", h.register).Methods(http.MethodPost).Name("auth.register")
	r.HandleFunc("/api/auth/login", h.login).Methods(http.MethodPost).Name("auth.login")
	r.HandleFunc("/api/auth/refresh", h.refresh).Methods(http.MethodPost).Name("auth.refresh")
	r.HandleFunc("/api/auth/logout", h.logout).Methods(http.MethodPost).Name("auth.logout")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	res, err := h.svc.Register(r.Context(), in, r.UserAgent())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	// Bearer-only logout sends no body.
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			h.writeErr(w, err)
			return
		}
	}
	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		err = httpx.NewError(http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		err = httpx.NewError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		err = httpx.NewError(http.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, service.ErrRefreshTokenReuse):
		err = httpx.NewError(http.StatusUnauthorized, "Refresh token reuse detected")
	}
	httpx.WriteErr(w, h.log, err)
}
