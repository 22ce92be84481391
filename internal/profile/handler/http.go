package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
	"bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/profile/repository"
	"bahayscout/backend/internal/profile/service"
)

// Service is the profile service used by the handler.
type Service interface {
	Me(ctx context.Context, actor *domain.Profile) (*service.Me, error)
	UpdateOwn(ctx context.Context, actor *domain.Profile, in service.UpdateInput) (*domain.Profile, error)
	Agent(ctx context.Context, id string, page listingdomain.Page) (*service.Agent, error)
	ListUsers(ctx context.Context, actor *domain.Profile, f repository.ListFilter) (*service.UserList, error)
	SetRole(ctx context.Context, actor *domain.Profile, id, role string) (*domain.Profile, error)
	SetVerified(ctx context.Context, actor *domain.Profile, id string, verified bool) (*domain.Profile, error)
}

// Handler serves profile, agent and admin user routes.
type Handler struct {
	svc      Service
	profiles rbac.ProfileGetter
	log      *zap.Logger
}

// NewHandler returns a profile Handler.
func NewHandler(svc Service, profiles rbac.ProfileGetter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, profiles: profiles, log: log}
}

// Register mounts the profile routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/me", h.me).Methods(http.MethodGet).Name("auth.me")
	r.HandleFunc("/api/auth/profile", h.updateOwn).Methods(http.MethodPatch, http.MethodPost).Name("auth.profile")
	r.HandleFunc("/api/agents/{id}", h.agent).Methods(http.MethodGet).Name("agents.get")
	r.HandleFunc("/api/admin/users", h.listUsers).Methods(http.MethodGet).Name("admin.users")
	r.HandleFunc("/api/admin/users/{id}/role", h.setRole).Methods(http.MethodPatch).Name("admin.users.role")
	r.HandleFunc("/api/admin/users/{id}/verify", h.setVerified).Methods(http.MethodPatch).Name("admin.users.verify")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	me, err := h.svc.Me(r.Context(), actor)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, me)
}

func (h *Handler) updateOwn(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in service.UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	p, err := h.svc.UpdateOwn(r.Context(), actor, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) agent(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Agent(r.Context(), mux.Vars(r)["id"], listingdomain.ParsePage(r.URL.Query()))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	q := r.URL.Query()
	f := repository.ListFilter{Search: q.Get("search")}
	if role := q.Get("role"); role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			h.writeErr(w, httpx.BadRequest("Invalid role"))
			return
		}
		f.Role = parsed
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	list, err := h.svc.ListUsers(r.Context(), actor, f)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	p, err := h.svc.SetRole(r.Context(), actor, mux.Vars(r)["id"], req.Role)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profile": p})
}

type verifyRequest struct {
	Verified *bool `json:"verified"`
}

func (h *Handler) setVerified(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var req verifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	if req.Verified == nil {
		h.writeErr(w, httpx.ValidationError([]httpx.FieldError{{Field: "verified", Message: "is required"}}))
		return
	}
	p, err := h.svc.SetVerified(r.Context(), actor, mux.Vars(r)["id"], *req.Verified)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		err = httpx.NotFound("Profile")
	case errors.Is(err, service.ErrAdminRequired):
		err = httpx.NewError(http.StatusForbidden, "Forbidden: Admin role required")
	case errors.Is(err, service.ErrSelfRoleChange):
		err = httpx.BadRequest("Admins cannot change their own role")
	}
	httpx.WriteErr(w, h.log, err)
}
