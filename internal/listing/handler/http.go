package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/service"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
	profiledomain "bahayscout/backend/internal/profile/domain"
)

// Service is the listing service used by the handler.
type Service interface {
	Search(ctx context.Context, f domain.Filters, page domain.Page) (*service.SearchResult, error)
	Get(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error)
	GetBySlug(ctx context.Context, actor *profiledomain.Profile, slug string) (*domain.Listing, error)
	Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Listing, error)
	Update(ctx context.Context, actor *profiledomain.Profile, id string, in domain.UpdateInput) (*domain.Listing, error)
	Submit(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error)
	Approve(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error)
	Reject(ctx context.Context, actor *profiledomain.Profile, id string, reason *string) (*domain.Listing, error)
	AddPhoto(ctx context.Context, actor *profiledomain.Profile, id string, in domain.PhotoInput) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, actor *profiledomain.Profile, id, photoID string) error
	ListMine(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page domain.Page) (*service.SearchResult, error)
	ListForModeration(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page domain.Page) (*service.SearchResult, error)
}

// Handler serves the listing API.
type Handler struct {
	svc      Service
	profiles rbac.ProfileGetter
	log      *zap.Logger
}

// NewHandler returns a listing Handler.
func NewHandler(svc Service, profiles rbac.ProfileGetter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, profiles: profiles, log: log}
}

// Register mounts the public, dashboard and admin listing routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/listings", h.search).Methods(http.MethodGet).Name("listings.search")
	r.HandleFunc("/api/listings", h.create).Methods(http.MethodPost).Name("listings.create")
	r.HandleFunc("/api/listings/slug/{slug}", h.getBySlug).Methods(http.MethodGet).Name("listings.get_by_slug")
	r.HandleFunc("/api/listings/{id}", h.get).Methods(http.MethodGet).Name("listings.get")
	r.HandleFunc("/api/listings/{id}", h.update).Methods(http.MethodPatch).Name("listings.update")
	r.HandleFunc("/api/listings/{id}/submit", h.submit).Methods(http.MethodPost).Name("listings.submit")
	r.HandleFunc("/api/listings/{id}/photos", h.addPhoto).Methods(http.MethodPost).Name("listings.photos.add")
	r.HandleFunc("/api/listings/{id}/photos/{photoId}", h.deletePhoto).Methods(http.MethodDelete).Name("listings.photos.delete")
	r.HandleFunc("/api/dashboard/listings", h.mine).Methods(http.MethodGet).Name("dashboard.listings")
	r.HandleFunc("/api/admin/listings", h.moderationQueue).Methods(http.MethodGet).Name("admin.listings")
	r.HandleFunc("/api/admin/listings/{id}/approve", h.approve).Methods(http.MethodPost).Name("admin.listings.approve")
	r.HandleFunc("/api/admin/listings/{id}/reject", h.reject).Methods(http.MethodPost).Name("admin.listings.reject")
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Search(r.Context(), domain.ParseFilters(q), domain.ParsePage(q))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.OptionalProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	l, err := h.svc.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.OptionalProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	l, err := h.svc.GetBySlug(r.Context(), actor, mux.Vars(r)["slug"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in domain.CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	l, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"listing": l})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in domain.UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	l, err := h.svc.Update(r.Context(), actor, mux.Vars(r)["id"], in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"listing": l})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, false, func(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
		return h.svc.Submit(ctx, actor, id)
	})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, true, h.svc.Approve)
}

type rejectRequest struct {
	Reason *string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpx.DecodeOptionalJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	h.transition(w, r, true, func(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
		return h.svc.Reject(ctx, actor, id, req.Reason)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, admin bool, apply func(context.Context, *profiledomain.Profile, string) (*domain.Listing, error)) {
	var (
		actor *profiledomain.Profile
		err   error
	)
	if admin {
		actor, err = rbac.RequireAdmin(r.Context(), h.profiles)
	} else {
		actor, err = rbac.RequireProfile(r.Context(), h.profiles)
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	l, err := apply(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"listing": l})
}

func (h *Handler) addPhoto(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in domain.PhotoInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	ph, err := h.svc.AddPhoto(r.Context(), actor, mux.Vars(r)["id"], in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"photo": ph})
}

func (h *Handler) deletePhoto(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	vars := mux.Vars(r)
	if err := h.svc.DeletePhoto(r.Context(), actor, vars["id"], vars["photoId"]); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	status, err := parseStatus(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	res, err := h.svc.ListMine(r.Context(), actor, status, domain.ParsePage(r.URL.Query()))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) moderationQueue(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	status, err := parseStatus(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	res, err := h.svc.ListForModeration(r.Context(), actor, status, domain.ParsePage(r.URL.Query()))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func parseStatus(r *http.Request) (domain.Status, error) {
	s := domain.Status(r.URL.Query().Get("status"))
	if s != "" && !s.Valid() {
		return "", httpx.BadRequest("Invalid status")
	}
	return s, nil
}

// writeErr maps service errors to HTTP responses.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	var te *domain.TransitionError
	switch {
	case errors.Is(err, service.ErrNotFound):
		err = httpx.NotFound("Listing")
	case errors.Is(err, service.ErrPhotoNotFound):
		err = httpx.NotFound("Photo")
	case errors.Is(err, service.ErrListerRequired):
		err = httpx.NewError(http.StatusForbidden, "Forbidden: Lister role required")
	case errors.Is(err, service.ErrAdminRequired):
		err = httpx.NewError(http.StatusForbidden, "Forbidden: Admin role required")
	case errors.Is(err, service.ErrForbidden):
		err = httpx.ErrForbidden
	case errors.As(err, &te):
		err = httpx.BadRequest(te.Error())
	}
	httpx.WriteErr(w, h.log, err)
}
