package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/inquiry/domain"
	"bahayscout/backend/internal/inquiry/service"
	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
	profiledomain "bahayscout/backend/internal/profile/domain"
)

// Service is the inquiry service used by the handler.
type Service interface {
	Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Inquiry, error)
	ListForOwner(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page listingdomain.Page) (*service.List, error)
	UpdateStatus(ctx context.Context, actor *profiledomain.Profile, id string, status domain.Status) (*domain.Inquiry, error)
}

// Handler serves inquiry submission and the lister's inquiry inbox.
type Handler struct {
	svc      Service
	profiles rbac.ProfileGetter
	log      *zap.Logger
}

// NewHandler returns an inquiry Handler.
func NewHandler(svc Service, profiles rbac.ProfileGetter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, profiles: profiles, log: log}
}

// Register mounts the inquiry routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/inquiries", h.create).Methods(http.MethodPost).Name("inquiries.create")
	r.HandleFunc("/api/dashboard/inquiries", h.list).Methods(http.MethodGet).Name("dashboard.inquiries")
	r.HandleFunc("/api/dashboard/inquiries/{id}", h.updateStatus).Methods(http.MethodPatch).Name("dashboard.inquiries.update")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.OptionalProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in domain.CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeErr(w, err)
		return
	}
	inq, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"inquiry": inq})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	q := r.URL.Query()
	status := domain.Status(q.Get("status"))
	if status != "" && !status.Valid() {
		h.writeErr(w, httpx.BadRequest("Invalid status"))
		return
	}
	list, err := h.svc.ListForOwner(r.Context(), actor, status, listingdomain.ParsePage(q))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireProfile(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	inq, err := h.svc.UpdateStatus(r.Context(), actor, mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"inquiry": inq})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		err = httpx.BadRequest("Missing required fields")
	case errors.Is(err, service.ErrListingNotFound):
		err = httpx.NotFound("Listing")
	case errors.Is(err, service.ErrNotFound):
		err = httpx.NotFound("Inquiry")
	case errors.Is(err, service.ErrForbidden):
		err = httpx.ErrForbidden
	}
	httpx.WriteErr(w, h.log, err)
}
