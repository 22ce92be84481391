package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/report/domain"
	"bahayscout/backend/internal/report/service"
)

// Service is the report service used by the handler.
type Service interface {
	Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Report, error)
	List(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page listingdomain.Page) (*service.List, error)
	Resolve(ctx context.Context, actor *profiledomain.Profile, id string, status domain.Status) (*domain.Report, error)
}

// Handler serves report submission and the admin review queue.
type Handler struct {
	svc      Service
	profiles rbac.ProfileGetter
	log      *zap.Logger
}

// NewHandler returns a report Handler.
func NewHandler(svc Service, profiles rbac.ProfileGetter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, profiles: profiles, log: log}
}

// Register mounts the report routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/reports", h.create).Methods(http.MethodPost).Name("reports.create")
	r.HandleFunc("/api/admin/reports", h.list).Methods(http.MethodGet).Name("admin.reports")
	r.HandleFunc("/api/admin/reports/{id}", h.resolve).Methods(http.MethodPatch).Name("admin.reports.resolve")
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
	rep, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"report": rep})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
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
	list, err := h.svc.List(r.Context(), actor, status, listingdomain.ParsePage(q))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

type resolveRequest struct {
	Status domain.Status `json:"status"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAdmin(r.Context(), h.profiles)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var req resolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	rep, err := h.svc.Resolve(r.Context(), actor, mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"report": rep})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		err = httpx.BadRequest("Missing required fields")
	case errors.Is(err, service.ErrListingNotFound):
		err = httpx.NotFound("Listing")
	case errors.Is(err, service.ErrNotFound):
		err = httpx.NotFound("Report")
	case errors.Is(err, service.ErrAdminRequired):
		err = httpx.NewError(http.StatusForbidden, "Forbidden: Admin role required")
	}
	httpx.WriteErr(w, h.log, err)
}
