package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/location/domain"
	"bahayscout/backend/internal/location/repository"
	"bahayscout/backend/internal/platform/httpx"
)

// Handler serves the public location lookup.
type Handler struct {
	repo repository.Repository
	log  *zap.Logger
}

// NewHandler returns a location Handler.
func NewHandler(repo repository.Repository, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Register mounts GET /api/locations.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/locations", h.list).Methods(http.MethodGet).Name("locations.list")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	locs, err := h.repo.List(r.Context(), domain.Filter{
		Region:   q.Get("region"),
		Province: q.Get("province"),
		City:     q.Get("city"),
	})
	if err != nil {
		httpx.WriteErr(w, h.log, err)
		return
	}
	if locs == nil {
		locs = []*domain.Location{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"locations": locs})
}
