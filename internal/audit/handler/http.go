package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/audit/repository"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler serves the admin audit log.
type Handler struct {
	repo     repository.Repository
	profiles rbac.ProfileGetter
	log      *zap.Logger
}

// NewHandler returns an audit Handler.
func NewHandler(repo repository.Repository, profiles rbac.ProfileGetter, log *zap.Logger) *Handler {
	return &Handler{repo: repo, profiles: profiles, log: log}
}

// Register mounts GET /api/admin/audit-logs.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/admin/audit-logs", h.list).Methods(http.MethodGet).Name("audit.list")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireAdmin(r.Context(), h.profiles); err != nil {
		httpx.WriteErr(w, h.log, err)
		return
	}
	limit := queryInt(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	logs, total, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		httpx.WriteErr(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"auditLogs": logs, "total": total})
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return n
}
