package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bahayscout/backend/internal/platform/httpx"
)

// Handler serves GET /health and GET /ready.
type Handler struct {
	checker *Checker
	log     *zap.Logger
}

// NewHandler returns a health Handler.
func NewHandler(checker *Checker, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{checker: checker, log: log}
}

// Register mounts the health routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.live).Methods(http.MethodGet).Name("health.live")
	r.HandleFunc("/ready", h.ready).Methods(http.MethodGet).Name("health.ready")
}

func (h *Handler) live(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Ready(r.Context()); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		reason := ErrDatabaseUnavailable.Error()
		if errors.Is(err, ErrPolicyUnavailable) {
			reason = ErrPolicyUnavailable.Error()
		}
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": reason})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
