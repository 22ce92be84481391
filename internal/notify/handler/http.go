package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"bahayscout/backend/internal/notify"
	"bahayscout/backend/internal/platform/httpx"
)

// Handler serves the dev-only outbox. Mount it only when EMAIL_DEV_OUTBOX is enabled.
type Handler struct {
	outbox *notify.Outbox
}

// NewHandler returns an outbox Handler.
func NewHandler(outbox *notify.Outbox) *Handler {
	return &Handler{outbox: outbox}
}

// Register mounts GET /api/dev/outbox.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/dev/outbox", h.list).Methods(http.MethodGet).Name("dev.outbox")
}

// list returns captured messages, newest first, optionally filtered by ?to=.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"messages": h.outbox.List(r.URL.Query().Get("to"))})
}
