package realtime

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/platform/rbac"
	"bahayscout/backend/internal/security"
	"bahayscout/backend/internal/server/middleware"
)

// AccessValidator validates bearer access tokens.
type AccessValidator interface {
	ValidateAccess(token string) (security.Subject, error)
}

// Handler upgrades authenticated requests to WebSocket connections registered with the hub.
type Handler struct {
	hub      *Hub
	tokens   AccessValidator
	profiles rbac.ProfileGetter
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler returns the /api/ws handler. allowedOrigins of ["*"] or empty accepts any origin.
func NewHandler(hub *Hub, tokens AccessValidator, profiles rbac.ProfileGetter, allowedOrigins []string, log *zap.Logger) *Handler {
	h := &Handler{hub: hub, tokens: tokens, profiles: profiles, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Register mounts GET /api/ws.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/ws", h.serve).Methods(http.MethodGet).Name("realtime.ws")
}

// serve authenticates with the access_token query parameter (browsers cannot set headers on
// WebSocket requests) or an identity already set by the auth middleware.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.GetUserID(ctx); !ok {
		tok := r.URL.Query().Get("access_token")
		if tok == "" || h.tokens == nil {
			httpx.WriteErr(w, h.log, httpx.ErrUnauthorized)
			return
		}
		sub, err := h.tokens.ValidateAccess(tok)
		if err != nil {
			httpx.WriteErr(w, h.log, httpx.ErrUnauthorized)
			return
		}
		ctx = middleware.WithIdentity(ctx, sub.UserID, sub.SessionID)
	}
	p, err := rbac.RequireProfile(ctx, h.profiles)
	if err != nil {
		httpx.WriteErr(w, h.log, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug("realtime: upgrade failed", zap.Error(err))
		return
	}
	c := NewClient(h.hub, conn, p.ID)
	if !h.hub.Register(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.TrimSuffix(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowAll || origin == "" || set[origin]
	}
}
