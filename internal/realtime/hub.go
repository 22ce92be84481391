// Package realtime pushes marketplace events to connected clients over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event types pushed to clients.
const (
	EventInquiryCreated       = "inquiry.created"
	EventListingStatusChanged = "listing.status_changed"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
	publishBuffer  = 256
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Publisher delivers an event to every connection of a profile. Delivery is best-effort.
type Publisher interface {
	Publish(profileID string, ev Event)
}

type message struct {
	profileID string
	payload   []byte
}

// Hub tracks connections by profile id. Register, unregister and delivery all happen on the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	publish    chan message
	done       chan struct{}
	clients    map[string]map[*Client]struct{}
	log        *zap.Logger
}

// NewHub returns a hub; start it with Run.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan message, publishBuffer),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is done, then closes every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, set := range h.clients {
			for c := range set {
				close(c.send)
			}
		}
		h.clients = nil
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			set := h.clients[c.profileID]
			if set == nil {
				set = make(map[*Client]struct{})
				h.clients[c.profileID] = set
			}
			set[c] = struct{}{}
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.publish:
			for c := range h.clients[m.profileID] {
				select {
				case c.send <- m.payload:
				default:
					// Slow consumer; drop the connection rather than block the hub.
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.profileID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.profileID)
	}
}

// Publish queues ev for profileID. It never blocks: events are dropped when the queue is full or the hub stopped.
func (h *Hub) Publish(profileID string, ev Event) {
	if h == nil || profileID == "" {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("realtime: marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	select {
	case <-h.done:
	case h.publish <- message{profileID: profileID, payload: payload}:
	default:
		h.log.Warn("realtime: publish queue full, dropping event", zap.String("type", ev.Type))
	}
}

// Register adds c to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. Safe to call after the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
