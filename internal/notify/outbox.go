package notify

import (
	"context"
	"sync"
	"time"
)

// DefaultOutboxSize is how many messages the dev outbox keeps.
const DefaultOutboxSize = 100

// OutboxEntry is a message captured by the dev outbox.
type OutboxEntry struct {
	Message
	SentAt time.Time `json:"sentAt"`
}

// Outbox keeps the most recent messages in memory for GET /api/dev/outbox and forwards them to Next
// when set. Not used in production.
type Outbox struct {
	Next Mailer

	mu      sync.RWMutex
	entries []OutboxEntry
	size    int
	nowF    func() time.Time
}

// NewOutbox returns an outbox keeping at most size messages (DefaultOutboxSize when size <= 0).
func NewOutbox(size int, next Mailer) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{Next: next, size: size, nowF: func() time.Time { return time.Now().UTC() }}
}

// Send records msg, dropping the oldest entry when full, then forwards it.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	o.mu.Lock()
	o.entries = append(o.entries, OutboxEntry{Message: msg, SentAt: o.nowF()})
	if len(o.entries) > o.size {
		o.entries = o.entries[len(o.entries)-o.size:]
	}
	o.mu.Unlock()
	if o.Next != nil {
		return o.Next.Send(ctx, msg)
	}
	return nil
}

// List returns captured messages, newest first. An empty to returns all recipients.
func (o *Outbox) List(to string) []OutboxEntry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]OutboxEntry, 0, len(o.entries))
	for i := len(o.entries) - 1; i >= 0; i-- {
		if to == "" || o.entries[i].To == to {
			out = append(out, o.entries[i])
		}
	}
	return out
}
