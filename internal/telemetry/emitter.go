package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bahayscout/backend/internal/telemetry/domain"
)

// EventEmitter emits telemetry events (Kafka, OTel logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// Multi fans each event out to every non-nil emitter. All emitters are tried; errors are joined.
type Multi []EventEmitter

// Emit implements EventEmitter.
func (m Multi) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewEvent builds an event stamped with the current time. meta is marshalled to JSON; nil or
// unmarshalable metadata is omitted.
func NewEvent(eventType, source string, meta any) *domain.Event {
	ev := &domain.Event{EventType: eventType, Source: source, CreatedAt: time.Now().UTC()}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			ev.Metadata = b
		}
	}
	return ev
}
