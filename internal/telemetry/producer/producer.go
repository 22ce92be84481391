// Package producer publishes telemetry events to Kafka.
package producer

import (
	"context"

	"bahayscout/backend/internal/telemetry/domain"
)

// Producer emits telemetry events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	Emit(ctx context.Context, event *domain.Event) error
	// Close flushes and releases the writer. Safe to call if already closed.
	Close() error
}
