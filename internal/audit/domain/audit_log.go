package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit event. UserID is empty for anonymous events (e.g. a failed login).
type AuditLog struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId,omitempty"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resourceId,omitempty"`
	IP         string          `json:"ip"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
