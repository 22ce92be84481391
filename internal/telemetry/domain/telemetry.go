// Package domain defines telemetry events emitted by the API and consumed by the worker.
package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the API.
const (
	EventHTTPRequest      = "http_request"
	EventListingCreated   = "listing.created"
	EventListingSubmitted = "listing.submitted"
	EventListingPublished = "listing.published"
	EventListingRejected  = "listing.rejected"
	EventInquiryCreated   = "inquiry.created"
	EventReportCreated    = "report.created"
	EventUserRegistered   = "user.registered"
)

// Event is a single telemetry event. It is serialized as JSON on the Kafka topic.
type Event struct {
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	UserID    string          `json:"userId,omitempty"`
	ProfileID string          `json:"profileId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
