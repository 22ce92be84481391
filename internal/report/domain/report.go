// Package domain defines listing reports raised by users for admin review.
package domain

import "time"

// Status is the review state of a report.
type Status string

const (
	StatusOpen      Status = "open"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved || s == StatusDismissed
}

// ListingRef identifies the reported listing on the admin page.
type ListingRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Report flags a listing as misleading, fraudulent or otherwise inappropriate.
type Report struct {
	ID           string      `json:"id"`
	ListingID    string      `json:"listingId"`
	ReporterID   *string     `json:"reporterId"`
	Reason       string      `json:"reason"`
	Details      *string     `json:"details"`
	Status       Status      `json:"status"`
	ResolvedAt   *time.Time  `json:"resolvedAt"`
	CreatedAt    time.Time   `json:"createdAt"`
	Listing      *ListingRef `json:"listing,omitempty"`
	ReporterName *string     `json:"reporterName,omitempty"`
}

// CreateInput is the body of POST /api/reports.
type CreateInput struct {
	ListingID string  `json:"listingId" validate:"required"`
	Reason    string  `json:"reason" validate:"required,max=200"`
	Details   *string `json:"details" validate:"omitnil,max=2000"`
}
