// Package domain defines buyer inquiries sent to listers about a listing.
package domain

import "time"

// Status is where the lister is in handling an inquiry.
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// ListingRef is the listing an inquiry is about, as shown on the lister's dashboard.
type ListingRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Inquiry is a message from a prospective buyer or tenant. FromUserID is the sender's profile
// id when they were signed in.
type Inquiry struct {
	ID         string      `json:"id"`
	ListingID  string      `json:"listingId"`
	FromUserID *string     `json:"fromUserId"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      *string     `json:"phone"`
	Message    string      `json:"message"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	Listing    *ListingRef `json:"listing,omitempty"`
}

// CreateInput is the body of POST /api/inquiries.
type CreateInput struct {
	ListingID string  `json:"listingId" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Phone     *string `json:"phone" validate:"omitnil,max=30"`
	Message   string  `json:"message" validate:"required,max=5000"`
}

// MissingRequired reports whether any required field is blank.
func (in *CreateInput) MissingRequired() bool {
	return in.ListingID == "" || in.Name == "" || in.Email == "" || in.Message == ""
}
