package repository

import (
	"context"

	"bahayscout/backend/internal/inquiry/domain"
)

// OwnerFilter selects the inquiries received on one lister's listings.
type OwnerFilter struct {
	OwnerID string
	Status  domain.Status // empty means any
	Limit   int
	Offset  int
}

// Repository defines persistence for inquiries.
type Repository interface {
	Create(ctx context.Context, i *domain.Inquiry) error
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)
	// ListForOwner returns inquiries on the owner's listings, newest first, with Listing set.
	ListForOwner(ctx context.Context, f OwnerFilter) ([]*domain.Inquiry, int, error)
	// UpdateStatus returns false when no inquiry has id.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (bool, error)
}
