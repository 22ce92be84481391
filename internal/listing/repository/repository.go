package repository

import (
	"context"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
)

// Repository defines persistence for listings and their photos.
// Reads return listings with owner, location and photos joined; missing rows are (nil, nil).
type Repository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Listing, error)
	// Update writes the editable fields and the point of l.
	Update(ctx context.Context, l *domain.Listing) error
	// UpdateStatus moves the listing from one status to another only if it is still in from.
	// It returns false when the listing does not exist or its status changed concurrently.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, reason *string) (bool, error)
	Search(ctx context.Context, f domain.Filters, p domain.Page) ([]*domain.Listing, int, error)
	ListScoped(ctx context.Context, scope query.Scope, p domain.Page) ([]*domain.Listing, int, error)
	AddPhoto(ctx context.Context, ph *domain.Photo) error
	// DeletePhoto returns false when no such photo belongs to the listing.
	DeletePhoto(ctx context.Context, listingID, photoID string) (bool, error)
}
