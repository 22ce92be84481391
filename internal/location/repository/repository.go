package repository

import (
	"context"

	"bahayscout/backend/internal/location/domain"
)

// Repository defines persistence for locations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	List(ctx context.Context, f domain.Filter) ([]*domain.Location, error)
	// Upsert inserts the location or returns the id of the existing row with the same natural key.
	Upsert(ctx context.Context, l *domain.Location) (int64, error)
}
