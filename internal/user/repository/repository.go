package repository

import (
	"context"

	"bahayscout/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Emails resolves many user ids to addresses in one query. Missing ids are absent from the map.
	Emails(ctx context.Context, ids []string) (map[string]string, error)
}
