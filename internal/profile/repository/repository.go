package repository

import (
	"context"

	"bahayscout/backend/internal/profile/domain"
)

// ListFilter narrows the admin users list. Zero values mean no filter.
type ListFilter struct {
	Role   domain.Role
	Search string // matches display name or email, case-insensitive
	Limit  int
	Offset int
}

// Repository defines persistence for profiles.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateContact(ctx context.Context, id, displayName string, phone *string) (*domain.Profile, error)
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error)
	SetVerified(ctx context.Context, id string, verified bool) (*domain.Profile, error)
	List(ctx context.Context, f ListFilter) ([]*domain.UserListItem, int, error)
}
