package repository

import (
	"context"

	"bahayscout/backend/internal/identity/domain"
	profiledomain "bahayscout/backend/internal/profile/domain"
	userdomain "bahayscout/backend/internal/user/domain"
)

// Repository defines persistence for identities and account creation.
type Repository interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error)
	// CreateAccount inserts the user, its identity and its profile atomically.
	// Returns ErrDuplicateEmail when the email is taken.
	CreateAccount(ctx context.Context, u *userdomain.User, i *domain.Identity, p *profiledomain.Profile) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}
