package repository

import (
	"context"
	"time"

	"bahayscout/backend/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
	// RotateRefreshToken swaps the refresh jti only if it still equals prevJti.
	// Returns false when another refresh already rotated it.
	RotateRefreshToken(ctx context.Context, sessionID, prevJti, jti, refreshTokenHash string) (bool, error)
	// PurgeBefore deletes sessions that expired or were revoked before cutoff and returns the count.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
