package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bahayscout/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s                 domain.Session
		revoked, lastSeen sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, revoked_at, last_seen_at, ip_address, user_agent,
		        refresh_jti, refresh_token_hash, created_at
		   FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revoked, &lastSeen, &s.IPAddress, &s.UserAgent,
		&s.RefreshJti, &s.RefreshTokenHash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.RevokedAt = nullTimeToPtr(revoked)
	s.LastSeenAt = nullTimeToPtr(lastSeen)
	return &s, nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, ip_address, user_agent, refresh_jti, refresh_token_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.ExpiresAt, s.IPAddress, s.UserAgent, s.RefreshJti, s.RefreshTokenHash, s.CreatedAt)
	return err
}

// Revoke marks the session as revoked. Revoking twice keeps the first timestamp.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, time.Now().UTC())
	return err
}

// RevokeAllSessionsByUser revokes every live session of the user.
func (r *PostgresRepository) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`, userID, time.Now().UTC())
	return err
}

// UpdateLastSeen sets the session's last-seen timestamp.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}

// RotateRefreshToken is a compare-and-set on refresh_jti.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, sessionID, prevJti, jti, refreshTokenHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET refresh_jti = $3, refresh_token_hash = $4
		  WHERE id = $1 AND refresh_jti = $2 AND revoked_at IS NULL`,
		sessionID, prevJti, jti, refreshTokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// PurgeBefore removes sessions that ended before cutoff.
func (r *PostgresRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
