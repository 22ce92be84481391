package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"bahayscout/backend/internal/db"
	"bahayscout/backend/internal/identity/domain"
	profiledomain "bahayscout/backend/internal/profile/domain"
	userdomain "bahayscout/backend/internal/user/domain"
)

// ErrDuplicateEmail is returned by CreateAccount on a unique violation of users.email.
var ErrDuplicateEmail = errors.New("email already exists")

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an identity repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserAndProvider returns the identity for the user and provider, or nil if not found.
func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	var (
		i    domain.Identity
		hash sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_id, password_hash, created_at
		   FROM identities WHERE user_id = $1 AND provider = $2`,
		userID, string(provider),
	).Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &hash, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.PasswordHash = hash.String
	return &i, nil
}

// CreateAccount inserts user, identity and profile in one transaction.
func (r *PostgresRepository) CreateAccount(ctx context.Context, u *userdomain.User, i *domain.Identity, p *profiledomain.Profile) error {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			u.ID, u.Email, u.CreatedAt, u.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO identities (id, user_id, provider, provider_id, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			i.ID, i.UserID, string(i.Provider), i.ProviderID, i.PasswordHash, i.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (id, user_id, role, display_name, phone, is_verified, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.UserID, string(p.Role), p.DisplayName, nullString(p.Phone), p.IsVerified, p.CreatedAt, p.UpdatedAt)
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

// UpdatePasswordHash replaces the local identity's password hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities SET password_hash = $2 WHERE user_id = $1 AND provider = 'local'`, userID, hash)
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
