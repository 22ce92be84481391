package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bahayscout/backend/internal/profile/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a profile repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const profileColumns = `p.id, p.user_id, p.role, p.display_name, p.phone, p.is_verified, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner, extra ...any) (*domain.Profile, error) {
	var (
		p     domain.Profile
		phone sql.NullString
	)
	dest := append([]any{&p.ID, &p.UserID, &p.Role, &p.DisplayName, &phone, &p.IsVerified, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	return &p, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByID returns the profile for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.one(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = $1`, id)
}

// GetByUserID returns the profile of the account, or nil if not found.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.one(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.user_id = $1`, userID)
}

// UpdateContact sets display name and phone; nil phone clears it.
func (r *PostgresRepository) UpdateContact(ctx context.Context, id, displayName string, phone *string) (*domain.Profile, error) {
	var ph sql.NullString
	if phone != nil && *phone != "" {
		ph = sql.NullString{String: *phone, Valid: true}
	}
	return r.one(ctx,
		`UPDATE profiles p SET display_name = $2, phone = $3, updated_at = now()
		  WHERE p.id = $1 RETURNING `+profileColumns, id, displayName, ph)
}

// SetRole changes the profile's role.
func (r *PostgresRepository) SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	return r.one(ctx,
		`UPDATE profiles p SET role = $2, updated_at = now() WHERE p.id = $1 RETURNING `+profileColumns,
		id, string(role))
}

// SetVerified sets the verified badge.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string, verified bool) (*domain.Profile, error) {
	return r.one(ctx,
		`UPDATE profiles p SET is_verified = $2, updated_at = now() WHERE p.id = $1 RETURNING `+profileColumns,
		id, verified)
}

// List returns a page of profiles with their email and listing count, newest first, plus the total.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.UserListItem, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, string(f.Role))
		where = append(where, fmt.Sprintf("p.role = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(p.display_name ILIKE $%[1]d OR u.email ILIKE $%[1]d)", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM profiles p JOIN users u ON u.id = p.user_id`+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+`, u.email,
		        (SELECT count(*) FROM listings l WHERE l.owner_id = p.id)
		   FROM profiles p JOIN users u ON u.id = p.user_id`+cond+
			fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.UserListItem
	for rows.Next() {
		item := &domain.UserListItem{}
		p, err := scanProfile(rows, &item.Email, &item.ListingCount)
		if err != nil {
			return nil, 0, err
		}
		item.Profile = *p
		out = append(out, item)
	}
	return out, total, rows.Err()
}
