package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bahayscout/backend/internal/inquiry/domain"
)

// PostgresRepository implements Repository using database/sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an inquiry repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const inquiryColumns = `i.id, i.listing_id, i.from_user_id, i.name, i.email, i.phone, i.message, i.status, i.created_at`

func scanInquiry(row interface{ Scan(...any) error }, extra ...any) (*domain.Inquiry, error) {
	var (
		i           domain.Inquiry
		from, phone sql.NullString
	)
	dest := append([]any{&i.ID, &i.ListingID, &from, &i.Name, &i.Email, &phone, &i.Message, &i.Status, &i.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if from.Valid {
		i.FromUserID = &from.String
	}
	if phone.Valid {
		i.Phone = &phone.String
	}
	return &i, nil
}

// Create inserts the inquiry; ID and CreatedAt are set by the caller.
func (r *PostgresRepository) Create(ctx context.Context, i *domain.Inquiry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inquiries (id, listing_id, from_user_id, name, email, phone, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		i.ID, i.ListingID, i.FromUserID, i.Name, i.Email, i.Phone, i.Message, string(i.Status), i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// GetByID returns the inquiry with its listing reference, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	var ref domain.ListingRef
	i, err := scanInquiry(r.db.QueryRowContext(ctx,
		`SELECT `+inquiryColumns+`, l.id, l.title, l.slug
		 FROM inquiries i JOIN listings l ON l.id = i.listing_id
		 WHERE i.id = $1`, id), &ref.ID, &ref.Title, &ref.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	i.Listing = &ref
	return i, nil
}

// ListForOwner returns one page of inquiries on the owner's listings and the total count.
func (r *PostgresRepository) ListForOwner(ctx context.Context, f OwnerFilter) ([]*domain.Inquiry, int, error) {
	cond := ` WHERE l.owner_id = $1`
	args := []any{f.OwnerID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		cond += fmt.Sprintf(" AND i.status = $%d", len(args))
	}
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM inquiries i JOIN listings l ON l.id = i.listing_id`+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	out := []*domain.Inquiry{}
	if total == 0 {
		return out, 0, nil
	}
	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inquiryColumns+`, l.id, l.title, l.slug
		 FROM inquiries i JOIN listings l ON l.id = i.listing_id`+cond+
			fmt.Sprintf(` ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref domain.ListingRef
		i, err := scanInquiry(rows, &ref.ID, &ref.Title, &ref.Slug)
		if err != nil {
			return nil, 0, err
		}
		i.Listing = &ref
		out = append(out, i)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the inquiry's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE inquiries SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
