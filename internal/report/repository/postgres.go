package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bahayscout/backend/internal/report/domain"
)

// PostgresRepository implements Repository using database/sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reportColumns = `r.id, r.listing_id, r.reporter_id, r.reason, r.details, r.status, r.resolved_at, r.created_at`

func scanReport(row interface{ Scan(...any) error }, extra ...any) (*domain.Report, error) {
	var (
		rep               domain.Report
		reporter, details sql.NullString
		resolvedAt        sql.NullTime
	)
	dest := append([]any{&rep.ID, &rep.ListingID, &reporter, &rep.Reason, &details, &rep.Status, &resolvedAt, &rep.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if reporter.Valid {
		rep.ReporterID = &reporter.String
	}
	if details.Valid {
		rep.Details = &details.String
	}
	if resolvedAt.Valid {
		rep.ResolvedAt = &resolvedAt.Time
	}
	return &rep, nil
}

// Create inserts the report; ID and CreatedAt are set by the caller.
func (r *PostgresRepository) Create(ctx context.Context, rep *domain.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, listing_id, reporter_id, reason, details, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rep.ID, rep.ListingID, rep.ReporterID, rep.Reason, rep.Details, string(rep.Status), rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List returns one page of reports and the total count.
func (r *PostgresRepository) List(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Report, int, error) {
	cond := ""
	var args []any
	if status != "" {
		args = append(args, string(status))
		cond = ` WHERE r.status = $1`
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reports r`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	out := []*domain.Report{}
	if total == 0 {
		return out, 0, nil
	}
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+`, l.id, l.title, l.slug, p.display_name
		 FROM reports r
		 JOIN listings l ON l.id = r.listing_id
		 LEFT JOIN profiles p ON p.id = r.reporter_id`+cond+
			fmt.Sprintf(` ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ref  domain.ListingRef
			name sql.NullString
		)
		rep, err := scanReport(rows, &ref.ID, &ref.Title, &ref.Slug, &name)
		if err != nil {
			return nil, 0, err
		}
		rep.Listing = &ref
		if name.Valid {
			rep.ReporterName = &name.String
		}
		out = append(out, rep)
	}
	return out, total, rows.Err()
}

// Resolve sets the report's final status.
func (r *PostgresRepository) Resolve(ctx context.Context, id string, status domain.Status) (*domain.Report, error) {
	rep, err := scanReport(r.db.QueryRowContext(ctx,
		`UPDATE reports r SET status = $2, resolved_at = now()
		 WHERE r.id = $1
		 RETURNING `+reportColumns, id, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rep, err
}
