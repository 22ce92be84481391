package repository

import (
	"context"
	"database/sql"
	"errors"

	"bahayscout/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auditColumns = `id, user_id, action, resource, resource_id, ip, metadata, created_at`

func scanAuditLog(row interface{ Scan(...any) error }) (*domain.AuditLog, error) {
	var (
		a                  domain.AuditLog
		userID, resourceID sql.NullString
		meta               []byte
	)
	if err := row.Scan(&a.ID, &userID, &a.Action, &a.Resource, &resourceID, &a.IP, &meta, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.UserID = userID.String
	a.ResourceID = resourceID.String
	if len(meta) > 0 {
		a.Metadata = meta
	}
	return &a, nil
}

// GetByID returns the audit log for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	a, err := scanAuditLog(r.db.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM audit_logs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List returns audit logs newest first, paginated by limit and offset, with the total count.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []*domain.AuditLog{}
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	var meta any
	if len(a.Metadata) > 0 {
		meta = string(a.Metadata)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (`+auditColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		a.ID, nullIfEmpty(a.UserID), a.Action, a.Resource, nullIfEmpty(a.ResourceID), a.IP, meta, a.CreatedAt)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
