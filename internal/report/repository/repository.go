package repository

import (
	"context"

	"bahayscout/backend/internal/report/domain"
)

// Repository defines persistence for reports.
type Repository interface {
	Create(ctx context.Context, r *domain.Report) error
	// List returns reports with the given status (any when empty), newest first, with the listing
	// reference and reporter name joined.
	List(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.Report, int, error)
	// Resolve sets a final status and resolved_at. Returns nil when no report has id.
	Resolve(ctx context.Context, id string, status domain.Status) (*domain.Report, error)
}
