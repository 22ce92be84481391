package repository

import (
	"context"

	"bahayscout/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	// List returns the newest entries first and the total count.
	List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, int, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
