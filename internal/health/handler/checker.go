// Package handler serves liveness and readiness over HTTP and keeps the gRPC health service in sync.
package handler

import (
	"context"
	"errors"
	"time"
)

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate (e.g. *engine.OPAEvaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrPolicyUnavailable   = errors.New("policy engine unavailable")
)

const checkTimeout = 2 * time.Second

// Checker reports readiness. A nil Pinger or PolicyChecker is skipped.
type Checker struct {
	db     Pinger
	policy PolicyChecker
}

// NewChecker returns a Checker over db and policy.
func NewChecker(db Pinger, policy PolicyChecker) *Checker {
	return &Checker{db: db, policy: policy}
}

// Ready returns nil when every dependency answers within checkTimeout.
func (c *Checker) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			return errors.Join(ErrDatabaseUnavailable, err)
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return errors.Join(ErrPolicyUnavailable, err)
		}
	}
	return nil
}
