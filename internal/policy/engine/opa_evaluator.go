package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"
)

const policyQuery = "data.bahayscout.listing.allow"

// ListingPolicy is the Rego policy for listing access.
const ListingPolicy = `package bahayscout.listing

default allow := false

is_admin if input.actor.role == "admin"

is_lister if input.actor.role in {"lister", "admin"}

is_owner if {
	input.actor.profile_id != ""
	input.listing.owner_id == input.actor.profile_id
}

allow if {
	input.action == "view"
	input.listing.status == "published"
}

allow if {
	input.action == "view"
	is_owner
}

allow if {
	input.action == "view"
	is_admin
}

allow if {
	input.action == "create"
	is_lister
}

allow if {
	input.action in {"update", "manage_photos", "manage_inquiry"}
	is_owner
}

allow if {
	input.action in {"update", "manage_photos", "manage_inquiry"}
	is_admin
}

allow if {
	input.action == "submit"
	is_owner
}

allow if {
	input.action in {"approve", "reject"}
	is_admin
}
`

// OPAEvaluator evaluates the listing policy with an in-process OPA engine. The query is prepared once.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
	log   *zap.Logger
}

// NewOPAEvaluator compiles policy (ListingPolicy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, policy string, log *zap.Logger) (*OPAEvaluator, error) {
	if policy == "" {
		policy = ListingPolicy
	}
	if log == nil {
		log = zap.NewNop()
	}
	compiler, err := ast.CompileModules(map[string]string{"listing.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile listing policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare listing policy: %w", err)
	}
	return &OPAEvaluator{query: pq, log: log}, nil
}

// Allow evaluates the policy. Evaluation errors deny.
func (e *OPAEvaluator) Allow(ctx context.Context, sub Subject, action Action, res Resource) (bool, error) {
	input := map[string]interface{}{
		"action": string(action),
		"actor": map[string]interface{}{
			"profile_id": sub.ID,
			"role":       sub.Role,
		},
		"listing": map[string]interface{}{
			"owner_id": res.OwnerID,
			"status":   res.Status,
		},
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		e.log.Warn("policy evaluation failed", zap.String("action", string(action)), zap.Error(err))
		return false, fmt.Errorf("eval listing policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}

// HealthCheck evaluates a request that must be allowed (viewing a published listing).
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.Allow(ctx, Subject{}, ActionView, Resource{Status: "published"})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("policy denied a public view of a published listing")
	}
	return nil
}
