package engine

import "context"

// Action is an operation on a listing (or on something that belongs to one) that needs authorization.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionManagePhotos  Action = "manage_photos"
	ActionSubmit        Action = "submit"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionManageInquiry Action = "manage_inquiry"
)

// Subject is the caller. An anonymous caller has an empty ID and Role.
type Subject struct {
	ID   string
	Role string
}

// Resource is the listing acted on. It is zero for create.
type Resource struct {
	OwnerID string
	Status  string
}

// Evaluator decides whether a subject may perform an action on a listing.
type Evaluator interface {
	Allow(ctx context.Context, sub Subject, action Action, res Resource) (bool, error)
}
