package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition matches every *TransitionError with errors.Is.
var ErrInvalidTransition = errors.New("invalid listing status transition")

// Action is a moderation step that moves a listing between statuses.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// transitions maps action -> allowed source status -> resulting status.
var transitions = map[Action]map[Status]Status{
	ActionSubmit: {
		StatusDraft:    StatusPending,
		StatusRejected: StatusPending,
	},
	ActionApprove: {
		StatusPending: StatusPublished,
	},
	ActionReject: {
		StatusPending: StatusRejected,
	},
}

// TransitionError reports an action that is not allowed from the listing's current status.
type TransitionError struct {
	Action Action
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot %s listing with status: %s", e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Transition returns the status reached by applying action to a listing in status from.
func Transition(from Status, action Action) (Status, error) {
	if to, ok := transitions[action][from]; ok {
		return to, nil
	}
	return "", &TransitionError{Action: action, From: from}
}

// CanTransition reports whether action is allowed from status from.
func CanTransition(from Status, action Action) bool {
	_, err := Transition(from, action)
	return err == nil
}
