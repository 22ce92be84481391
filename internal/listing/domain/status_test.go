package domain

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	all := []Status{StatusDraft, StatusPending, StatusPublished, StatusRejected}
	allowed := map[Action]map[Status]Status{
		ActionSubmit:  {StatusDraft: StatusPending, StatusRejected: StatusPending},
		ActionApprove: {StatusPending: StatusPublished},
		ActionReject:  {StatusPending: StatusRejected},
	}
	for action, ok := range allowed {
		for _, from := range all {
			to, err := Transition(from, action)
			want, legal := ok[from]
			if legal {
				if err != nil || to != want {
					t.Errorf("%s from %s = %q, %v; want %q", action, from, to, err, want)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s from %s: err = %v, want ErrInvalidTransition", action, from, err)
			}
			if CanTransition(from, action) {
				t.Errorf("CanTransition(%s, %s) = true", from, action)
			}
		}
	}
}

func TestTransitionError_Message(t *testing.T) {
	_, err := Transition(StatusPublished, ActionSubmit)
	if err == nil || err.Error() != "Cannot submit listing with status: published" {
		t.Errorf("err = %v", err)
	}
	_, err = Transition(StatusDraft, ActionApprove)
	if err == nil || err.Error() != "Cannot approve listing with status: draft" {
		t.Errorf("err = %v", err)
	}
	var te *TransitionError
	if !errors.As(err, &te) || te.From != StatusDraft || te.Action != ActionApprove {
		t.Errorf("errors.As = %+v", te)
	}
}

func TestTransition_UnknownAction(t *testing.T) {
	if _, err := Transition(StatusDraft, Action("archive")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown action: %v", err)
	}
}
