package marketplace

import (
	"fmt"
	"sort"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// Action is something a participant can do to a job.
type Action string

const (
	ActionApply            Action = "apply"
	ActionAssign           Action = "assign"
	ActionCancel           Action = "cancel"
	ActionSubmit           Action = "submit"
	ActionApprove          Action = "approve"
	ActionDispute          Action = "dispute"
	ActionExtendDeadline   Action = "extend_deadline"
	ActionRequestExtension Action = "request_extension"
	ActionRespondExtension Action = "respond_extension"
)

// transition is the status an action leads to. Actions that only touch the
// deadline or the application list keep the current status.
type transition struct {
	to        JobStatus
	keepsSame bool
}

var transitions = map[JobStatus]map[Action]transition{
	JobStatusOpen: {
		ActionApply:  {keepsSame: true},
		ActionAssign: {to: JobStatusAssigned},
		ActionCancel: {to: JobStatusCancelled},
	},
	JobStatusAssigned: {
		ActionSubmit:           {to: JobStatusSubmitted},
		ActionExtendDeadline:   {keepsSame: true},
		ActionRequestExtension: {keepsSame: true},
		ActionRespondExtension: {keepsSame: true},
	},
	JobStatusSubmitted: {
		ActionApprove:          {to: JobStatusCompleted},
		ActionDispute:          {to: JobStatusDisputed},
		ActionExtendDeadline:   {keepsSame: true},
		ActionRequestExtension: {keepsSame: true},
		ActionRespondExtension: {keepsSame: true},
	},
}

// ActionSet is a set of actions.
type ActionSet map[Action]struct{}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// List returns the actions in lexical order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllowedActions returns the actions legal for a job in status s. Terminal
// and unknown statuses allow nothing.
func AllowedActions(s JobStatus) ActionSet {
	set := make(ActionSet)
	for a := range transitions[s] {
		set[a] = struct{}{}
	}
	return set
}

// TransitionError reports an action that is not legal from a status.
type TransitionError struct {
	From   string
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from %s", e.Action, e.From)
}

func illegal(op, from string, a Action) error {
	return &errors.Error{
		Kind: errors.KindIllegalTransition,
		Op:   op,
		Err:  &TransitionError{From: from, Action: a},
	}
}

// NextStatus returns the status a job moves to when action a succeeds.
func NextStatus(s JobStatus, a Action) (JobStatus, error) {
	t, ok := transitions[s][a]
	if !ok {
		return s, illegal("next_status", s.String(), a)
	}
	if t.keepsSame {
		return s, nil
	}
	return t.to, nil
}

// CheckAction returns an illegal transition error if a is not allowed from s.
func CheckAction(op string, s JobStatus, a Action) error {
	if _, ok := transitions[s][a]; !ok {
		return illegal(op, s.String(), a)
	}
	return nil
}

// RespondToExtension applies the employer's one-shot response to a request.
func RespondToExtension(s ExtensionRequestStatus, approve bool) (ExtensionRequestStatus, error) {
	if s != ExtensionStatusPending {
		return s, illegal("respond_to_extension", "extension "+s.String(), ActionRespondExtension)
	}
	if approve {
		return ExtensionStatusApproved, nil
	}
	return ExtensionStatusRejected, nil
}

// PendingExtension returns the most recent pending request, if any.
func PendingExtension(reqs []ExtensionRequest) (*ExtensionRequest, bool) {
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Status == ExtensionStatusPending {
			return &reqs[i], true
		}
	}
	return nil, false
}
