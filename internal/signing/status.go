// Package signing implements the public quote e-signing workflow: token
// validation and rate limiting (Guard), and the one-time transition to a
// terminal signing status (Processor).
package signing

import (
	"errors"
	"fmt"
)

// Status is the customer-facing approval state of a quote, independent of the
// quote's commercial lifecycle status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSigned   Status = "signed"
	StatusDeclined Status = "declined"
)

// Action is a customer submission on the public signing page.
type Action string

const (
	ActionSign    Action = "sign"
	ActionDecline Action = "decline"
)

// ErrTerminalState is returned by Transition when the current status admits no
// further transition.
var ErrTerminalState = errors.New("signing status is terminal")

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusSigned || s == StatusDeclined
}

var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionSign:    StatusSigned,
		ActionDecline: StatusDeclined,
	},
}

// Transition is the single authority on the signing state machine. It returns
// the next status for (status, action) or an error when the transition is not
// permitted.
func Transition(s Status, a Action) (Status, error) {
	if s.Terminal() {
		return s, ErrTerminalState
	}
	byAction, ok := transitions[s]
	if !ok {
		return s, fmt.Errorf("unknown signing status %q", s)
	}
	next, ok := byAction[a]
	if !ok {
		return s, fmt.Errorf("action %q not permitted in status %q", a, s)
	}
	return next, nil
}
