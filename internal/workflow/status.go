package workflow

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a waiting-list entry.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusFilling   Status = "filling"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses that occupy a bottle.
var ActiveStatuses = []Status{StatusWaiting, StatusFilling}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusFilling, StatusFilled, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// Active reports whether an entry in status s blocks a new intake of its bottle.
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusFilling
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusFilling || next == StatusCancelled
	case StatusFilling:
		return next == StatusFilled || next == StatusCancelled
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus converts user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Priority orders the waiting list.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityNormal || p == PriorityLow
}

// Rank returns the sort position of p; lower ranks are served first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) String() string { return string(p) }

// ParsePriority converts user input into a Priority. An empty value means
// PriorityNormal.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PriorityNormal, nil
	}
	p := Priority(raw)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// SessionStatus is the state of a compressor session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)
