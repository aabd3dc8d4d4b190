package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPressure      = errors.New("pressure out of range")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrDuplicateActiveEntry = errors.New("bottle already has an active waiting-list entry")
	ErrInvalidState         = errors.New("invalid state for this transition")
	ErrCompressorNotActive  = errors.New("compressor is not active")
	ErrSessionAlreadyActive = errors.New("a compressor session is already active")
	ErrBottleInactive       = errors.New("bottle is inactive")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("not found")
)

// Error describes a rejected workflow operation. It unwraps to one of the
// sentinel errors above.
type Error struct {
	Op       string
	EntryID  int64
	BottleID int64
	Status   Status
	Target   Status
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.EntryID != 0 {
		fmt.Fprintf(&b, " entry=%d", e.EntryID)
	}
	if e.BottleID != 0 {
		fmt.Fprintf(&b, " bottle=%d", e.BottleID)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " status=%s", e.Status)
	}
	if e.Target != "" {
		fmt.Fprintf(&b, " target=%s", e.Target)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind returns a short stable label for err, used for metrics and API
// error codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPressure):
		return "invalid_pressure"
	case errors.Is(err, ErrInvalidPriority):
		return "invalid_priority"
	case errors.Is(err, ErrDuplicateActiveEntry):
		return "duplicate_active_entry"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrCompressorNotActive):
		return "compressor_not_active"
	case errors.Is(err, ErrSessionAlreadyActive):
		return "session_already_active"
	case errors.Is(err, ErrBottleInactive):
		return "bottle_inactive"
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "internal"
}
