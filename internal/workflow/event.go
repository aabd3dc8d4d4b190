package workflow

import "time"

// EventKind names a workflow event.
type EventKind string

const (
	EventEntryAccepted  EventKind = "entry.accepted"
	EventEntryFilling   EventKind = "entry.filling"
	EventEntryFilled    EventKind = "entry.filled"
	EventEntryCancelled EventKind = "entry.cancelled"
	EventSessionStarted EventKind = "session.started"
	EventSessionStopped EventKind = "session.stopped"
	EventSessionReset   EventKind = "session.reset"
	EventRejected       EventKind = "rejected"
)

// Event is published after an operation commits, or when it is rejected.
type Event struct {
	Kind    EventKind `json:"kind"`
	At      time.Time `json:"at"`
	Op      string    `json:"op,omitempty"`
	Entry   *Entry    `json:"entry,omitempty"`
	Session *Session  `json:"session,omitempty"`
	// Previous is the session closed by a reset.
	Previous *Session `json:"previous,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	// ErrorKind is set for EventRejected, see ErrorKind.
	ErrorKind string `json:"errorKind,omitempty"`
}

// Recorder receives workflow events. Record must not block.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Event)

func (f RecorderFunc) Record(ev Event) { f(ev) }

// MultiRecorder fans an event out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ev Event) {
	for _, r := range m {
		if r != nil {
			r.Record(ev)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}
