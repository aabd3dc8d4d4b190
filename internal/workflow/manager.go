// Package workflow implements the bottle filling workflow: the waiting list
// of bottles, their fills, and the singleton compressor session that gates
// filling. It does not know how entries are stored; every operation runs as
// one transaction of a Store.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wartungsmanager-backend/internal/logging"
)

// MaxPressure is the upper bound, in bar, for requested and achieved
// pressures. The registry validates bottle ratings against it too.
const MaxPressure = 300

// Options configures a Manager. Zero values select defaults.
type Options struct {
	// Authorizer checks the reset secret. A nil Authorizer rejects every reset.
	Authorizer Authorizer
	Recorder   Recorder
	Now        func() time.Time
	Logger     *zap.Logger
}

// Manager runs the workflow operations against a Store.
type Manager struct {
	store Store
	auth  Authorizer
	rec   Recorder
	now   func() time.Time
	log   *zap.Logger
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts Options) *Manager {
	m := &Manager{
		store: store,
		auth:  opts.Authorizer,
		rec:   opts.Recorder,
		now:   opts.Now,
		log:   opts.Logger,
	}
	if m.rec == nil {
		m.rec = nopRecorder{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = logging.Category(logging.NameWorkflow, "manager")
	}
	return m
}

// AcceptParams describes a bottle handed in for filling.
type AcceptParams struct {
	BottleID          int64
	RequestedPressure int
	Priority          Priority
	Notes             string
	// IntakeDate defaults to now when zero.
	IntakeDate time.Time
}

// AcceptBottle puts a bottle on the waiting list.
func (m *Manager) AcceptBottle(ctx context.Context, p AcceptParams) (*Entry, error) {
	const op = "accept_bottle"

	if !pressureInRange(p.RequestedPressure) {
		return nil, m.fail(op, &Error{Op: op, BottleID: p.BottleID, Err: ErrInvalidPressure})
	}
	prio := p.Priority
	if prio == "" {
		prio = PriorityNormal
	}
	if !prio.Valid() {
		return nil, m.fail(op, &Error{Op: op, BottleID: p.BottleID, Err: ErrInvalidPriority})
	}

	now := m.now()
	intake := p.IntakeDate
	if intake.IsZero() {
		intake = now
	}

	var created *Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		bottle, err := tx.Bottle(p.BottleID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return &Error{Op: op, BottleID: p.BottleID, Err: ErrNotFound}
			}
			return fmt.Errorf("load bottle %d: %w", p.BottleID, err)
		}
		if !bottle.Active {
			return &Error{Op: op, BottleID: bottle.ID, Err: ErrBottleInactive}
		}

		existing, err := tx.ActiveEntryForBottle(bottle.ID)
		if err != nil {
			return fmt.Errorf("load active entry for bottle %d: %w", bottle.ID, err)
		}
		if existing != nil {
			return &Error{Op: op, EntryID: existing.ID, BottleID: bottle.ID, Status: existing.Status, Err: ErrDuplicateActiveEntry}
		}

		e := &Entry{
			BottleID:          bottle.ID,
			IntakeDate:        intake,
			RequestedPressure: p.RequestedPressure,
			Priority:          prio,
			Notes:             p.Notes,
			Status:            StatusWaiting,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.CreateEntry(e); err != nil {
			if errors.Is(err, ErrDuplicateActiveEntry) {
				return &Error{Op: op, BottleID: bottle.ID, Err: ErrDuplicateActiveEntry}
			}
			return fmt.Errorf("create entry for bottle %d: %w", bottle.ID, err)
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Bottle accepted",
		zap.Int64("entry_id", created.ID),
		zap.Int64("bottle_id", created.BottleID),
		zap.String("priority", string(created.Priority)),
		zap.Int("requested_pressure", created.RequestedPressure))
	m.emit(Event{Kind: EventEntryAccepted, At: now, Op: op, Entry: created})
	return created, nil
}

// StartFilling moves a waiting entry to filling. It requires an active
// compressor session regardless of the entry's status.
func (m *Manager) StartFilling(ctx context.Context, entryID int64, operator, gasMixture string) (*Entry, error) {
	const op = "start_filling"
	now := m.now()

	var updated *Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		e, err := m.loadEntry(tx, op, entryID)
		if err != nil {
			return err
		}

		session, err := tx.ActiveSession()
		if err != nil {
			return fmt.Errorf("load active session: %w", err)
		}
		if session == nil {
			return &Error{Op: op, EntryID: e.ID, BottleID: e.BottleID, Status: e.Status, Target: StatusFilling, Err: ErrCompressorNotActive}
		}

		from := e.Status
		if err := e.StartFilling(operator, gasMixture, session.ID, now); err != nil {
			return &Error{Op: op, EntryID: e.ID, BottleID: e.BottleID, Status: from, Target: StatusFilling, Err: err}
		}
		if err := m.swap(tx, op, e, from); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Filling started",
		zap.Int64("entry_id", updated.ID),
		zap.Int64("bottle_id", updated.BottleID),
		zap.String("operator", updated.Operator),
		zap.String("gas_mixture", updated.GasMixture))
	m.emit(Event{Kind: EventEntryFilling, At: now, Op: op, Entry: updated})
	return updated, nil
}

// CompleteFilling records the achieved pressure and moves a filling entry to
// filled. A zero fillEnd means now.
func (m *Manager) CompleteFilling(ctx context.Context, entryID int64, achievedPressure int, fillEnd time.Time) (*Entry, error) {
	const op = "complete_filling"

	if !pressureInRange(achievedPressure) {
		return nil, m.fail(op, &Error{Op: op, EntryID: entryID, Target: StatusFilled, Err: ErrInvalidPressure})
	}
	now := m.now()
	if fillEnd.IsZero() {
		fillEnd = now
	}

	var updated *Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		e, err := m.loadEntry(tx, op, entryID)
		if err != nil {
			return err
		}
		from := e.Status
		if err := e.CompleteFilling(achievedPressure, fillEnd); err != nil {
			return &Error{Op: op, EntryID: e.ID, BottleID: e.BottleID, Status: from, Target: StatusFilled, Err: err}
		}
		if err := m.swap(tx, op, e, from); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Filling completed",
		zap.Int64("entry_id", updated.ID),
		zap.Int64("bottle_id", updated.BottleID),
		zap.Int("achieved_pressure", achievedPressure),
		zap.Duration("duration", updated.FillDuration()))
	m.emit(Event{Kind: EventEntryFilled, At: now, Op: op, Entry: updated})
	return updated, nil
}

// CancelEntry cancels a waiting or filling entry.
func (m *Manager) CancelEntry(ctx context.Context, entryID int64, reason string) (*Entry, error) {
	const op = "cancel_entry"
	now := m.now()

	var updated *Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		e, err := m.loadEntry(tx, op, entryID)
		if err != nil {
			return err
		}
		from := e.Status
		if err := e.Cancel(reason, now); err != nil {
			return &Error{Op: op, EntryID: e.ID, BottleID: e.BottleID, Status: from, Target: StatusCancelled, Err: err}
		}
		if err := m.swap(tx, op, e, from); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Entry cancelled",
		zap.Int64("entry_id", updated.ID),
		zap.Int64("bottle_id", updated.BottleID),
		zap.String("reason", reason))
	m.emit(Event{Kind: EventEntryCancelled, At: now, Op: op, Entry: updated, Reason: reason})
	return updated, nil
}

// StartCompressorSession switches the compressor on for operator.
func (m *Manager) StartCompressorSession(ctx context.Context, operator string) (*Session, error) {
	const op = "start_session"
	now := m.now()

	var created *Session
	err := m.store.Atomically(ctx, func(tx Tx) error {
		active, err := tx.ActiveSession()
		if err != nil {
			return fmt.Errorf("load active session: %w", err)
		}
		if active != nil {
			return &Error{Op: op, Err: ErrSessionAlreadyActive}
		}
		s := &Session{Operator: operator, Status: SessionActive, StartedAt: now}
		if err := m.createSession(tx, op, s); err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Compressor session started", zap.Int64("session_id", created.ID), zap.String("operator", operator))
	m.emit(Event{Kind: EventSessionStarted, At: now, Op: op, Session: created})
	return created, nil
}

// StopCompressorSession switches the compressor off. Entries that are
// filling stay untouched.
func (m *Manager) StopCompressorSession(ctx context.Context, reason string) (*Session, error) {
	const op = "stop_session"
	now := m.now()

	var closed *Session
	err := m.store.Atomically(ctx, func(tx Tx) error {
		s, err := m.closeActive(tx, op, reason, now, false)
		if err != nil {
			return err
		}
		closed = s
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Info("Compressor session stopped",
		zap.Int64("session_id", closed.ID),
		zap.Int64("elapsed_seconds", closed.ElapsedSeconds),
		zap.String("reason", reason))
	m.emit(Event{Kind: EventSessionStopped, At: now, Op: op, Session: closed, Reason: reason})
	return closed, nil
}

// ResetResult holds both sides of a compressor reset.
type ResetResult struct {
	Closed  *Session `json:"closed"`
	Current *Session `json:"current"`
}

// ResetCompressorSession closes the active session and immediately opens a
// new one for the same operator. The secret is checked before any session
// state is read; a failed check returns ErrAuthenticationFailed without
// further context.
func (m *Manager) ResetCompressorSession(ctx context.Context, secret, reason string) (*ResetResult, error) {
	const op = "reset_session"

	if err := m.authorize(ctx, secret); err != nil {
		return nil, m.fail(op, err)
	}

	now := m.now()
	var result ResetResult
	err := m.store.Atomically(ctx, func(tx Tx) error {
		closed, err := m.closeActive(tx, op, reason, now, true)
		if err != nil {
			return err
		}
		resetAt := now
		next := &Session{
			Operator:               closed.Operator,
			Status:                 SessionActive,
			StartedAt:              now,
			PreviousElapsedSeconds: closed.ElapsedSeconds,
			ResetReason:            reason,
			ResetAt:                &resetAt,
		}
		if err := m.createSession(tx, op, next); err != nil {
			return err
		}
		result = ResetResult{Closed: closed, Current: next}
		return nil
	})
	if err != nil {
		return nil, m.fail(op, err)
	}

	m.log.Warn("Compressor session reset",
		zap.Int64("closed_session_id", result.Closed.ID),
		zap.Int64("session_id", result.Current.ID),
		zap.Int64("elapsed_seconds", result.Closed.ElapsedSeconds),
		zap.String("reason", reason))
	m.emit(Event{Kind: EventSessionReset, At: now, Op: op, Session: result.Current, Previous: result.Closed, Reason: reason})
	return &result, nil
}

// GetEntry returns one entry.
func (m *Manager) GetEntry(ctx context.Context, entryID int64) (*Entry, error) {
	var e *Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		var err error
		e, err = m.loadEntry(tx, "get_entry", entryID)
		return err
	})
	return e, err
}

// ListEntries returns entries matching filter. Waiting entries come first in
// service order: priority, intake date, id.
func (m *Manager) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	var entries []Entry
	err := m.store.Atomically(ctx, func(tx Tx) error {
		var err error
		entries, err = tx.ListEntries(filter)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return nil
	})
	return entries, err
}

// ActiveSession returns the active compressor session, or nil when the
// compressor is off.
func (m *Manager) ActiveSession(ctx context.Context) (*Session, error) {
	var s *Session
	err := m.store.Atomically(ctx, func(tx Tx) error {
		var err error
		s, err = tx.ActiveSession()
		if err != nil {
			return fmt.Errorf("load active session: %w", err)
		}
		return nil
	})
	return s, err
}

// ListSessions returns compressor sessions, newest first.
func (m *Manager) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	var sessions []Session
	err := m.store.Atomically(ctx, func(tx Tx) error {
		var err error
		sessions, err = tx.ListSessions(limit)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		return nil
	})
	return sessions, err
}

func pressureInRange(p int) bool {
	return p >= 0 && p <= MaxPressure
}

func (m *Manager) authorize(ctx context.Context, secret string) error {
	if m.auth == nil {
		return ErrAuthenticationFailed
	}
	if err := m.auth.AuthorizeReset(ctx, secret); err != nil {
		if !errors.Is(err, ErrAuthenticationFailed) {
			m.log.Error("Reset authorizer failed", zap.Error(err))
		}
		return ErrAuthenticationFailed
	}
	return nil
}

func (m *Manager) loadEntry(tx Tx, op string, id int64) (*Entry, error) {
	e, err := tx.Entry(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &Error{Op: op, EntryID: id, Err: ErrNotFound}
		}
		return nil, fmt.Errorf("load entry %d: %w", id, err)
	}
	return e, nil
}

// swap writes e if its stored status is still from. A lost race is reported
// as ErrInvalidState with the status the winner left behind.
func (m *Manager) swap(tx Tx, op string, e *Entry, from Status) error {
	ok, err := tx.UpdateEntry(e, from)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if ok {
		return nil
	}
	current, err := tx.Entry(e.ID)
	if err != nil {
		return fmt.Errorf("reload entry %d: %w", e.ID, err)
	}
	return &Error{Op: op, EntryID: e.ID, BottleID: e.BottleID, Status: current.Status, Target: e.Status, Err: ErrInvalidState}
}

func (m *Manager) closeActive(tx Tx, op, reason string, now time.Time, reset bool) (*Session, error) {
	s, err := tx.ActiveSession()
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	if s == nil {
		return nil, &Error{Op: op, Err: ErrCompressorNotActive}
	}
	if err := s.Close(reason, now, reset); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	ok, err := tx.CloseSession(s)
	if err != nil {
		return nil, fmt.Errorf("close session %d: %w", s.ID, err)
	}
	if !ok {
		return nil, &Error{Op: op, Err: ErrCompressorNotActive}
	}
	return s, nil
}

func (m *Manager) createSession(tx Tx, op string, s *Session) error {
	if err := tx.CreateSession(s); err != nil {
		if errors.Is(err, ErrSessionAlreadyActive) {
			return &Error{Op: op, Err: ErrSessionAlreadyActive}
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// fail logs and records a rejected operation and returns err unchanged.
func (m *Manager) fail(op string, err error) error {
	kind := ErrorKind(err)
	if kind == "internal" {
		m.log.Error("Workflow operation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	m.log.Info("Workflow operation rejected", zap.String("op", op), zap.String("kind", kind), zap.Error(err))
	m.rec.Record(Event{Kind: EventRejected, At: m.now(), Op: op, ErrorKind: kind})
	return err
}

func (m *Manager) emit(ev Event) {
	if ev.Entry != nil {
		e := *ev.Entry
		ev.Entry = &e
	}
	if ev.Session != nil {
		s := *ev.Session
		ev.Session = &s
	}
	if ev.Previous != nil {
		s := *ev.Previous
		ev.Previous = &s
	}
	m.rec.Record(ev)
}
