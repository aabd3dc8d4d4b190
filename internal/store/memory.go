package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"wartungsmanager-backend/internal/workflow"
)

// MemoryStore is a workflow.Store kept in process memory. Transactions are
// serialised and work on a copy that replaces the state only when fn
// succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	bottles       map[int64]workflow.Bottle
	entries       map[int64]workflow.Entry
	sessions      map[int64]workflow.Session
	nextEntryID   int64
	nextSessionID int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		bottles:  make(map[int64]workflow.Bottle),
		entries:  make(map[int64]workflow.Entry),
		sessions: make(map[int64]workflow.Session),
	}}
}

// PutBottle registers or replaces a bottle.
func (m *MemoryStore) PutBottle(b workflow.Bottle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.bottles[b.ID] = b
}

func (m *MemoryStore) Atomically(ctx context.Context, fn func(tx workflow.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := memoryState{
		bottles:       maps.Clone(m.state.bottles),
		entries:       maps.Clone(m.state.entries),
		sessions:      maps.Clone(m.state.sessions),
		nextEntryID:   m.state.nextEntryID,
		nextSessionID: m.state.nextSessionID,
	}
	if err := fn(&memoryTx{s: &work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

type memoryTx struct {
	s *memoryState
}

func (t *memoryTx) Bottle(id int64) (*workflow.Bottle, error) {
	b, ok := t.s.bottles[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	return &b, nil
}

func (t *memoryTx) Entry(id int64) (*workflow.Entry, error) {
	e, ok := t.s.entries[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	return &e, nil
}

func (t *memoryTx) ActiveEntryForBottle(bottleID int64) (*workflow.Entry, error) {
	for _, e := range t.s.entries {
		if e.BottleID == bottleID && e.Status.Active() {
			return &e, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) CreateEntry(e *workflow.Entry) error {
	if _, ok := t.s.bottles[e.BottleID]; !ok {
		return workflow.ErrNotFound
	}
	if e.Status.Active() {
		if existing, _ := t.ActiveEntryForBottle(e.BottleID); existing != nil {
			return workflow.ErrDuplicateActiveEntry
		}
	}
	t.s.nextEntryID++
	e.ID = t.s.nextEntryID
	t.s.entries[e.ID] = *e
	return nil
}

func (t *memoryTx) UpdateEntry(e *workflow.Entry, from workflow.Status) (bool, error) {
	cur, ok := t.s.entries[e.ID]
	if !ok || cur.Status != from {
		return false, nil
	}
	t.s.entries[e.ID] = *e
	return true, nil
}

func (t *memoryTx) ListEntries(filter workflow.EntryFilter) ([]workflow.Entry, error) {
	var out []workflow.Entry
	for _, e := range t.s.entries {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, e.Status) {
			continue
		}
		if filter.BottleID != 0 && e.BottleID != filter.BottleID {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, compareEntries)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func compareEntries(a, b workflow.Entry) int {
	aw, bw := a.Status == workflow.StatusWaiting, b.Status == workflow.StatusWaiting
	switch {
	case aw && !bw:
		return -1
	case !aw && bw:
		return 1
	case aw && bw:
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		if c := a.IntakeDate.Compare(b.IntakeDate); c != 0 {
			return c
		}
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func (t *memoryTx) ActiveSession() (*workflow.Session, error) {
	for _, s := range t.s.sessions {
		if s.Status == workflow.SessionActive {
			return &s, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) CreateSession(s *workflow.Session) error {
	if s.Status == workflow.SessionActive {
		if active, _ := t.ActiveSession(); active != nil {
			return workflow.ErrSessionAlreadyActive
		}
	}
	t.s.nextSessionID++
	s.ID = t.s.nextSessionID
	t.s.sessions[s.ID] = *s
	return nil
}

func (t *memoryTx) CloseSession(s *workflow.Session) (bool, error) {
	cur, ok := t.s.sessions[s.ID]
	if !ok || cur.Status != workflow.SessionActive {
		return false, nil
	}
	t.s.sessions[s.ID] = *s
	return true, nil
}

func (t *memoryTx) ListSessions(limit int) ([]workflow.Session, error) {
	out := slices.Collect(maps.Values(t.s.sessions))
	slices.SortFunc(out, func(a, b workflow.Session) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
