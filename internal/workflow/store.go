package workflow

import "context"

// Store runs workflow operations atomically. Implementations must roll back
// every write made through tx when fn returns an error.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// EntryFilter narrows ListEntries. Zero values mean no restriction.
type EntryFilter struct {
	Statuses []Status
	BottleID int64
	Limit    int
}

// Tx is the transactional view of the store. Lookups of missing rows
// return ErrNotFound.
type Tx interface {
	Bottle(id int64) (*Bottle, error)

	Entry(id int64) (*Entry, error)
	// ActiveEntryForBottle returns the waiting or filling entry of the
	// bottle, or nil when there is none.
	ActiveEntryForBottle(bottleID int64) (*Entry, error)
	// CreateEntry inserts e and sets its ID.
	CreateEntry(e *Entry) error
	// UpdateEntry writes e only if the stored status still equals from.
	UpdateEntry(e *Entry, from Status) (bool, error)
	// ListEntries orders waiting entries by priority, intake date and id;
	// other statuses follow by id.
	ListEntries(filter EntryFilter) ([]Entry, error)

	// ActiveSession returns the active compressor session, or nil.
	ActiveSession() (*Session, error)
	// CreateSession inserts s and sets its ID.
	CreateSession(s *Session) error
	// CloseSession writes s only if the stored session is still active.
	CloseSession(s *Session) (bool, error)
	// ListSessions returns sessions newest first.
	ListSessions(limit int) ([]Session, error)
}

// Authorizer decides whether a reset secret is acceptable.
type Authorizer interface {
	AuthorizeReset(ctx context.Context, secret string) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, secret string) error

func (f AuthorizerFunc) AuthorizeReset(ctx context.Context, secret string) error {
	return f(ctx, secret)
}
