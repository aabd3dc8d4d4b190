package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/workflow"
)

// Store defines the interface for all database operations.
type Store interface {
	workflow.Store
	// ClaimDueInspections marks up to limit active bottles whose next
	// inspection is due by dueBy as notified and returns their ids. A bottle
	// is claimed at most once until a new inspection is recorded.
	ClaimDueInspections(ctx context.Context, dueBy time.Time, limit int) ([]int64, error)
	// ReleaseInspections hands claimed bottles back to the next scan.
	ReleaseInspections(ctx context.Context, ids []int64) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Atomically runs fn in one database transaction.
func (s *gormStore) Atomically(ctx context.Context, fn func(tx workflow.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// waitingOrder sorts waiting entries first, in service order, and every
// other entry by id.
const waitingOrder = "CASE WHEN status = 'waiting' THEN 0 ELSE 1 END, " +
	"CASE WHEN status = 'waiting' THEN CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END ELSE 0 END, " +
	"CASE WHEN status = 'waiting' THEN intake_date END, " +
	"id"

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Bottle(id int64) (*workflow.Bottle, error) {
	var row model.Bottle
	if err := t.db.Select("id", "internal_number", "active").First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	b := toBottle(row)
	return &b, nil
}

func (t *gormTx) Entry(id int64) (*workflow.Entry, error) {
	var row model.WaitlistEntry
	if err := t.db.First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	e := toEntry(row)
	return &e, nil
}

func (t *gormTx) ActiveEntryForBottle(bottleID int64) (*workflow.Entry, error) {
	var rows []model.WaitlistEntry
	err := t.db.
		Where("bottle_id = ? AND status IN ?", bottleID, statusStrings(workflow.ActiveStatuses)).
		Order("id").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	e := toEntry(rows[0])
	return &e, nil
}

func (t *gormTx) CreateEntry(e *workflow.Entry) error {
	row := fromEntry(e)
	if err := t.db.Create(&row).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return workflow.ErrDuplicateActiveEntry
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return workflow.ErrNotFound
		}
		return err
	}
	e.ID = row.ID
	return nil
}

func (t *gormTx) UpdateEntry(e *workflow.Entry, from workflow.Status) (bool, error) {
	res := t.db.Model(&model.WaitlistEntry{}).
		Where("id = ? AND status = ?", e.ID, string(from)).
		Updates(entryChanges(e))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (t *gormTx) ListEntries(filter workflow.EntryFilter) ([]workflow.Entry, error) {
	q := t.db.Model(&model.WaitlistEntry{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(filter.Statuses))
	}
	if filter.BottleID != 0 {
		q = q.Where("bottle_id = ?", filter.BottleID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []model.WaitlistEntry
	if err := q.Order(waitingOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]workflow.Entry, len(rows))
	for i, r := range rows {
		entries[i] = toEntry(r)
	}
	return entries, nil
}

func (t *gormTx) ActiveSession() (*workflow.Session, error) {
	var rows []model.CompressorSession
	err := t.db.Where("status = ?", string(workflow.SessionActive)).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	s := toSession(rows[0])
	return &s, nil
}

func (t *gormTx) CreateSession(s *workflow.Session) error {
	row := fromSession(s)
	if err := t.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return workflow.ErrSessionAlreadyActive
		}
		return err
	}
	s.ID = row.ID
	return nil
}

func (t *gormTx) CloseSession(s *workflow.Session) (bool, error) {
	updatedAt := time.Now()
	if s.EndedAt != nil {
		updatedAt = *s.EndedAt
	}
	res := t.db.Model(&model.CompressorSession{}).
		Where("id = ? AND status = ?", s.ID, string(workflow.SessionActive)).
		Updates(map[string]any{
			"status":          string(s.Status),
			"ended_at":        s.EndedAt,
			"elapsed_seconds": s.ElapsedSeconds,
			"close_reason":    s.CloseReason,
			"reset":           s.Reset,
			"updated_at":      updatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (t *gormTx) ListSessions(limit int) ([]workflow.Session, error) {
	q := t.db.Order("started_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.CompressorSession
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	sessions := make([]workflow.Session, len(rows))
	for i, r := range rows {
		sessions[i] = toSession(r)
	}
	return sessions, nil
}

// ClaimDueInspections flips the notified flag row by row; only rows whose
// flag this call changed are returned.
func (s *gormStore) ClaimDueInspections(ctx context.Context, dueBy time.Time, limit int) ([]int64, error) {
	var claimed []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Bottle{}).
			Where("active = ? AND inspection_notified = ? AND next_inspection_due IS NOT NULL AND next_inspection_due <= ?", true, false, dueBy.UTC()).
			Order("next_inspection_due, id")
		if limit > 0 {
			q = q.Limit(limit)
		}
		var ids []int64
		if err := q.Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to select due bottles: %w", err)
		}

		for _, id := range ids {
			res := tx.Model(&model.Bottle{}).
				Where("id = ? AND inspection_notified = ?", id, false).
				Update("inspection_notified", true)
			if res.Error != nil {
				return fmt.Errorf("failed to mark bottle %d as notified: %w", id, res.Error)
			}
			if res.RowsAffected == 1 {
				claimed = append(claimed, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *gormStore) ReleaseInspections(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.Bottle{}).
		Where("id IN ?", ids).
		Update("inspection_notified", false).Error
	if err != nil {
		return fmt.Errorf("failed to release %d claimed bottles: %w", len(ids), err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return workflow.ErrNotFound
	}
	return err
}
