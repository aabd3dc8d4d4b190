package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wartungsmanager-backend/internal/dbtest"
	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/workflow"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_UpdateEntryCompareAndSwap(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name         string
		rowsAffected int64
		expectedOK   bool
	}{
		{name: "Stored status matches, row is written", rowsAffected: 1, expectedOK: true},
		{name: "Another writer moved the entry first", rowsAffected: 0, expectedOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "waitlist_entries" SET .* WHERE \(?id = \$\d+ AND status = \$\d+\)?`).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			mock.ExpectCommit()

			var ok bool
			err := s.Atomically(context.Background(), func(tx workflow.Tx) error {
				e := &workflow.Entry{ID: 42, BottleID: 7, Status: workflow.StatusWaiting}
				require.NoError(t, e.StartFilling("Anna", "", 3, now))
				var err error
				ok, err = tx.UpdateEntry(e, workflow.StatusWaiting)
				return err
			})

			require.NoError(t, err)
			assert.Equal(t, tc.expectedOK, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_AtomicallyRollsBackOnError(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "compressor_sessions" WHERE status = \$1 LIMIT \$2`).
		WithArgs("active", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "operator", "status", "started_at"}))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Atomically(context.Background(), func(tx workflow.Tx) error {
		active, err := tx.ActiveSession()
		require.NoError(t, err)
		assert.Nil(t, active)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ClaimDueInspectionsSkipsRowsClaimedElsewhere(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	dueBy := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "bottles" WHERE .*next_inspection_due <= \$3.* ORDER BY next_inspection_due, id LIMIT \$4`).
		WithArgs(true, false, dueBy, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))
	mock.ExpectExec(`UPDATE "bottles" SET "inspection_notified"=\$1,"updated_at"=\$2 WHERE \(?id = \$3 AND inspection_notified = \$4\)?`).
		WithArgs(true, Any{}, 11, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bottles" SET "inspection_notified"=\$1,"updated_at"=\$2 WHERE \(?id = \$3 AND inspection_notified = \$4\)?`).
		WithArgs(true, Any{}, 12, false).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ids, err := s.ClaimDueInspections(context.Background(), dueBy, 10)

	require.NoError(t, err)
	assert.Equal(t, []int64{11}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func createBottle(t *testing.T, db *gorm.DB, number string, active bool) model.Bottle {
	t.Helper()
	b := model.Bottle{InternalNumber: number, Active: active}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func TestGormStore_ActiveEntryUniqueIndex(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)
	ctx := context.Background()
	bottle := createBottle(t, db, "WM-000001", true)

	newEntry := func() *workflow.Entry {
		now := time.Now()
		return &workflow.Entry{
			BottleID:          bottle.ID,
			IntakeDate:        now,
			RequestedPressure: 200,
			Priority:          workflow.PriorityNormal,
			Status:            workflow.StatusWaiting,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}

	first := newEntry()
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error { return tx.CreateEntry(first) }))
	assert.NotZero(t, first.ID)

	err := s.Atomically(ctx, func(tx workflow.Tx) error { return tx.CreateEntry(newEntry()) })
	assert.ErrorIs(t, err, workflow.ErrDuplicateActiveEntry)

	// A finished entry frees the bottle for a new intake.
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error {
		e, err := tx.Entry(first.ID)
		if err != nil {
			return err
		}
		require.NoError(t, e.Cancel("kunde abgesagt", time.Now()))
		ok, err := tx.UpdateEntry(e, workflow.StatusWaiting)
		assert.True(t, ok)
		return err
	}))
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error { return tx.CreateEntry(newEntry()) }))
}

func TestGormStore_UnknownRowsAreNotFound(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)

	err := s.Atomically(context.Background(), func(tx workflow.Tx) error {
		_, err := tx.Bottle(999)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
		_, err = tx.Entry(999)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestGormStore_ListEntriesServiceOrder(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	specs := []struct {
		number   string
		priority workflow.Priority
		intake   time.Time
		status   workflow.Status
	}{
		{"WM-000001", workflow.PriorityLow, base, workflow.StatusWaiting},
		{"WM-000002", workflow.PriorityNormal, base.Add(2 * time.Hour), workflow.StatusWaiting},
		{"WM-000003", workflow.PriorityHigh, base.Add(3 * time.Hour), workflow.StatusWaiting},
		{"WM-000004", workflow.PriorityNormal, base.Add(time.Hour), workflow.StatusWaiting},
		{"WM-000005", workflow.PriorityHigh, base, workflow.StatusFilled},
	}
	var ids []int64
	for _, sp := range specs {
		b := createBottle(t, db, sp.number, true)
		e := &workflow.Entry{
			BottleID: b.ID, IntakeDate: sp.intake, RequestedPressure: 200,
			Priority: sp.priority, Status: sp.status, CreatedAt: base, UpdatedAt: base,
		}
		require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error { return tx.CreateEntry(e) }))
		ids = append(ids, e.ID)
	}

	var waiting, all []workflow.Entry
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error {
		var err error
		waiting, err = tx.ListEntries(workflow.EntryFilter{Statuses: []workflow.Status{workflow.StatusWaiting}})
		if err != nil {
			return err
		}
		all, err = tx.ListEntries(workflow.EntryFilter{})
		return err
	}))

	got := make([]int64, len(waiting))
	for i, e := range waiting {
		got[i] = e.ID
	}
	assert.Equal(t, []int64{ids[2], ids[3], ids[1], ids[0]}, got)

	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[4].ID)
	assert.Equal(t, workflow.StatusFilled, all[4].Status)
}

func TestGormStore_SingleActiveSession(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)

	first := &workflow.Session{Operator: "Anna", Status: workflow.SessionActive, StartedAt: start}
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error { return tx.CreateSession(first) }))

	err := s.Atomically(ctx, func(tx workflow.Tx) error {
		return tx.CreateSession(&workflow.Session{Operator: "Ben", Status: workflow.SessionActive, StartedAt: time.Now()})
	})
	assert.ErrorIs(t, err, workflow.ErrSessionAlreadyActive)

	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error {
		active, err := tx.ActiveSession()
		require.NoError(t, err)
		require.NotNil(t, active)
		require.NoError(t, active.Close("feierabend", time.Now(), false))
		ok, err := tx.CloseSession(active)
		assert.True(t, ok)
		if err != nil {
			return err
		}
		ok, err = tx.CloseSession(active)
		assert.False(t, ok, "closing twice must not match")
		return err
	}))

	var sessions []workflow.Session
	require.NoError(t, s.Atomically(ctx, func(tx workflow.Tx) error {
		var err error
		sessions, err = tx.ListSessions(0)
		return err
	}))
	require.Len(t, sessions, 1)
	assert.Equal(t, workflow.SessionClosed, sessions[0].Status)
	assert.Equal(t, "feierabend", sessions[0].CloseReason)
	assert.InDelta(t, 3600, sessions[0].ElapsedSeconds, 5)
}

func TestGormStore_ClaimDueInspectionsOnce(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 2, 0)

	due := createBottle(t, db, "WM-000001", true)
	notDue := createBottle(t, db, "WM-000002", true)
	inactive := createBottle(t, db, "WM-000003", false)
	createBottle(t, db, "WM-000004", true)

	require.NoError(t, db.Model(&model.Bottle{}).Where("id = ?", due.ID).Update("next_inspection_due", past).Error)
	require.NoError(t, db.Model(&model.Bottle{}).Where("id = ?", notDue.ID).Update("next_inspection_due", future).Error)
	require.NoError(t, db.Model(&model.Bottle{}).Where("id = ?", inactive.ID).Update("next_inspection_due", past).Error)

	ids, err := s.ClaimDueInspections(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{due.ID}, ids)

	ids, err = s.ClaimDueInspections(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var reloaded model.Bottle
	require.NoError(t, db.First(&reloaded, due.ID).Error)
	assert.True(t, reloaded.InspectionNotified)
}

func TestGormStore_ReleaseInspections(t *testing.T) {
	db := dbtest.Open(t)
	s := NewGormStore(db)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	b := createBottle(t, db, "WM-000001", true)
	require.NoError(t, db.Model(&model.Bottle{}).Where("id = ?", b.ID).Update("next_inspection_due", now.AddDate(0, 0, -1)).Error)

	ids, err := s.ClaimDueInspections(ctx, now, 10)
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, ids)

	require.NoError(t, s.ReleaseInspections(ctx, ids))
	require.NoError(t, s.ReleaseInspections(ctx, nil))

	ids, err = s.ClaimDueInspections(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids, "a released bottle is claimed again")
}
