package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wartungsmanager-backend/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetNop()
	os.Exit(m.Run())
}

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

const (
	subscriptionsQuery = `SELECT \* FROM "push_subscriptions"`
	bottleQuery        = `SELECT "internal_number","next_inspection_due" FROM "bottles" WHERE "bottles"."id" = \$1 ORDER BY "bottles"."id" LIMIT \$[0-9]+`
	releaseExec        = `UPDATE "bottles" SET "inspection_notified"=\$1,"updated_at"=\$2 WHERE id IN \(\$3\)`
)

func expectRelease(mock sqlmock.Sqlmock, bottleID int64) {
	mock.ExpectBegin()
	mock.ExpectExec(releaseExec).
		WithArgs(false, sqlmock.AnyArg(), bottleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func subscriptionRows(endpoint string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
		AddRow(endpoint, "test_p256dh", "test_auth", time.Now())
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{}, nil)

	require.NoError(t, wp.Dispatch(context.Background(), 123))

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchGivesUpOnCancel(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{}, nil)
	require.NoError(t, wp.Dispatch(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wp.Dispatch(ctx, 2), context.Canceled)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{}, berlin)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends reminder for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		bottleID := int64(42)
		// 23:30 UTC is already the next day in Berlin.
		due := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
				assert.Equal(t, "Flasche WM-000042: Prüfung fällig am 02.03.2026", string(payload))
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnRows(subscriptionRows("https://example.com/push"))
		mock.ExpectQuery(bottleQuery).
			WithArgs(bottleID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"internal_number", "next_inspection_due"}).AddRow("WM-000042", due))

		require.NoError(t, wp.Dispatch(ctx, bottleID))
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		bottleID := int64(43)
		endpoint := "https://example.com/expired"

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnRows(subscriptionRows(endpoint))
		mock.ExpectQuery(bottleQuery).
			WithArgs(bottleID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"internal_number", "next_inspection_due"}).AddRow("WM-000043", nil))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs(endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, wp.Dispatch(ctx, bottleID))
		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})

	t.Run("falls back to bottle id when lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		bottleID := int64(44)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "Flasche #44: Prüfung fällig", string(payload))
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnRows(subscriptionRows("https://example.com/fallback"))
		mock.ExpectQuery(bottleQuery).
			WithArgs(bottleID, 1).
			WillReturnError(fmt.Errorf("bottle not found"))

		require.NoError(t, wp.Dispatch(ctx, bottleID))
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips bottle lookup without subscriptions", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("no subscription should be notified")
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}))

		require.NoError(t, wp.Dispatch(ctx, 45))
		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})

	t.Run("releases bottle when every send fails", func(t *testing.T) {
		bottleID := int64(46)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusInternalServerError), nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnRows(subscriptionRows("https://example.com/down"))
		mock.ExpectQuery(bottleQuery).
			WithArgs(bottleID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"internal_number", "next_inspection_due"}).AddRow("WM-000046", nil))
		expectRelease(mock, bottleID)

		require.NoError(t, wp.Dispatch(ctx, bottleID))
		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})

	t.Run("releases bottle when subscriptions cannot be read", func(t *testing.T) {
		bottleID := int64(47)

		mock.ExpectQuery(subscriptionsQuery).
			WillReturnError(fmt.Errorf("connection reset"))
		expectRelease(mock, bottleID)

		require.NoError(t, wp.Dispatch(ctx, bottleID))
		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})
}

func TestWorkerPool_ReleasesQueuedJobsOnShutdown(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{}, nil)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			t.Error("nothing should be sent after shutdown")
			return response(http.StatusCreated), nil
		},
	}
	require.NoError(t, wp.Dispatch(context.Background(), 48))

	expectRelease(mock, 48)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wp.Start(ctx)

	assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
}
