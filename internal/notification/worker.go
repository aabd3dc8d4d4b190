// Package notification delivers inspection-due reminders as browser push
// messages.
package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool sends reminders for bottles handed to Dispatch.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	loc     *time.Location
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool. Due dates in messages are shown
// in loc, UTC when nil.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, loc *time.Location) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		loc:     loc,
		log:     logging.Named(logging.NameNotification),
	}
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.With(zap.Int("worker", id))
	log.Debug("Worker started")
	for {
		select {
		case bottleID := <-wp.jobs:
			log.Debug("Processing bottle", zap.Int64("bottle_id", bottleID))
			wp.sendRemindersForBottle(ctx, bottleID)
		case <-ctx.Done():
			log.Debug("Worker shutting down")
			wp.releaseQueued(ctx)
			return
		}
	}
}

// releaseQueued un-claims bottles still waiting in the queue so the next
// scan picks them up again.
func (wp *WorkerPool) releaseQueued(ctx context.Context) {
	var ids []int64
	for {
		select {
		case bottleID := <-wp.jobs:
			ids = append(ids, bottleID)
		default:
			if len(ids) > 0 {
				wp.release(ctx, ids...)
			}
			return
		}
	}
}

// release resets the notified flag of bottles whose reminder did not go
// out. It runs detached from ctx, which may already be cancelled.
func (wp *WorkerPool) release(ctx context.Context, ids ...int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := wp.db.WithContext(ctx).Model(&model.Bottle{}).
		Where("id IN ?", ids).
		Update("inspection_notified", false).Error
	if err != nil {
		wp.log.Error("Failed to release bottles", zap.Int64s("bottle_ids", ids), zap.Error(err))
		return
	}
	wp.log.Info("Released bottles for the next scan", zap.Int64s("bottle_ids", ids))
}

// Dispatch queues a reminder for a bottle. It blocks while the queue is
// full and gives up when ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, bottleID int64) error {
	select {
	case wp.jobs <- bottleID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

func (wp *WorkerPool) sendRemindersForBottle(ctx context.Context, bottleID int64) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		wp.log.Error("Failed to fetch subscriptions", zap.Int64("bottle_id", bottleID), zap.Error(err))
		wp.release(ctx, bottleID)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var bottle model.Bottle
	if err := wp.db.WithContext(ctx).
		Select("internal_number", "next_inspection_due").
		First(&bottle, bottleID).Error; err != nil {
		wp.log.Warn("Failed to fetch bottle", zap.Int64("bottle_id", bottleID), zap.Error(err))
	}

	message := wp.reminderText(bottleID, bottle)
	wp.log.Info("Sending inspection reminders",
		zap.Int64("bottle_id", bottleID),
		zap.Int("subscriptions", len(subscriptions)))
	delivered, failed := 0, 0
	for _, sub := range subscriptions {
		switch wp.sendNotification(ctx, sub, []byte(message)) {
		case sendDelivered:
			delivered++
		case sendFailed:
			failed++
		}
	}
	if delivered == 0 && failed > 0 {
		wp.release(ctx, bottleID)
	}
}

type sendResult int

const (
	sendDelivered sendResult = iota
	sendFailed
	// sendExpired means the subscription is gone and was removed.
	sendExpired
)

func (wp *WorkerPool) reminderText(bottleID int64, bottle model.Bottle) string {
	label := bottle.InternalNumber
	if label == "" {
		label = fmt.Sprintf("#%d", bottleID)
	}
	if bottle.NextInspectionDue == nil {
		return fmt.Sprintf("Flasche %s: Prüfung fällig", label)
	}
	return fmt.Sprintf("Flasche %s: Prüfung fällig am %s", label, bottle.NextInspectionDue.In(wp.loc).Format("02.01.2006"))
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) sendResult {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("Failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return sendFailed
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		wp.log.Info("Subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Error("Failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return sendExpired
	case resp.StatusCode >= 300:
		wp.log.Warn("Push service rejected notification",
			zap.String("endpoint", sub.Endpoint),
			zap.Int("status", resp.StatusCode))
		return sendFailed
	}
	return sendDelivered
}
