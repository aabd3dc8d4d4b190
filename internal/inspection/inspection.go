// Package inspection periodically looks for bottles whose pressure test is
// due and hands them to the push worker pool.
package inspection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/logging"
)

// Claimer marks due bottles as notified and returns their ids. Released
// bottles become due again for the next scan.
type Claimer interface {
	ClaimDueInspections(ctx context.Context, dueBy time.Time, limit int) ([]int64, error)
	ReleaseInspections(ctx context.Context, ids []int64) error
}

// Dispatcher queues a reminder for one bottle.
type Dispatcher interface {
	Dispatch(ctx context.Context, bottleID int64) error
}

// Counter receives the number of bottles claimed per scan.
type Counter interface {
	InspectionsClaimed(n int)
}

// Service runs the inspection-due scan.
type Service struct {
	cfg     config.InspectionConfig
	claimer Claimer
	pool    Dispatcher
	counter Counter
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

// NewService creates the scan service. counter may be nil.
func NewService(cfg config.InspectionConfig, claimer Claimer, pool Dispatcher, counter Counter) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{
		cfg:     cfg,
		claimer: claimer,
		pool:    pool,
		counter: counter,
		loc:     loc,
		now:     time.Now,
		log:     logging.Named(logging.NameInspection),
	}, nil
}

// Location is the timezone due dates are evaluated in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Run scans once and then every configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("Inspection scan is disabled. Not starting.")
		return
	}
	s.log.Info("Starting inspection scan", zap.Duration("interval", s.cfg.Interval))

	s.scan(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Inspection scan shutting down.")
			return
		case <-timer.C:
			s.scan(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) scan(ctx context.Context) {
	if _, err := s.ScanOnce(ctx); err != nil {
		s.log.Error("Inspection scan failed", zap.Error(err))
	}
}

// release un-claims bottles that never reached the pool. It runs detached
// from ctx, which is usually the reason dispatching stopped.
func (s *Service) release(ctx context.Context, ids []int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.claimer.ReleaseInspections(ctx, ids); err != nil {
		s.log.Error("Failed to release undispatched bottles", zap.Int64s("bottle_ids", ids), zap.Error(err))
		return
	}
	s.log.Warn("Released undispatched bottles", zap.Int64s("bottle_ids", ids))
}

// DueBy is the last instant counted as due: the end of the local day
// LookaheadDays after now.
func (s *Service) DueBy(now time.Time) time.Time {
	local := now.In(s.loc)
	y, m, d := local.AddDate(0, 0, s.cfg.LookaheadDays).Date()
	return time.Date(y, m, d, 23, 59, 59, 0, s.loc)
}

// ScanOnce claims every due bottle, batch by batch, and dispatches a
// reminder for each. It returns the number of bottles claimed.
func (s *Service) ScanOnce(ctx context.Context) (int, error) {
	dueBy := s.DueBy(s.now())
	total := 0
	for {
		ids, err := s.claimer.ClaimDueInspections(ctx, dueBy, s.cfg.BatchSize)
		if err != nil {
			return total, fmt.Errorf("failed to claim due bottles: %w", err)
		}
		total += len(ids)
		if s.counter != nil && len(ids) > 0 {
			s.counter.InspectionsClaimed(len(ids))
		}

		for i, id := range ids {
			if err := s.pool.Dispatch(ctx, id); err != nil {
				s.release(ctx, ids[i:])
				return total, fmt.Errorf("failed to dispatch bottle %d: %w", id, err)
			}
		}

		if s.cfg.BatchSize <= 0 || len(ids) < s.cfg.BatchSize {
			break
		}
	}

	if total > 0 {
		s.log.Info("Dispatched inspection reminders", zap.Int("bottles", total), zap.Time("due_by", dueBy))
	}
	return total, nil
}
