// Package scheduler runs a job on a fixed interval without catching up on
// windows that were missed while the process was busy or asleep.
package scheduler

import (
	"context"
	"time"

	"github.com/BartekS5/salesflow/pkg/logger"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	interval time.Duration
	job      Job
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

func New(interval time.Duration, job Job) *Scheduler {
	return &Scheduler{interval: interval, job: job, now: time.Now, after: time.After}
}

// NextSlot returns the first slot start+k*interval that lies strictly after
// now. Slots that already passed are skipped.
func NextSlot(start, now time.Time, interval time.Duration) time.Time {
	if interval <= 0 || now.Before(start) {
		return start
	}
	elapsed := now.Sub(start)
	return start.Add((elapsed/interval + 1) * interval)
}

// Run executes the job immediately and then once per slot until ctx is
// cancelled. A failed run is logged and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	start := s.now()
	logger.Infof("Scheduler started, interval %s", s.interval)

	for {
		s.runOnce(ctx)
		if ctx.Err() != nil {
			logger.Info("Scheduler stopped.")
			return nil
		}

		next := NextSlot(start, s.now(), s.interval)
		logger.Infof("Next run at %s", next.UTC().Format(time.RFC3339))

		wait := s.after(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped.")
			return nil
		case <-wait:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		logger.Errorf("Scheduled run failed: %v", err)
	}
}
