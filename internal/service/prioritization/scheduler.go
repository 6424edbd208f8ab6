// internal/service/prioritization/scheduler.go

package prioritization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers retraining on a cron expression
type Scheduler struct {
	cron      *cron.Cron
	retrainer *Retrainer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler registers the retraining job. spec uses the standard
// five-field cron syntax evaluated in loc.
func NewScheduler(spec string, loc *time.Location, retrainer *Retrainer, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		retrainer: retrainer,
		timeout:   timeout,
		logger:    logger.With("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid retraining schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("retraining scheduled", "next", e.Next)
	}
}

// Stop prevents new runs and waits for a running one until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next scheduled run time
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now().In(s.cron.Location()))
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outcome, err := s.retrainer.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled retraining failed", "error", err)
		return
	}
	s.logger.Info("scheduled retraining finished", "status", outcome.Status, "samples", outcome.Samples)
}
