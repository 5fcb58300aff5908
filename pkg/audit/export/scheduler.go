package export

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"atlashq/meridian/pkg/audit"
)

// EventSource yields the full audit trail to archive. The policy version
// store satisfies this.
type EventSource interface {
	ListAuditEvents(ctx context.Context) ([]*audit.Event, error)
}

// Scheduler archives the audit trail on a cron schedule (e.g. nightly).
type Scheduler struct {
	source   EventSource
	archiver *SQLiteArchiver
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a new archival scheduler.
func NewScheduler(source EventSource, archiver *SQLiteArchiver, schedule string) *Scheduler {
	return &Scheduler{
		source:   source,
		archiver: archiver,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "audit.scheduler"),
	}
}

// Start begins scheduled archival based on the cron expression.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If the schedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("archive schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runArchival(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule archival: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("audit archival scheduler started",
		"schedule", s.schedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runArchival executes one archival cycle.
func (s *Scheduler) runArchival(ctx context.Context) {
	s.logger.Info("starting scheduled audit archival")

	events, err := s.source.ListAuditEvents(ctx)
	if err != nil {
		s.logger.Error("scheduled archival failed",
			"error", err,
		)
		return
	}

	inserted, err := s.archiver.Archive(ctx, events)
	if err != nil {
		s.logger.Error("scheduled archival failed",
			"error", err,
		)
		return
	}

	if inserted > 0 {
		s.logger.Info("scheduled archival completed",
			"archived_count", inserted,
		)
	} else {
		s.logger.Debug("scheduled archival completed, no new events")
	}
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("audit archival scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled archival time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
