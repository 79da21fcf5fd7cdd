package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultResyncSchedule runs the reconcile pass twice an hour.
const DefaultResyncSchedule = "@every 30m"

// ResyncScheduler runs SyncWorker.ResyncPending on a cron schedule. A run that
// overlaps a still-running one is skipped.
type ResyncScheduler struct {
	worker *SyncWorker
	spec   string

	mu   sync.Mutex
	cron *cron.Cron
}

func NewResyncScheduler(w *SyncWorker, spec string) *ResyncScheduler {
	if spec == "" {
		spec = DefaultResyncSchedule
	}
	return &ResyncScheduler{worker: w, spec: spec}
}

// Start registers the job and starts the scheduler. ctx bounds every run.
func (s *ResyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("resync scheduler is already running")
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule resync %q: %w", s.spec, err)
	}
	c.Start()
	s.cron = c

	slog.InfoContext(ctx, "Resync scheduler started", "schedule", s.spec)
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *ResyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		slog.InfoContext(ctx, "Resync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Resync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ResyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

func (s *ResyncScheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	synced, err := s.worker.ResyncPending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled resync failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled resync finished", "synced", synced)
}
