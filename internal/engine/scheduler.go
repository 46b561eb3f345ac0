package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
)

// Scheduler runs rematch periodically. A scheduler lock in the store keeps
// replicas from running the same job concurrently.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	store  store.Store
	log    *slog.Logger

	holder         string
	lockTTL        time.Duration
	staleThreshold time.Duration
}

// NewScheduler creates a new Scheduler that runs rematch every
// rematchInterval. Job runs left running for longer than staleThreshold are
// marked crashed when the scheduler starts.
func NewScheduler(
	eng *Engine,
	s store.Store,
	rematchInterval time.Duration,
	staleThreshold time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	if rematchInterval <= 0 {
		return nil, fmt.Errorf("rematch interval must be positive, got %s", rematchInterval)
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}

	c := cron.New()
	sched := &Scheduler{
		cron:           c,
		engine:         eng,
		store:          s,
		log:            log,
		holder:         fmt.Sprintf("%s-%d", host, os.Getpid()),
		lockTTL:        rematchInterval,
		staleThreshold: staleThreshold,
	}

	if _, err := c.AddFunc("@every "+rematchInterval.String(), sched.runRematch); err != nil {
		return nil, fmt.Errorf("registering rematch job: %w", err)
	}

	return sched, nil
}

// Start recovers stale job runs and begins running scheduled tasks.
func (s *Scheduler) Start() {
	if s.staleThreshold > 0 {
		n, err := s.store.RecoverStaleJobRuns(context.Background(), s.staleThreshold)
		if err != nil {
			s.log.Error("failed to recover stale job runs", "error", err)
		} else if n > 0 {
			s.log.Warn("marked stale job runs as crashed", "count", n)
		}
	}

	s.log.Info("scheduler started", "holder", s.holder)
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runRematch() {
	ctx := context.Background()

	ok, err := s.store.AcquireSchedulerLock(ctx, JobRematch, s.holder, s.lockTTL)
	if err != nil {
		s.log.Error("acquiring scheduler lock failed", "job", JobRematch, "error", err)
		return
	}
	if !ok {
		s.log.Debug("scheduled rematch skipped, lock held elsewhere")
		return
	}
	defer func() {
		if err := s.store.ReleaseSchedulerLock(ctx, JobRematch, s.holder); err != nil {
			s.log.Error("releasing scheduler lock failed", "job", JobRematch, "error", err)
		}
	}()

	s.log.Info("scheduled rematch starting")
	if _, err := s.engine.RunRematch(ctx); err != nil {
		s.log.Error("scheduled rematch failed", "error", err)
	}
}
