package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/syncservice"
	"github.com/stridewell/server/pkg/types"
)

// Runner is the sync entry point the scheduler drives. Satisfied by
// *syncservice.Service.
type Runner interface {
	SyncAthleteData(ctx context.Context, opts syncservice.RunOptions) (*types.SyncRun, error)
}

// Scheduler polls enabled sync configs on an interval and triggers due
// athletes sequentially. One scheduler instance owns the loop; Start and Stop
// are idempotent.
type Scheduler struct {
	store  shared.Store
	runner Runner
	logger *slog.Logger

	interval      time.Duration
	maxConcurrent int
	now           shared.NowFunc

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
	lastCheck time.Time
	triggered int64
	errored   int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxConcurrent bounds how many due configs one poll fetches. Syncs still
// run one at a time; the bound keeps a backlog from monopolizing a tick.
func WithMaxConcurrent(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func WithClock(now shared.NowFunc) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(store shared.Store, runner Runner, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:         store,
		runner:        runner,
		logger:        logger,
		interval:      shared.DefaultSchedulerInterval,
		maxConcurrent: shared.DefaultMaxConcurrentSyncs,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the polling loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	s.logger.Info("Scheduler started", "interval", s.interval.String())

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				s.TriggerCheck(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. Calling Stop on a stopped
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("Scheduler stopped")
}

// Status is a snapshot of the scheduler's state.
type Status struct {
	Running        bool      `json:"running"`
	IntervalSec    int       `json:"interval_sec"`
	LastCheckAt    time.Time `json:"last_check_at"`
	TriggeredTotal int64     `json:"triggered_total"`
	ErroredTotal   int64     `json:"errored_total"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:        s.running,
		IntervalSec:    int(s.interval.Seconds()),
		LastCheckAt:    s.lastCheck,
		TriggeredTotal: s.triggered,
		ErroredTotal:   s.errored,
	}
}

// TriggerCheck runs one poll synchronously: list enabled configs, filter to
// due ones, skip athletes with a sync already running, trigger the rest.
// Exposed for the manual trigger endpoint and for tests.
func (s *Scheduler) TriggerCheck(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	s.lastCheck = now
	s.mu.Unlock()

	configs, err := s.store.ListEnabledSyncConfigs(ctx, s.maxConcurrent)
	if err != nil {
		s.logger.Error("Scheduler poll failed",
			"error", (&types.SyncError{Kind: types.ErrSchedulerQuery, Message: err.Error()}).Error())
		s.mu.Lock()
		s.errored++
		s.mu.Unlock()
		return
	}

	for _, cfg := range configs {
		if !IsDue(cfg, now) {
			continue
		}
		s.triggerSync(ctx, cfg, now)
	}
}

func (s *Scheduler) triggerSync(ctx context.Context, cfg *types.SyncConfig, now time.Time) {
	// One sync per athlete at a time. The running record is the lock.
	active, err := s.store.GetRunningSyncRun(ctx, cfg.AthleteID)
	if err != nil {
		s.logger.Error("Could not check for a running sync", "athlete_id", cfg.AthleteID, "error", err)
		s.mu.Lock()
		s.errored++
		s.mu.Unlock()
		return
	}
	if active != nil {
		s.logger.Info("Sync already running, skipping",
			"athlete_id", cfg.AthleteID, "active_sync_id", active.SyncID)
		return
	}

	run, err := s.runner.SyncAthleteData(ctx, syncservice.RunOptions{
		AthleteID: cfg.AthleteID,
		SyncType:  types.SyncTypeScheduled,
		DataTypes: cfg.DataTypes,
	})
	if err != nil {
		s.logger.Error("Scheduled sync failed to run", "athlete_id", cfg.AthleteID, "error", err)
		s.mu.Lock()
		s.errored++
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.triggered++
	s.mu.Unlock()

	update := map[string]interface{}{"last_sync_at": now}
	if next, ok, err := NextRunAfter(cfg, now); err == nil && ok {
		update["next_sync_at"] = next
	}
	if err := s.store.UpdateSyncConfig(ctx, cfg.AthleteID, update); err != nil {
		s.logger.Error("Could not advance sync schedule", "athlete_id", cfg.AthleteID, "error", err)
	}

	s.logger.Info("Scheduled sync triggered",
		"athlete_id", cfg.AthleteID, "sync_id", run.SyncID, "status", run.Status)
}
