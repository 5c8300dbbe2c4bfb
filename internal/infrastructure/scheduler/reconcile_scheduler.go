package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/reconciliation"
)

// ReconcileRunner executes one sold-reconciliation pass
type ReconcileRunner interface {
	Run(ctx context.Context) (*reconciliation.RunSummary, error)
}

// ReconcileSchedulerConfig holds configuration for the reconciliation scheduler
type ReconcileSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is how often a reconciliation pass runs
	Interval time.Duration
	// JobTimeout is the maximum time a pass can run
	JobTimeout time.Duration
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:    true,
		Interval:   15 * time.Minute,
		JobTimeout: 10 * time.Minute,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ReconcileScheduler runs the sold-reconciliation engine on a fixed
// interval. The first pass starts immediately so a restart does not wait
// a full interval to pick up pending sales.
type ReconcileScheduler struct {
	config ReconcileSchedulerConfig
	runner ReconcileRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool

	lastRunAt *time.Time
}

// NewReconcileScheduler creates a new ReconcileScheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, runner ReconcileRunner, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReconcileScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the scheduler
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reconcile scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconcile scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconcile scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerManualRun triggers an immediate reconciliation pass.
// Uses a background context so the pass outlives the HTTP request that
// triggered it.
func (s *ReconcileScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	if s.inFlight.Load() {
		return ErrRunInProgress
	}

	go s.runPass(context.Background())
	return nil
}

// runLoop runs a pass immediately, then on every tick
func (s *ReconcileScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass executes one reconciliation pass under the configured timeout
func (s *ReconcileScheduler) runPass(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Reconciliation pass still running, skipping trigger")
		return
	}
	defer s.inFlight.Store(false)

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	summary, err := s.runner.Run(runCtx)
	if err != nil {
		s.logger.Error("Reconciliation pass failed", zap.Error(err))
		return
	}

	s.logger.Info("Reconciliation pass completed",
		zap.Int("polled", summary.Polled),
		zap.Int("settled", summary.Settled),
		zap.Int("already_settled", summary.AlreadySettled),
		zap.Int("no_signal", summary.NoSignal),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
}

// GetStatus returns the current status of the scheduler
func (s *ReconcileScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"in_flight":   s.inFlight.Load(),
		"interval":    s.config.Interval.String(),
		"last_run_at": s.lastRunAt,
	}
}

// GetLastRunAt returns when the last pass started
func (s *ReconcileScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
