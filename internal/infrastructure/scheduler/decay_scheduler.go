package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/pricing"
)

// cronTickerInterval is the interval at which cron-style schedulers check
// for execution
const cronTickerInterval = 1 * time.Minute

// DecayRunner executes one price decay cycle
type DecayRunner interface {
	Run(ctx context.Context) (*pricing.RunSummary, error)
}

// DecaySchedulerConfig holds configuration for the daily decay scheduler
type DecaySchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// RunHour is the hour (0-23) to run the daily decay cycle
	RunHour int
	// RunMinute is the minute (0-59) to run the daily decay cycle
	RunMinute int
	// JobTimeout is the maximum time a decay cycle can run
	JobTimeout time.Duration
}

// DefaultDecaySchedulerConfig returns default configuration.
// Defaults to running at 3:00 AM daily.
func DefaultDecaySchedulerConfig() DecaySchedulerConfig {
	return DecaySchedulerConfig{
		Enabled:    true,
		RunHour:    3,
		RunMinute:  0,
		JobTimeout: 30 * time.Minute,
	}
}

// Validate validates the configuration
func (c *DecaySchedulerConfig) Validate() error {
	if c.RunHour < 0 || c.RunHour > 23 {
		return ErrInvalidConfig
	}
	if c.RunMinute < 0 || c.RunMinute > 59 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DecayScheduler runs the price decay engine once a day at the configured
// wall-clock time. A cycle that overruns into the next trigger is not
// stacked; the overlapping trigger is skipped.
type DecayScheduler struct {
	config DecaySchedulerConfig
	runner DecayRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewDecayScheduler creates a new DecayScheduler
func NewDecayScheduler(config DecaySchedulerConfig, runner DecayRunner, logger *zap.Logger) (*DecayScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DecayScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the scheduler
func (s *DecayScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Decay scheduler started",
		zap.Int("run_hour", s.config.RunHour),
		zap.Int("run_minute", s.config.RunMinute),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Timep("next_run_at", s.GetNextRunAt()),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *DecayScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Decay scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Decay scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerManualRun triggers an immediate decay cycle.
// Uses a background context so the cycle outlives the HTTP request that
// triggered it.
func (s *DecayScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	if s.inFlight.Load() {
		return ErrRunInProgress
	}

	go s.runCycle(context.Background())
	return nil
}

// cronLoop checks every minute whether the daily trigger time was reached
func (s *DecayScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runCycle(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the cron should run at the given time
func (s *DecayScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.RunHour && now.Minute() == s.config.RunMinute
}

// calculateNextRunTime calculates the next run time
func (s *DecayScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RunHour, s.config.RunMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runCycle executes one decay cycle under the configured timeout
func (s *DecayScheduler) runCycle(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Decay cycle still running, skipping trigger")
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
		s.logger.Error("Decay cycle failed", zap.Error(err))
		return
	}

	s.logger.Info("Decay cycle completed",
		zap.Int("candidates", summary.Candidates),
		zap.Int("dropped", summary.Dropped),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("channel_updates", summary.ChannelUpdates),
		zap.Int("channel_errors", summary.ChannelErrors),
		zap.Duration("duration", summary.Duration),
	)
}

// GetStatus returns the current status of the scheduler
func (s *DecayScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"in_flight":   s.inFlight.Load(),
		"run_hour":    s.config.RunHour,
		"run_minute":  s.config.RunMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *DecayScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// GetLastRunAt returns when the last run occurred
func (s *DecayScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
