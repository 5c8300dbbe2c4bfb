package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslist/backend/internal/application/reconciliation"
)

type stubReconcileRunner struct {
	runs    atomic.Int32
	block   chan struct{}
	summary reconciliation.RunSummary
}

func (r *stubReconcileRunner) Run(ctx context.Context) (*reconciliation.RunSummary, error) {
	r.runs.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s := r.summary
	return &s, nil
}

func TestReconcileSchedulerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReconcileSchedulerConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *ReconcileSchedulerConfig) {}, false},
		{"zero interval", func(c *ReconcileSchedulerConfig) { c.Interval = 0 }, true},
		{"negative interval", func(c *ReconcileSchedulerConfig) { c.Interval = -time.Minute }, true},
		{"zero job timeout", func(c *ReconcileSchedulerConfig) { c.JobTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultReconcileSchedulerConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewReconcileScheduler_RejectsInvalidConfig(t *testing.T) {
	config := DefaultReconcileSchedulerConfig()
	config.Interval = 0

	s, err := NewReconcileScheduler(config, &stubReconcileRunner{}, newTestLogger())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReconcileScheduler_RunsImmediatelyOnStart(t *testing.T) {
	runner := &stubReconcileRunner{summary: reconciliation.RunSummary{Polled: 5, Settled: 1}}
	config := DefaultReconcileSchedulerConfig()
	config.Interval = time.Hour
	s, err := NewReconcileScheduler(config, runner, newTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	assert.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return s.GetLastRunAt() != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	s, err := NewReconcileScheduler(DefaultReconcileSchedulerConfig(), &stubReconcileRunner{}, newTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx))
}

func TestReconcileScheduler_TriggerManualRun(t *testing.T) {
	t.Run("rejected when not running", func(t *testing.T) {
		s, err := NewReconcileScheduler(DefaultReconcileSchedulerConfig(), &stubReconcileRunner{}, newTestLogger())
		require.NoError(t, err)

		assert.ErrorIs(t, s.TriggerManualRun(), ErrSchedulerNotRunning)
	})

	t.Run("rejected while a pass is in flight", func(t *testing.T) {
		runner := &stubReconcileRunner{block: make(chan struct{})}
		config := DefaultReconcileSchedulerConfig()
		config.Interval = time.Hour
		s, err := NewReconcileScheduler(config, runner, newTestLogger())
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, s.Start(ctx))
		defer func() { _ = s.Stop(ctx) }()

		// The immediate first pass is blocked inside the runner.
		assert.Eventually(t, func() bool {
			return runner.runs.Load() == 1
		}, 2*time.Second, 10*time.Millisecond)

		assert.ErrorIs(t, s.TriggerManualRun(), ErrRunInProgress)
		close(runner.block)

		assert.Eventually(t, func() bool {
			return !s.inFlight.Load()
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestReconcileScheduler_GetStatus(t *testing.T) {
	s, err := NewReconcileScheduler(DefaultReconcileSchedulerConfig(), &stubReconcileRunner{}, newTestLogger())
	require.NoError(t, err)

	status := s.GetStatus()
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, "15m0s", status["interval"])

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	status = s.GetStatus()
	assert.Equal(t, true, status["is_running"])
}
