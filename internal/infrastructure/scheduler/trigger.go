package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IntervalTrigger queues every registered task at a fixed interval
type IntervalTrigger struct {
	interval     time.Duration
	runAtStartup bool
	scheduler    *Scheduler
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a trigger. With runAtStartup the tasks are queued
// once as soon as the trigger starts.
func NewIntervalTrigger(interval time.Duration, runAtStartup bool, scheduler *Scheduler, logger *zap.Logger) *IntervalTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalTrigger{
		interval:     interval,
		runAtStartup: runAtStartup,
		scheduler:    scheduler,
		logger:       logger,
	}
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	if t.interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, t.interval)
	}

	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Maintenance trigger started",
		zap.Duration("interval", t.interval),
		zap.Strings("tasks", t.scheduler.Tasks()),
	)
	return nil
}

// Stop stops the trigger loop
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.runAtStartup {
		t.fire()
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire()
		}
	}
}

func (t *IntervalTrigger) fire() {
	if err := t.scheduler.SubmitAll(); err != nil {
		t.logger.Warn("Failed to queue maintenance tasks", zap.Error(err))
	}
}
