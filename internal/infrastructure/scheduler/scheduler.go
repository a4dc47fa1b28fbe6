// Package scheduler runs background maintenance tasks on a small worker pool.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is one unit of maintenance work, run by name
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Job is a single queued run of a task
type Job struct {
	ID          uuid.UUID
	Task        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job for the named task
func NewJob(task string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Task:       task,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// Config holds scheduler configuration
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     32,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs submitted jobs on a fixed pool of workers
type Scheduler struct {
	config Config
	tasks  map[string]Task
	logger *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler that knows the given tasks
func NewScheduler(config Config, logger *zap.Logger, tasks ...Task) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registered := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		registered[t.Name()] = t
	}

	return &Scheduler{
		config: config,
		tasks:  registered,
		logger: logger,
		jobs:   make(chan *Job, config.QueueSize),
	}, nil
}

// Tasks returns the names of the registered tasks
func (s *Scheduler) Tasks() []string {
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	return names
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Maintenance scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a run of the named task
func (s *Scheduler) Submit(task string) (*Job, error) {
	if _, ok := s.tasks[task]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	job := NewJob(task, s.config.RetryAttempts)
	if err := s.enqueue(job); err != nil {
		return nil, err
	}
	s.logger.Debug("Job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("task", task),
	)
	return job, nil
}

// SubmitAll queues one run of every registered task
func (s *Scheduler) SubmitAll() error {
	for name := range s.tasks {
		if _, err := s.Submit(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	if job.NextRetryAt != nil {
		wait := time.Until(*job.NextRetryAt)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	task := s.tasks[job.Task]
	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := task.Run(jobCtx); err != nil {
		job.Fail(err.Error())
		s.logger.Error("Maintenance job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("task", job.Task),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)

		if job.ShouldRetry() && ctx.Err() == nil {
			job.ScheduleRetry(s.config.RetryDelay)
			if err := s.enqueue(job); err != nil {
				s.logger.Warn("Failed to re-queue job for retry",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
		}
		return
	}

	job.Complete()
	s.logger.Debug("Maintenance job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
		zap.Duration("took", job.CompletedAt.Sub(*job.StartedAt)),
	)
}
