package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/config"
)

// DefaultTimeout bounds a run when the configuration gives none
const DefaultTimeout = time.Duration(config.DefaultTimeoutSeconds) * time.Second

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tasks failed:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl runs file tasks on a bounded number of goroutines
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
	description    string
	progress       domain.ProgressManager
	logger         zerolog.Logger
	mu             sync.RWMutex
}

// NewParallelExecutor creates an executor using every CPU and the default timeout
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultTimeout,
		description:    "Checking files",
		logger:         zerolog.Nop(),
	}
}

// NewParallelExecutorFromConfig creates an executor from the performance section.
// Zero values fall back to runtime.NumCPU() and DefaultTimeout.
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	executor := NewParallelExecutor()
	if cfg == nil {
		return executor
	}
	if cfg.MaxGoroutines > 0 {
		executor.maxConcurrency = cfg.MaxGoroutines
	}
	if cfg.TimeoutSeconds > 0 {
		executor.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return executor
}

// NewParallelExecutorWithProgress creates an executor that reports per-task progress
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutorFromConfig(cfg)
	executor.progress = pm
	return executor
}

// WithLogger sets the logger used for task failures
func (e *ParallelExecutorImpl) WithLogger(logger zerolog.Logger) *ParallelExecutorImpl {
	e.logger = logger
	return e
}

// WithDescription sets the progress bar label
func (e *ParallelExecutorImpl) WithDescription(description string) *ParallelExecutorImpl {
	e.description = description
	return e
}

// Execute runs every enabled task. A failing task does not stop the others;
// failures are returned together as an *AggregatedError. Cancellation of ctx
// or the timeout stops tasks that have not started yet.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabledTasks := e.filterEnabledTasks(tasks)
	if len(enabledTasks) == 0 {
		return nil
	}

	e.mu.RLock()
	maxConcurrency := e.maxConcurrency
	timeout := e.timeout
	e.mu.RUnlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		task = e.progress.StartTask(e.description, len(enabledTasks))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(timeoutCtx)
	g.SetLimit(maxConcurrency)

	var errMu sync.Mutex
	var taskErrors []TaskError

	record := func(name string, err error) {
		errMu.Lock()
		taskErrors = append(taskErrors, TaskError{TaskName: name, Err: err})
		errMu.Unlock()
	}

	for _, t := range enabledTasks {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				record(t.Name(), err)
				return nil
			}

			_, err := t.Execute(gCtx)
			task.Increment(1)

			if err != nil {
				e.logger.Debug().Str("task", t.Name()).Err(err).Msg("task failed")
				record(t.Name(), err)
			}

			// Errors are collected, not returned, so every task gets to run
			return nil
		})
	}

	_ = g.Wait()

	if len(taskErrors) > 0 {
		return &AggregatedError{Errors: taskErrors}
	}

	return nil
}

// SetMaxConcurrency sets the maximum number of concurrent tasks
func (e *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max > 0 {
		e.maxConcurrency = max
	}
}

// SetTimeout sets the timeout for all tasks
func (e *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout > 0 {
		e.timeout = timeout
	}
}

// filterEnabledTasks returns only tasks where IsEnabled() returns true
func (e *ParallelExecutorImpl) filterEnabledTasks(tasks []domain.ExecutableTask) []domain.ExecutableTask {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	return enabled
}
