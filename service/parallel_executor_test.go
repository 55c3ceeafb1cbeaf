package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/config"
)

// mockTask implements domain.ExecutableTask for testing
type mockTask struct {
	name     string
	enabled  bool
	execFunc func(ctx context.Context) (any, error)
}

func (t *mockTask) Name() string {
	return t.name
}

func (t *mockTask) Execute(ctx context.Context) (any, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx)
	}
	return nil, nil
}

func (t *mockTask) IsEnabled() bool {
	return t.enabled
}

func newMockTask(name string, enabled bool) *mockTask {
	return &mockTask{name: name, enabled: enabled}
}

func newMockTaskWithExec(name string, enabled bool, execFunc func(ctx context.Context) (any, error)) *mockTask {
	return &mockTask{name: name, enabled: enabled, execFunc: execFunc}
}

// mockProgressManager records progress calls
type mockProgressManager struct {
	description string
	total       int
	increments  atomic.Int32
	completed   atomic.Bool
}

func (m *mockProgressManager) StartTask(description string, total int) domain.TaskProgress {
	m.description = description
	m.total = total
	return &mockTaskProgress{pm: m}
}

func (m *mockProgressManager) IsInteractive() bool { return true }

func (m *mockProgressManager) Close() {}

type mockTaskProgress struct {
	pm *mockProgressManager
}

func (p *mockTaskProgress) Increment(n int) { p.pm.increments.Add(int32(n)) }

func (p *mockTaskProgress) Describe(string) {}

func (p *mockTaskProgress) Complete() { p.pm.completed.Store(true) }

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	if executor.maxConcurrency != runtime.NumCPU() {
		t.Errorf("maxConcurrency should be %d, got %d", runtime.NumCPU(), executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
}

func TestNewParallelExecutorFromConfig(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{
		MaxGoroutines:  8,
		TimeoutSeconds: 120,
	})

	if executor.maxConcurrency != 8 {
		t.Errorf("maxConcurrency should be 8, got %d", executor.maxConcurrency)
	}
	if executor.timeout != 120*time.Second {
		t.Errorf("timeout should be 120s, got %v", executor.timeout)
	}
}

func TestNewParallelExecutorFromConfig_Defaults(t *testing.T) {
	for _, cfg := range []*config.PerformanceConfig{nil, {}} {
		executor := NewParallelExecutorFromConfig(cfg)

		if executor.maxConcurrency != runtime.NumCPU() {
			t.Errorf("maxConcurrency should default to NumCPU, got %d", executor.maxConcurrency)
		}
		if executor.timeout != DefaultTimeout {
			t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
		}
	}
}

func TestParallelExecutor_EmptyTaskList(t *testing.T) {
	if err := NewParallelExecutor().Execute(context.Background(), nil); err != nil {
		t.Errorf("empty task list should return nil, got %v", err)
	}
}

func TestParallelExecutor_AllTasksSucceed(t *testing.T) {
	var executed atomic.Int32
	tasks := make([]domain.ExecutableTask, 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, newMockTaskWithExec("file", true, func(context.Context) (any, error) {
			executed.Add(1)
			return nil, nil
		}))
	}

	if err := NewParallelExecutor().Execute(context.Background(), tasks); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if executed.Load() != 10 {
		t.Errorf("expected 10 executions, got %d", executed.Load())
	}
}

func TestParallelExecutor_PartialFailures(t *testing.T) {
	var executed atomic.Int32
	failing := errors.New("parse failed")

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("A.java", true, func(context.Context) (any, error) {
			executed.Add(1)
			return nil, failing
		}),
		newMockTaskWithExec("b.js", true, func(context.Context) (any, error) {
			executed.Add(1)
			return nil, nil
		}),
		newMockTaskWithExec("c.go", true, func(context.Context) (any, error) {
			executed.Add(1)
			return nil, errors.New("read failed")
		}),
	}

	err := NewParallelExecutor().Execute(context.Background(), tasks)

	var aggErr *AggregatedError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected *AggregatedError, got %v", err)
	}
	if len(aggErr.Errors) != 2 {
		t.Errorf("expected 2 task errors, got %d", len(aggErr.Errors))
	}
	if executed.Load() != 3 {
		t.Errorf("a failing task should not stop the others, executed %d", executed.Load())
	}
}

func TestParallelExecutor_Timeout(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetTimeout(50 * time.Millisecond)

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("slow", true, func(ctx context.Context) (any, error) {
			select {
			case <-time.After(2 * time.Second):
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	}

	err := executor.Execute(context.Background(), tasks)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestParallelExecutor_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed atomic.Int32
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("a.js", true, func(context.Context) (any, error) {
			executed.Add(1)
			return nil, nil
		}),
	}

	err := NewParallelExecutor().Execute(ctx, tasks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if executed.Load() != 0 {
		t.Error("no task should run after cancellation")
	}
}

func TestParallelExecutor_DisabledTasksSkipped(t *testing.T) {
	var executed atomic.Int32
	run := func(context.Context) (any, error) {
		executed.Add(1)
		return nil, nil
	}

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("on", true, run),
		newMockTaskWithExec("off", false, run),
		newMockTask("off-too", false),
	}

	if err := NewParallelExecutor().Execute(context.Background(), tasks); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if executed.Load() != 1 {
		t.Errorf("expected 1 execution, got %d", executed.Load())
	}
}

func TestParallelExecutor_ConcurrencyLimit(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(2)

	var current, peak atomic.Int32
	tasks := make([]domain.ExecutableTask, 0, 8)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, newMockTaskWithExec("file", true, func(context.Context) (any, error) {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil, nil
		}))
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent tasks, saw %d", peak.Load())
	}
}

func TestParallelExecutor_SettersIgnoreInvalidValues(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(3)
	executor.SetMaxConcurrency(0)
	executor.SetTimeout(time.Second)
	executor.SetTimeout(-1)

	if executor.maxConcurrency != 3 {
		t.Errorf("maxConcurrency should stay 3, got %d", executor.maxConcurrency)
	}
	if executor.timeout != time.Second {
		t.Errorf("timeout should stay 1s, got %v", executor.timeout)
	}
}

func TestParallelExecutor_ProgressIntegration(t *testing.T) {
	pm := &mockProgressManager{}
	executor := NewParallelExecutorWithProgress(&config.PerformanceConfig{MaxGoroutines: 2}, pm).
		WithDescription("Checking 3 files")

	tasks := []domain.ExecutableTask{
		newMockTask("a", true),
		newMockTask("b", true),
		newMockTask("c", true),
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pm.description != "Checking 3 files" || pm.total != 3 {
		t.Errorf("unexpected task start: %q/%d", pm.description, pm.total)
	}
	if pm.increments.Load() != 3 {
		t.Errorf("expected 3 increments, got %d", pm.increments.Load())
	}
	if !pm.completed.Load() {
		t.Error("expected Complete() to be called")
	}
}

func TestAggregatedError_Error(t *testing.T) {
	if (&AggregatedError{}).Error() != "no errors" {
		t.Error("empty aggregated error should say so")
	}

	single := &AggregatedError{Errors: []TaskError{{TaskName: "a.js", Err: errors.New("boom")}}}
	if single.Error() != "[a.js] boom" {
		t.Errorf("unexpected single error message: %s", single.Error())
	}

	multi := &AggregatedError{Errors: []TaskError{
		{TaskName: "a.js", Err: errors.New("boom")},
		{TaskName: "B.java", Err: errors.New("bang")},
	}}
	msg := multi.Error()
	if !strings.Contains(msg, "2 tasks failed") || !strings.Contains(msg, "[B.java] bang") {
		t.Errorf("unexpected multi error message: %s", msg)
	}
}

func TestAggregatedError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &AggregatedError{Errors: []TaskError{{TaskName: "x", Err: cause}}}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the first cause")
	}
	if (&AggregatedError{}).Unwrap() != nil {
		t.Error("empty aggregated error should unwrap to nil")
	}
}

func TestTaskError(t *testing.T) {
	cause := errors.New("cause")
	err := TaskError{TaskName: "file.ts", Err: cause}
	if err.Error() != "[file.ts] cause" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}
