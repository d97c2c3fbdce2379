package orchestration

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerationAdvance(t *testing.T) {
	var generation Generation
	first := generation.Current()
	second := generation.Advance()

	if second != first+1 {
		t.Fatalf("expected %d, got %d", first+1, second)
	}
	if generation.IsCurrent(first) {
		t.Fatalf("expected generation %d to be stale", first)
	}
	if !generation.IsCurrent(second) {
		t.Fatalf("expected generation %d to be current", second)
	}
}

func TestScheduledTaskRunsWhileCurrent(t *testing.T) {
	var generation Generation
	var runs atomic.Int32
	task := generation.AfterFunc(5*time.Millisecond, func() { runs.Add(1) })

	waitForCondition(t, time.Second, "task to run", task.Fired)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected one run, got %d", got)
	}
	if task.Cancel() {
		t.Fatalf("expected cancel after firing to report false")
	}
}

func TestScheduledTaskSkippedWhenStale(t *testing.T) {
	var generation Generation
	var runs atomic.Int32
	task := generation.AfterFunc(10*time.Millisecond, func() { runs.Add(1) })
	generation.Advance()
	time.Sleep(40 * time.Millisecond)

	if runs.Load() != 0 || task.Fired() {
		t.Fatalf("expected a stale task not to run")
	}
	if task.Generation() == generation.Current() {
		t.Fatalf("expected the task to keep the generation it was scheduled under")
	}
}

func TestScheduledTaskCancel(t *testing.T) {
	var generation Generation
	var runs atomic.Int32
	task := generation.AfterFunc(10*time.Millisecond, func() { runs.Add(1) })

	if !task.Cancel() {
		t.Fatalf("expected cancel of a pending task to succeed")
	}
	time.Sleep(40 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("expected a cancelled task not to run")
	}

	var missing *ScheduledTask
	if missing.Cancel() {
		t.Fatalf("expected cancel of a nil task to report false")
	}
}
