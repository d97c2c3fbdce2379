package orchestration

import (
	"sync"
	"sync/atomic"
	"time"
)

// Generation counts screen and session changes. Work captured under one
// generation is discarded once the counter has moved on.
type Generation struct {
	value atomic.Uint64
}

func (g *Generation) Current() uint64 { return g.value.Load() }

// Advance invalidates everything captured under the previous generation and
// returns the new one.
func (g *Generation) Advance() uint64 { return g.value.Add(1) }

func (g *Generation) IsCurrent(generation uint64) bool { return g.value.Load() == generation }

// ScheduledTask is a delayed function bound to the generation it was
// scheduled under.
type ScheduledTask struct {
	generation uint64
	timer      *time.Timer

	mu    sync.Mutex
	state scheduledTaskState
}

type scheduledTaskState int

const (
	taskPending scheduledTaskState = iota
	taskCancelled
	taskFired
	taskStale
)

// AfterFunc runs fn after d unless the task was cancelled or the generation
// advanced in the meantime.
func (g *Generation) AfterFunc(d time.Duration, fn func()) *ScheduledTask {
	task := &ScheduledTask{generation: g.Current()}
	task.mu.Lock()
	defer task.mu.Unlock()
	task.timer = time.AfterFunc(d, func() {
		task.mu.Lock()
		if task.state != taskPending {
			task.mu.Unlock()
			return
		}
		if !g.IsCurrent(task.generation) {
			task.state = taskStale
			task.mu.Unlock()
			logger.Debug("dropped stale scheduled task", "generation", task.generation, "current", g.Current())
			return
		}
		task.state = taskFired
		task.mu.Unlock()

		fn()
	})
	return task
}

// Cancel prevents a pending task from running. It reports whether the task
// was still pending.
func (t *ScheduledTask) Cancel() bool {
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	t.timer.Stop()
	return true
}

func (t *ScheduledTask) Generation() uint64 { return t.generation }

// Fired reports whether the task ran.
func (t *ScheduledTask) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskFired
}
