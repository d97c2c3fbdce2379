package orchestration

import (
	"sort"
	"sync"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
)

var defaultAutoSubmitWarnings = []time.Duration{5 * time.Minute, time.Minute}

type AutoSubmitOption func(*AutoSubmitTimer)

// WithWarnings sets the remaining durations at which the tick callback runs.
func WithWarnings(thresholds ...time.Duration) AutoSubmitOption {
	return func(t *AutoSubmitTimer) { t.warnings = append([]time.Duration{}, thresholds...) }
}

func WithTickCallback(callback func(remaining time.Duration)) AutoSubmitOption {
	return func(t *AutoSubmitTimer) { t.onTick = callback }
}

// AutoSubmitTimer counts down a timed activity and runs onExpire when it
// reaches zero. Warnings and expiry are bound to the generation current at
// Start, so a timer outliving its screen never fires.
type AutoSubmitTimer struct {
	generation *Generation
	duration   time.Duration
	warnings   []time.Duration
	onTick     func(remaining time.Duration)
	onExpire   func()
	emit       eventEmitter

	mu        sync.Mutex
	deadline  time.Time
	tasks     []*ScheduledTask
	started   bool
	cancelled bool
	expired   bool
}

func NewAutoSubmitTimer(generation *Generation, duration time.Duration, onExpire func(), opts ...AutoSubmitOption) *AutoSubmitTimer {
	if generation == nil {
		generation = &Generation{}
	}
	t := &AutoSubmitTimer{
		generation: generation,
		duration:   duration,
		warnings:   defaultAutoSubmitWarnings,
		onExpire:   onExpire,
		emit:       noopEventEmitter,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start arms the countdown. Repeated calls are ignored.
func (t *AutoSubmitTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.cancelled {
		return
	}
	t.started = true
	t.deadline = time.Now().Add(t.duration)

	warnings := append([]time.Duration{}, t.warnings...)
	sort.Slice(warnings, func(i, j int) bool { return warnings[i] > warnings[j] })
	for _, remaining := range warnings {
		if remaining <= 0 || remaining >= t.duration {
			continue
		}
		t.tasks = append(t.tasks, t.generation.AfterFunc(t.duration-remaining, func() { t.tick(remaining) }))
	}
	t.tasks = append(t.tasks, t.generation.AfterFunc(t.duration, t.expire))
	logger.Info("auto submit armed", "duration", t.duration.String(), "generation", t.generation.Current())
}

// Cancel stops the countdown. It reports whether the timer was still able to
// expire.
func (t *AutoSubmitTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.expired {
		return false
	}
	t.cancelled = true
	for _, task := range t.tasks {
		task.Cancel()
	}
	t.tasks = nil
	return true
}

// Remaining returns the time left, the full duration before Start and zero
// once expired or cancelled.
func (t *AutoSubmitTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.expired || t.cancelled:
		return 0
	case !t.started:
		return t.duration
	}
	if remaining := time.Until(t.deadline); remaining > 0 {
		return remaining
	}
	return 0
}

func (t *AutoSubmitTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *AutoSubmitTimer) tick(remaining time.Duration) {
	t.mu.Lock()
	if t.cancelled || t.expired {
		t.mu.Unlock()
		return
	}
	onTick := t.onTick
	t.mu.Unlock()

	logger.Info("auto submit warning", "remaining", remaining.String())
	t.emit(events.NewAutoSubmitTick(remaining))
	if onTick != nil {
		onTick(remaining)
	}
}

func (t *AutoSubmitTimer) expire() {
	t.mu.Lock()
	if t.cancelled || t.expired {
		t.mu.Unlock()
		return
	}
	t.expired = true
	t.tasks = nil
	t.mu.Unlock()

	logger.Info("auto submit expired")
	autoSubmits.Inc()
	t.emit(events.NewAutoSubmitExpired())
	if t.onExpire != nil {
		t.onExpire()
	}
}
