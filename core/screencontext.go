package orchestration

import "sync"

// ScreenContext names the screen that currently owns voice input.
type ScreenContext string

const (
	ScreenNone ScreenContext = ""
	ScreenHome ScreenContext = "home"
	ScreenExam ScreenContext = "exam"
)

func (s ScreenContext) String() string {
	if s == ScreenNone {
		return "none"
	}
	return string(s)
}

// ScreenContextGate records which screen holds input focus. Only that
// screen's dialog session may act on recognition results.
type ScreenContextGate struct {
	mu          sync.RWMutex
	current     ScreenContext
	subscribers []func(current, previous ScreenContext)

	generation *Generation
}

// NewScreenContextGate returns a gate advancing generation on every change.
// A nil generation gets a private counter.
func NewScreenContextGate(generation *Generation) *ScreenContextGate {
	if generation == nil {
		generation = &Generation{}
	}
	return &ScreenContextGate{generation: generation}
}

// SetContext hands input focus to screen and reports whether the screen
// changed. Subscribers run synchronously after the change is visible, also
// when screen already held focus. The generation only advances on a change.
func (g *ScreenContextGate) SetContext(screen ScreenContext) bool {
	g.mu.Lock()
	previous := g.current
	changed := previous != screen
	if changed {
		g.current = screen
		g.generation.Advance()
	}
	subscribers := append([]func(current, previous ScreenContext){}, g.subscribers...)
	g.mu.Unlock()

	if changed {
		logger.Info("screen context changed", "current", screen.String(), "previous", previous.String())
	}
	for _, subscriber := range subscribers {
		subscriber(screen, previous)
	}
	return changed
}

func (g *ScreenContextGate) Context() ScreenContext {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// IsValid reports whether screen is the current context. ScreenNone is
// valid while no screen holds focus.
func (g *ScreenContextGate) IsValid(screen ScreenContext) bool {
	return g.Context() == screen
}

// Subscribe registers a change listener.
func (g *ScreenContextGate) Subscribe(subscriber func(current, previous ScreenContext)) {
	if subscriber == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscribers = append(g.subscribers, subscriber)
}
