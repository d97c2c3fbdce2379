package orchestration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

func fastTimings() Timings {
	return Timings{
		PostStopBeforeSpeak:   5 * time.Millisecond,
		PostStopBeforeListen:  8 * time.Millisecond,
		PostSpeechBuffer:      3 * time.Millisecond,
		SilenceTimeout:        2 * time.Second,
		RecognitionRetryDelay: 20 * time.Millisecond,
	}
}

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

func waitSignal(t *testing.T, signal CompletionSignal) error {
	t.Helper()

	select {
	case err := <-signal:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for speech request to resolve")
		return nil
	}
}

// channelMonitor flags any instant at which speaker and microphone are both
// active.
type channelMonitor struct {
	mu         sync.Mutex
	speaking   int
	listening  int
	violations int
}

func (m *channelMonitor) enter(speaking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if speaking {
		m.speaking++
	} else {
		m.listening++
	}
	if m.speaking > 0 && m.listening > 0 {
		m.violations++
	}
}

func (m *channelMonitor) leave(speaking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if speaking {
		m.speaking--
	} else {
		m.listening--
	}
}

func (m *channelMonitor) Violations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations
}

type fakeSynthesizer struct {
	monitor *channelMonitor

	mu        sync.Mutex
	duration  time.Duration
	durations map[string]time.Duration
	failWith  error
	started   []string
	spoken    []string
	current   *fakeUtterance
}

func newFakeSynthesizer(monitor *channelMonitor, duration time.Duration) *fakeSynthesizer {
	return &fakeSynthesizer{monitor: monitor, duration: duration, durations: map[string]time.Duration{}}
}

func (s *fakeSynthesizer) Speak(_ context.Context, text string, _ ...texttospeech.SpeakOption) (texttospeech.Utterance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	utterance := &fakeUtterance{text: text, synthesizer: s, done: make(chan error, 1)}
	s.started = append(s.started, text)
	s.current = utterance
	s.monitor.enter(true)

	duration := s.duration
	if d, ok := s.durations[text]; ok {
		duration = d
	}
	utterance.timer = time.AfterFunc(duration, func() { utterance.finish(nil) })
	return utterance, nil
}

func (s *fakeSynthesizer) setFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *fakeSynthesizer) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.spoken...)
}

func (s *fakeSynthesizer) Started() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.started...)
}

func (s *fakeSynthesizer) hasSpoken(text string) bool {
	for _, spoken := range s.Spoken() {
		if spoken == text {
			return true
		}
	}
	return false
}

type fakeUtterance struct {
	text        string
	synthesizer *fakeSynthesizer
	timer       *time.Timer
	once        sync.Once
	done        chan error
}

func (u *fakeUtterance) Done() <-chan error { return u.done }

func (u *fakeUtterance) Stop() error {
	u.finish(texttospeech.ErrStopped)
	return nil
}

func (u *fakeUtterance) finish(err error) {
	u.once.Do(func() {
		if u.timer != nil {
			u.timer.Stop()
		}
		u.synthesizer.monitor.leave(true)
		if err == nil {
			u.synthesizer.mu.Lock()
			u.synthesizer.spoken = append(u.synthesizer.spoken, u.text)
			u.synthesizer.mu.Unlock()
		}
		u.done <- err
		close(u.done)
	})
}

type fakeRecognizer struct {
	monitor *channelMonitor

	mu           sync.Mutex
	startErr     error
	recognitions []*fakeRecognition
	optionSets   []speechtotext.RecognitionOptions
	started      chan *fakeRecognition
}

func newFakeRecognizer(monitor *channelMonitor) *fakeRecognizer {
	return &fakeRecognizer{monitor: monitor, started: make(chan *fakeRecognition, 64)}
}

func (r *fakeRecognizer) Start(_ context.Context, opts ...speechtotext.RecognitionOption) (speechtotext.Recognition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, r.startErr
	}

	recognition := &fakeRecognition{
		recognizer: r,
		events:     make(chan speechtotext.Event, 8),
		stopped:    make(chan struct{}),
	}
	r.monitor.enter(false)
	r.recognitions = append(r.recognitions, recognition)
	r.optionSets = append(r.optionSets, speechtotext.NewRecognitionOptions(opts...))
	select {
	case r.started <- recognition:
	default:
	}
	return recognition, nil
}

func (r *fakeRecognizer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recognitions)
}

func (r *fakeRecognizer) Latest() *fakeRecognition {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.recognitions) == 0 {
		return nil
	}
	return r.recognitions[len(r.recognitions)-1]
}

// next waits for the next listening window to open.
func (r *fakeRecognizer) next(t *testing.T) *fakeRecognition {
	t.Helper()

	select {
	case recognition := <-r.started:
		return recognition
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a listening window")
		return nil
	}
}

type fakeRecognition struct {
	recognizer *fakeRecognizer
	events     chan speechtotext.Event
	stopOnce   sync.Once
	stopped    chan struct{}

	mu      sync.Mutex
	aborted bool
	closed  bool
}

func (r *fakeRecognition) Events() <-chan speechtotext.Event { return r.events }

func (r *fakeRecognition) Stop() error {
	r.end(false)
	return nil
}

func (r *fakeRecognition) Abort() error {
	r.end(true)
	return nil
}

func (r *fakeRecognition) end(aborted bool) {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.aborted = aborted
		r.mu.Unlock()
		r.recognizer.monitor.leave(false)
		close(r.stopped)
	})
}

func (r *fakeRecognition) Ended() bool {
	select {
	case <-r.stopped:
		return true
	default:
		return false
	}
}

func (r *fakeRecognition) Aborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// emit delivers event unless the window already ended.
func (r *fakeRecognition) emit(event speechtotext.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case <-r.stopped:
		return false
	default:
	}
	select {
	case r.events <- event:
		return true
	case <-r.stopped:
		return false
	}
}

func (r *fakeRecognition) final(transcript string) bool {
	return r.emit(speechtotext.Event{Transcript: transcript, IsFinal: true})
}

func (r *fakeRecognition) closeEvents() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	hold   func(event events.Event)
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	hold := r.hold
	r.mu.Unlock()

	if hold != nil {
		hold(event)
	}
}

// holdOn blocks the callback goroutine for d on the first event of kind
// and closes the returned channel when the hold begins.
func (r *eventRecorder) holdOn(kind events.Kind, d time.Duration) <-chan struct{} {
	holding := make(chan struct{})
	var once sync.Once
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = func(event events.Event) {
		if event.Kind() != kind {
			return
		}
		once.Do(func() {
			close(holding)
			time.Sleep(d)
		})
	}
	return holding
}

func (r *eventRecorder) Kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event{}, r.events...)
}

// first returns the first recorded event of kind.
func (r *eventRecorder) first(kind events.Kind) (events.Event, bool) {
	for _, event := range r.Events() {
		if event.Kind() == kind {
			return event, true
		}
	}
	return nil, false
}

func (r *eventRecorder) count(kind events.Kind) int {
	n := 0
	for _, k := range r.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

type testHarness struct {
	orchestrator *Orchestrator
	monitor      *channelMonitor
	synthesizer  *fakeSynthesizer
	recognizer   *fakeRecognizer
	events       *eventRecorder

	mu      sync.Mutex
	results []string
	errs    []error
	states  []TurnState
	ends    int
}

func newTestHarness(t *testing.T, timings Timings, opts ...OrchestratorOption) *testHarness {
	t.Helper()

	monitor := &channelMonitor{}
	h := &testHarness{
		monitor:     monitor,
		synthesizer: newFakeSynthesizer(monitor, 10*time.Millisecond),
		recognizer:  newFakeRecognizer(monitor),
		events:      &eventRecorder{},
	}

	opts = append([]OrchestratorOption{
		WithSynthesizer(h.synthesizer),
		WithRecognizer(h.recognizer),
		WithTimings(timings),
	}, opts...)
	h.orchestrator = NewOrchestrator(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	h.orchestrator.Orchestrate(ctx,
		WithRecognitionResultCallback(func(transcript string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.results = append(h.results, transcript)
			h.states = append(h.states, h.orchestrator.TurnState())
		}),
		WithRecognitionErrorCallback(func(err error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.errs = append(h.errs, err)
		}),
		WithSpeechEndCallback(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.ends++
		}),
		WithEventCallback(h.events.record),
	)
	t.Cleanup(func() {
		h.orchestrator.Close()
		cancel()
	})
	return h
}

func (h *testHarness) Results() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.results...)
}

func (h *testHarness) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error{}, h.errs...)
}

func (h *testHarness) ResultStates() []TurnState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]TurnState{}, h.states...)
}

func (h *testHarness) SpeechEnds() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ends
}
