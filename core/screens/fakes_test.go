package screens

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	orchestration "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

type fakeSynthesizer struct {
	mu     sync.Mutex
	spoken []string
}

func (s *fakeSynthesizer) Speak(_ context.Context, text string, _ ...texttospeech.SpeakOption) (texttospeech.Utterance, error) {
	u := &fakeUtterance{done: make(chan error, 1)}
	u.timer = time.AfterFunc(time.Millisecond, func() {
		u.once.Do(func() {
			s.mu.Lock()
			s.spoken = append(s.spoken, text)
			s.mu.Unlock()
			u.done <- nil
			close(u.done)
		})
	})
	return u, nil
}

func (s *fakeSynthesizer) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.spoken...)
}

func (s *fakeSynthesizer) spokeContaining(fragment string) bool {
	for _, text := range s.Spoken() {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}

type fakeUtterance struct {
	timer *time.Timer
	once  sync.Once
	done  chan error
}

func (u *fakeUtterance) Done() <-chan error { return u.done }

func (u *fakeUtterance) Stop() error {
	u.once.Do(func() {
		u.timer.Stop()
		u.done <- texttospeech.ErrStopped
		close(u.done)
	})
	return nil
}

type fakeRecognizer struct {
	started chan *fakeRecognition
}

func (r *fakeRecognizer) Start(context.Context, ...speechtotext.RecognitionOption) (speechtotext.Recognition, error) {
	recognition := &fakeRecognition{events: make(chan speechtotext.Event, 1), ended: make(chan struct{})}
	select {
	case r.started <- recognition:
	default:
	}
	return recognition, nil
}

type fakeRecognition struct {
	events chan speechtotext.Event
	once   sync.Once
	ended  chan struct{}
}

func (r *fakeRecognition) Events() <-chan speechtotext.Event { return r.events }
func (r *fakeRecognition) Stop() error                       { r.end(); return nil }
func (r *fakeRecognition) Abort() error                      { r.end(); return nil }
func (r *fakeRecognition) end()                              { r.once.Do(func() { close(r.ended) }) }

type testApp struct {
	app          *App
	orchestrator *orchestration.Orchestrator
	synthesizer  *fakeSynthesizer
	recognizer   *fakeRecognizer
	sink         *exam.MemorySink
}

func testCatalogue() *exam.MemoryProvider {
	return exam.NewMemoryProvider(
		exam.Exam{
			ID:    "bio",
			Title: "Biology",
			Questions: []exam.Question{
				{Text: "Which organelle produces energy?", Options: []string{"Nucleus", "Mitochondria", "Ribosome"}},
				{Text: "Describe photosynthesis."},
			},
		},
		exam.Exam{
			ID:           "chem",
			Title:        "Chemistry",
			Instructions: "Answer both questions.",
			Duration:     20 * time.Minute,
			Questions: []exam.Question{
				{Text: "What is H2O?", Options: []string{"Salt", "Water"}},
				{Text: "What is NaCl?", Options: []string{"Salt", "Water"}},
			},
		},
	)
}

func newTestApp(t *testing.T, content exam.ContentProvider, opts ...Option) *testApp {
	t.Helper()

	ta := &testApp{
		synthesizer: &fakeSynthesizer{},
		recognizer:  &fakeRecognizer{started: make(chan *fakeRecognition, 64)},
		sink:        &exam.MemorySink{},
	}
	ta.orchestrator = orchestration.NewOrchestrator(
		orchestration.WithSynthesizer(ta.synthesizer),
		orchestration.WithRecognizer(ta.recognizer),
		orchestration.WithTimings(orchestration.Timings{
			PostStopBeforeSpeak:   2 * time.Millisecond,
			PostStopBeforeListen:  2 * time.Millisecond,
			PostSpeechBuffer:      time.Millisecond,
			SilenceTimeout:        5 * time.Second,
			RecognitionRetryDelay: 10 * time.Millisecond,
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	ta.orchestrator.Orchestrate(ctx)
	ta.app = New(ta.orchestrator, content, ta.sink, opts...)
	t.Cleanup(func() {
		ta.orchestrator.Close()
		cancel()
	})
	return ta
}

// say waits for the next listening window and answers it with transcript.
func (ta *testApp) say(t *testing.T, transcript string) {
	t.Helper()

	select {
	case recognition := <-ta.recognizer.started:
		select {
		case recognition.events <- speechtotext.Event{Transcript: transcript, IsFinal: true}:
		case <-recognition.ended:
			t.Fatalf("listening window closed before %q could be said", transcript)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a listening window to say %q", transcript)
	}
}

// awaitListening waits for the next listening window without answering it.
func (ta *testApp) awaitListening(t *testing.T) {
	t.Helper()

	select {
	case <-ta.recognizer.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a listening window")
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
