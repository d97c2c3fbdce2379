package orchestration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

// Orchestrator is the voice front of an application: it owns the audio turn,
// the screen holding input focus and the dialog session of that screen.
type Orchestrator struct {
	synthesizer        texttospeech.Synthesizer
	recognizer         speechtotext.Recognizer
	timings            Timings
	speakOptions       []texttospeech.SpeakOption
	recognitionOptions []speechtotext.RecognitionOption

	generation *Generation
	gate       *ScreenContextGate
	turns      *TurnController
	notifier   *notifier

	mu      sync.Mutex
	session *DialogSession

	startOnce          sync.Once
	closeOnce          sync.Once
	closed             atomic.Bool
	closeCh            chan struct{}
	orchestrateOptions OrchestrateOptions
	emit               eventEmitter
	baseContext        context.Context
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	generation := &Generation{}
	o := &Orchestrator{
		timings:     DefaultTimings(),
		generation:  generation,
		gate:        NewScreenContextGate(generation),
		notifier:    newNotifier(),
		closeCh:     make(chan struct{}),
		emit:        noopEventEmitter,
		baseContext: context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.turns = newTurnController(turnControllerConfig{
		synthesizer:        o.synthesizer,
		recognizer:         o.recognizer,
		timings:            o.timings,
		generation:         o.generation,
		speakOptions:       o.speakOptions,
		recognitionOptions: o.recognitionOptions,
	})
	o.gate.Subscribe(o.handleContextChange)

	return o
}

// Orchestrate starts the turn controller and callback dispatch. ctx bounds
// the lifetime of every engine call; the orchestrator closes itself when it
// is done.
//
// Call Orchestrate once, before starting dialog sessions. Later calls are
// ignored.
func (o *Orchestrator) Orchestrate(ctx context.Context, opts ...OrchestrateOption) {
	if o.closed.Load() {
		logger.Warn("orchestrator already closed, skipping Orchestrate")
		return
	}

	o.startOnce.Do(func() {
		o.orchestrateOptions = OrchestrateOptions{}
		for _, opt := range opts {
			opt(&o.orchestrateOptions)
		}
		o.emit = newCallbackEventEmitter(o.orchestrateOptions)
		o.baseContext = ctx

		o.notifier.start()
		o.turns.start(ctx, turnCallbacks{
			onStateChanged: o.orchestrateOptions.onTurnStateChanged,
			onSpeechEnd:    o.handleSpeechEnd,
			onResult:       o.handleRecognitionResult,
			onError:        o.handleRecognitionError,
			emit:           o.emit,
		}, o.notifier.post)

		go func() {
			select {
			case <-ctx.Done():
				o.Close()
			case <-o.closeCh:
			}
		}()
	})
}

// Close ends the dialog session, silences the audio channel and stops all
// goroutines. Speech requests still pending resolve with [ErrClosed].
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.closed.Store(true)
		if session := o.Session(); session != nil {
			session.end("closed")
		}
		o.turns.close()
		o.notifier.close()
		close(o.closeCh)
	})
}

// SetContext hands input focus to screen. A change ends the dialog session
// of any other screen and invalidates everything scheduled for it. Setting
// the current screen again changes nothing.
func (o *Orchestrator) SetContext(screen ScreenContext) { o.gate.SetContext(screen) }

func (o *Orchestrator) Context() ScreenContext { return o.gate.Context() }

// IsValidContext reports whether screen holds input focus.
func (o *Orchestrator) IsValidContext(screen ScreenContext) bool { return o.gate.IsValid(screen) }

func (o *Orchestrator) TurnState() TurnState { return o.turns.State() }

func (o *Orchestrator) Generation() *Generation { return o.generation }

func (o *Orchestrator) Speak(ctx context.Context, text string, opts ...SpeakOption) CompletionSignal {
	return o.turns.Speak(ctx, text, opts...)
}

// StartListening opens a listening window for the screen holding focus. Its
// final transcript is dropped if the screen loses focus first.
func (o *Orchestrator) StartListening(ctx context.Context, opts ...ListenOption) error {
	scoped := append([]ListenOption{withListenScope(o.gate.Context(), o.generation.Current())}, opts...)
	return o.turns.StartListening(ctx, scoped...)
}

func (o *Orchestrator) StopListening()  { o.turns.StopListening() }
func (o *Orchestrator) AbortListening() { o.turns.AbortListening() }
func (o *Orchestrator) StopSpeaking()   { o.turns.StopSpeaking() }

// StartDialogSession starts screen's dialog, replacing the current session.
// screen must hold input focus and cannot be ScreenNone.
func (o *Orchestrator) StartDialogSession(screen ScreenContext, spec DialogSpec) (*DialogSession, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	if spec.Grammar == nil || spec.Handle == nil {
		return nil, ErrInvalidDialogSpec
	}
	if screen == ScreenNone || !o.gate.IsValid(screen) {
		return nil, fmt.Errorf("failed to start %s dialog while %s holds focus: %w", screen, o.gate.Context(), ErrContextMismatch)
	}

	if previous := o.Session(); previous != nil {
		previous.end("replaced")
	}

	session := newDialogSession(o, screen, spec)
	o.mu.Lock()
	o.session = session
	o.mu.Unlock()

	o.notifier.post(session.begin)
	return session, nil
}

// EndDialogSession ends the current session and closes its listening window.
func (o *Orchestrator) EndDialogSession() {
	if session := o.Session(); session != nil {
		session.end("ended")
	}
	if o.turns.started.Load() {
		o.turns.AbortListening()
	}
}

// Session returns the current dialog session or nil.
func (o *Orchestrator) Session() *DialogSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

func (o *Orchestrator) detachSession(session *DialogSession) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != session {
		return false
	}
	o.session = nil
	return true
}

func (o *Orchestrator) hasOtherSession(session *DialogSession) bool {
	current := o.Session()
	return current != nil && current != session
}

// publish emits event on the callback goroutine.
func (o *Orchestrator) publish(event events.Event) {
	o.notifier.post(func() { o.emit(event) })
}

func (o *Orchestrator) handleContextChange(current, previous ScreenContext) {
	if current == previous {
		return
	}
	o.publish(events.NewScreenContextChanged(current.String(), previous.String()))

	if session := o.Session(); session != nil && session.screen != current {
		session.end("context_changed")
	}
	if o.turns.started.Load() {
		o.turns.AbortListening()
	}
}

func (o *Orchestrator) handleRecognitionResult(result recognitionResult) {
	if !o.generation.IsCurrent(result.generation) || !o.gate.IsValid(result.screen) {
		o.dropTranscript(result)
		return
	}
	if callback := o.orchestrateOptions.onRecognitionResult; callback != nil {
		callback(result.transcript)
	}
	if session := o.Session(); session != nil {
		session.handleTranscript(result)
	}
}

func (o *Orchestrator) dropTranscript(result recognitionResult) {
	current := o.gate.Context()
	logger.Debug("dropped transcript for inactive screen",
		"transcript", result.transcript,
		"screen", result.screen.String(),
		"current", current.String(),
		"generation", result.generation,
	)
	droppedTranscripts.Inc()
	o.publish(events.NewTranscriptDropped(result.transcript, result.screen.String(), current.String()))
}

func (o *Orchestrator) handleRecognitionError(err error) {
	if callback := o.orchestrateOptions.onRecognitionError; callback != nil {
		callback(err)
	}
	if session := o.Session(); session != nil {
		session.handleRecognitionError(err)
	}
}

func (o *Orchestrator) handleSpeechEnd() {
	if callback := o.orchestrateOptions.onSpeechEnd; callback != nil {
		callback()
	}
}
