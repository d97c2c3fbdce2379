package orchestration

import (
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

// Timings are the delays the turn controller inserts around audio channel
// hand-offs.
type Timings struct {
	// PostStopBeforeSpeak separates the end of a listening window from the
	// start of speech.
	PostStopBeforeSpeak time.Duration
	// PostStopBeforeListen separates the end of speech from the start of a
	// listening window.
	PostStopBeforeListen time.Duration
	// PostSpeechBuffer is waited after speech finished naturally.
	PostSpeechBuffer time.Duration
	// SilenceTimeout bounds a listening window without a final transcript.
	SilenceTimeout time.Duration
	// RecognitionRetryDelay is waited before a dialog session retries after
	// a recognition error.
	RecognitionRetryDelay time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		PostStopBeforeSpeak:   500 * time.Millisecond,
		PostStopBeforeListen:  800 * time.Millisecond,
		PostSpeechBuffer:      300 * time.Millisecond,
		SilenceTimeout:        10 * time.Second,
		RecognitionRetryDelay: 1500 * time.Millisecond,
	}
}

type OrchestratorOption func(*Orchestrator)

func WithSynthesizer(synthesizer texttospeech.Synthesizer) OrchestratorOption {
	return func(o *Orchestrator) { o.synthesizer = synthesizer }
}

func WithRecognizer(recognizer speechtotext.Recognizer) OrchestratorOption {
	return func(o *Orchestrator) { o.recognizer = recognizer }
}

// WithTimings overrides the default hand-off delays. Zero fields keep their
// default.
func WithTimings(timings Timings) OrchestratorOption {
	return func(o *Orchestrator) {
		defaults := o.timings
		if timings.PostStopBeforeSpeak > 0 {
			defaults.PostStopBeforeSpeak = timings.PostStopBeforeSpeak
		}
		if timings.PostStopBeforeListen > 0 {
			defaults.PostStopBeforeListen = timings.PostStopBeforeListen
		}
		if timings.PostSpeechBuffer > 0 {
			defaults.PostSpeechBuffer = timings.PostSpeechBuffer
		}
		if timings.SilenceTimeout > 0 {
			defaults.SilenceTimeout = timings.SilenceTimeout
		}
		if timings.RecognitionRetryDelay > 0 {
			defaults.RecognitionRetryDelay = timings.RecognitionRetryDelay
		}
		o.timings = defaults
	}
}

// WithDefaultSpeakOptions sets synthesizer options applied to every request
// before its own options.
func WithDefaultSpeakOptions(opts ...texttospeech.SpeakOption) OrchestratorOption {
	return func(o *Orchestrator) { o.speakOptions = append(o.speakOptions, opts...) }
}

// WithDefaultRecognitionOptions sets recognizer options applied to every
// listening window before its own options.
func WithDefaultRecognitionOptions(opts ...speechtotext.RecognitionOption) OrchestratorOption {
	return func(o *Orchestrator) { o.recognitionOptions = append(o.recognitionOptions, opts...) }
}

// WithInitialContext sets the screen holding input focus before any call to
// [Orchestrator.SetContext].
func WithInitialContext(screen ScreenContext) OrchestratorOption {
	return func(o *Orchestrator) { o.gate.current = screen }
}

type OrchestrateOptions struct {
	onRecognitionResult  func(transcript string)
	onRecognitionError   func(err error)
	onInterimRecognition func(transcript string)
	onSpeechEnd          func()
	onTurnStateChanged   func(from, to TurnState)
	onContextChanged     func(current, previous ScreenContext)
	onDialogEnded        func(screen ScreenContext, reason string)
	onEvent              func(event events.Event)
}

type OrchestrateOption func(*OrchestrateOptions)

// WithRecognitionResultCallback registers a callback for the first final
// transcript of every listening window. The turn state is already idle when
// it runs.
func WithRecognitionResultCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onRecognitionResult = callback
	}
}

// WithRecognitionErrorCallback registers a callback for listening windows
// that ended without a transcript. Use [KindOf] to tell a silence timeout
// from an engine failure.
func WithRecognitionErrorCallback(callback func(err error)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onRecognitionError = callback
	}
}

func WithInterimRecognitionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onInterimRecognition = callback
	}
}

// WithSpeechEndCallback registers a callback for the moment the speech queue
// drained and the assistant went quiet.
func WithSpeechEndCallback(callback func()) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onSpeechEnd = callback
	}
}

func WithTurnStateChangedCallback(callback func(from, to TurnState)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onTurnStateChanged = callback
	}
}

func WithContextChangedCallback(callback func(current, previous ScreenContext)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onContextChanged = callback
	}
}

func WithDialogEndedCallback(callback func(screen ScreenContext, reason string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onDialogEnded = callback
	}
}

// WithEventCallback registers a callback receiving every emitted event, in
// emission order.
func WithEventCallback(callback func(event events.Event)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onEvent = callback
	}
}
