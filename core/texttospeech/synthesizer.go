package texttospeech

import (
	"context"
	"errors"
)

// ErrStopped is delivered on [Utterance.Done] when the utterance was stopped
// before it finished.
var ErrStopped = errors.New("utterance stopped")

// Synthesizer turns text into audible speech.
type Synthesizer interface {
	// Speak starts speaking text. The returned [Utterance] owns the lifetime
	// of this single request.
	Speak(ctx context.Context, text string, opts ...SpeakOption) (Utterance, error)
}

// Utterance is a single in-flight speech request.
type Utterance interface {
	// Done delivers exactly one value, nil once the audio finished playing,
	// [ErrStopped] after Stop, or the engine error, and is then closed.
	Done() <-chan error
	// Stop interrupts the utterance mid-speech. Repeated calls are ignored.
	Stop() error
}
