package orchestration

import (
	"errors"
	"fmt"
)

var (
	ErrSilenceTimeout    = errors.New("no speech recognized before the silence timeout")
	ErrRecognitionEnded  = errors.New("recognition ended without a final transcript")
	ErrSpeechInterrupted = errors.New("speech interrupted")
	ErrStaleRequest      = errors.New("request belongs to a previous screen")
	ErrClosed            = errors.New("orchestrator closed")
	ErrNoSynthesizer     = errors.New("no synthesizer configured")
	ErrNoRecognizer      = errors.New("no recognizer configured")
	ErrContextMismatch   = errors.New("screen does not hold input focus")
	ErrInvalidDialogSpec = errors.New("dialog spec requires a grammar and a handler")
)

// ErrorKind classifies failures surfaced through the recognition error hook
// and speech completion signals.
type ErrorKind string

const (
	ErrorKindSilenceTimeout ErrorKind = "silence_timeout"
	ErrorKindRecognition    ErrorKind = "recognition_error"
	ErrorKindSpeech         ErrorKind = "speech_error"
)

// TurnError wraps a turn failure with its kind.
type TurnError struct {
	Kind ErrorKind
	Err  error
}

func (e *TurnError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first [TurnError] in err's chain, or an empty
// kind.
func KindOf(err error) ErrorKind {
	var turnErr *TurnError
	if errors.As(err, &turnErr) {
		return turnErr.Kind
	}
	return ""
}
