package speechtotext

import (
	"context"
	"fmt"
)

// Recognizer opens listening windows on a speech-to-text engine.
type Recognizer interface {
	// Start opens one recognition cycle. The cycle, and the subscription to
	// its events, ends when Stop or Abort is called or the engine gives up.
	Start(ctx context.Context, opts ...RecognitionOption) (Recognition, error)
}

// Recognition is a single listening cycle.
type Recognition interface {
	// Events streams recognition output. It is closed when the cycle ends.
	Events() <-chan Event
	// Stop ends the cycle and lets the engine flush a pending final result.
	Stop() error
	// Abort ends the cycle immediately and discards pending results.
	Abort() error
}

// Event is either a transcript or an engine failure.
type Event struct {
	Transcript string
	IsFinal    bool

	// Err is set when the engine failed, the other fields are then unset.
	Err error
}

func (e Event) String() string {
	if e.Err != nil {
		return fmt.Sprintf("error: %v", e.Err)
	}
	if e.IsFinal {
		return e.Transcript
	}
	return e.Transcript + "..."
}

// EngineError is an engine-level failure reported on [Recognition.Events].
type EngineError struct {
	Kind    string
	Message string
}

func (e *EngineError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return e.Kind + ": " + e.Message
}
