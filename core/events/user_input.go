package events

const (
	// KindListeningStarted identifies the opening of a listening window.
	KindListeningStarted Kind = "user_input.listening_started"
	// KindListeningStopped identifies the closing of a listening window.
	KindListeningStopped Kind = "user_input.listening_stopped"
	// KindTranscriptInterim identifies a non-final transcript.
	KindTranscriptInterim Kind = "user_input.transcript_interim"
	// KindTranscriptFinal identifies the final transcript of the utterance.
	KindTranscriptFinal Kind = "user_input.transcript_final"
	// KindRecognitionFailed identifies a silence timeout or engine failure.
	KindRecognitionFailed Kind = "user_input.recognition_failed"
)

// ListeningStarted marks an open listening window.
type ListeningStarted struct{ Base }

// NewListeningStarted creates a listening started event.
func NewListeningStarted() ListeningStarted {
	return ListeningStarted{Base: NewBase(KindListeningStarted)}
}

// ListeningStopped marks a closed listening window.
type ListeningStopped struct {
	Base
	Reason string
}

// NewListeningStopped creates a listening stopped event.
func NewListeningStopped(reason string) ListeningStopped {
	return ListeningStopped{Base: NewBase(KindListeningStopped), Reason: reason}
}

// TranscriptInterim carries a mutable, non-final transcript.
type TranscriptInterim struct {
	Base
	Transcript string
}

// NewTranscriptInterim creates an interim transcript event.
func NewTranscriptInterim(transcript string) TranscriptInterim {
	return TranscriptInterim{Base: NewBase(KindTranscriptInterim), Transcript: transcript}
}

// TranscriptFinal carries the final transcript for the utterance.
type TranscriptFinal struct {
	Base
	Transcript string
}

// NewTranscriptFinal creates a final transcript event.
func NewTranscriptFinal(transcript string) TranscriptFinal {
	return TranscriptFinal{Base: NewBase(KindTranscriptFinal), Transcript: transcript}
}

// RecognitionFailed carries the error kind and cause of a failed window.
type RecognitionFailed struct {
	Base
	ErrorKind string
	Err       error
}

// NewRecognitionFailed creates a recognition failed event.
func NewRecognitionFailed(errorKind string, err error) RecognitionFailed {
	return RecognitionFailed{Base: NewBase(KindRecognitionFailed), ErrorKind: errorKind, Err: err}
}
