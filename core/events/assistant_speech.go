package events

const (
	// KindSpeechQueued identifies a speech request waiting behind another.
	KindSpeechQueued Kind = "assistant_speech.queued"
	// KindSpeechStarted identifies the start of an utterance.
	KindSpeechStarted Kind = "assistant_speech.started"
	// KindSpeechEnded identifies natural completion of an utterance.
	KindSpeechEnded Kind = "assistant_speech.ended"
	// KindSpeechInterrupted identifies an utterance stopped mid-speech.
	KindSpeechInterrupted Kind = "assistant_speech.interrupted"
	// KindSpeechDropped identifies a queued request dropped before it started.
	KindSpeechDropped Kind = "assistant_speech.dropped"
	// KindSpeechFailed identifies a text-to-speech engine failure.
	KindSpeechFailed Kind = "assistant_speech.failed"
)

// SpeechQueued carries a request appended to the speech queue.
type SpeechQueued struct {
	Base
	Text       string
	QueueDepth int
}

// NewSpeechQueued creates a speech queued event.
func NewSpeechQueued(text string, queueDepth int) SpeechQueued {
	return SpeechQueued{Base: NewBase(KindSpeechQueued), Text: text, QueueDepth: queueDepth}
}

// SpeechStarted carries the text that started playing.
type SpeechStarted struct {
	Base
	Text string
}

// NewSpeechStarted creates a speech started event.
func NewSpeechStarted(text string) SpeechStarted {
	return SpeechStarted{Base: NewBase(KindSpeechStarted), Text: text}
}

// SpeechEnded carries the text that finished playing.
type SpeechEnded struct {
	Base
	Text string
}

// NewSpeechEnded creates a speech ended event.
func NewSpeechEnded(text string) SpeechEnded {
	return SpeechEnded{Base: NewBase(KindSpeechEnded), Text: text}
}

// SpeechInterrupted carries the text that was cut off.
type SpeechInterrupted struct {
	Base
	Text string
}

// NewSpeechInterrupted creates a speech interrupted event.
func NewSpeechInterrupted(text string) SpeechInterrupted {
	return SpeechInterrupted{Base: NewBase(KindSpeechInterrupted), Text: text}
}

// SpeechDropped carries a queued request that never started.
type SpeechDropped struct {
	Base
	Text   string
	Reason string
}

// NewSpeechDropped creates a speech dropped event.
func NewSpeechDropped(text, reason string) SpeechDropped {
	return SpeechDropped{Base: NewBase(KindSpeechDropped), Text: text, Reason: reason}
}

// SpeechFailed carries a text-to-speech engine failure.
type SpeechFailed struct {
	Base
	Text string
	Err  error
}

// NewSpeechFailed creates a speech failed event.
func NewSpeechFailed(text string, err error) SpeechFailed {
	return SpeechFailed{Base: NewBase(KindSpeechFailed), Text: text, Err: err}
}
