package events

const (
	// KindScreenContextChanged identifies a change of the active screen.
	KindScreenContextChanged Kind = "screen.context_changed"
	// KindTranscriptDropped identifies a transcript rejected by the context gate.
	KindTranscriptDropped Kind = "screen.transcript_dropped"
)

// ScreenContextChanged carries the new and previous screen context.
type ScreenContextChanged struct {
	Base
	Current  string
	Previous string
}

// NewScreenContextChanged creates a screen context changed event.
func NewScreenContextChanged(current, previous string) ScreenContextChanged {
	return ScreenContextChanged{Base: NewBase(KindScreenContextChanged), Current: current, Previous: previous}
}

// TranscriptDropped carries a transcript meant for a screen that is no
// longer active.
type TranscriptDropped struct {
	Base
	Transcript string
	Screen     string
	Current    string
}

// NewTranscriptDropped creates a transcript dropped event.
func NewTranscriptDropped(transcript, screen, current string) TranscriptDropped {
	return TranscriptDropped{Base: NewBase(KindTranscriptDropped), Transcript: transcript, Screen: screen, Current: current}
}
