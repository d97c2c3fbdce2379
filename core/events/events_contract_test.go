package events

import (
	"errors"
	"testing"
	"time"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "turn state changed", event: NewTurnStateChanged("idle", "speaking"), expected: KindTurnStateChanged},
		{name: "speech queued", event: NewSpeechQueued("text", 1), expected: KindSpeechQueued},
		{name: "speech started", event: NewSpeechStarted("text"), expected: KindSpeechStarted},
		{name: "speech ended", event: NewSpeechEnded("text"), expected: KindSpeechEnded},
		{name: "speech interrupted", event: NewSpeechInterrupted("text"), expected: KindSpeechInterrupted},
		{name: "speech dropped", event: NewSpeechDropped("text", "stale"), expected: KindSpeechDropped},
		{name: "speech failed", event: NewSpeechFailed("text", errors.New("boom")), expected: KindSpeechFailed},
		{name: "listening started", event: NewListeningStarted(), expected: KindListeningStarted},
		{name: "listening stopped", event: NewListeningStopped("stopped"), expected: KindListeningStopped},
		{name: "transcript interim", event: NewTranscriptInterim("nex"), expected: KindTranscriptInterim},
		{name: "transcript final", event: NewTranscriptFinal("next"), expected: KindTranscriptFinal},
		{name: "recognition failed", event: NewRecognitionFailed("silence_timeout", nil), expected: KindRecognitionFailed},
		{name: "screen context changed", event: NewScreenContextChanged("exam", "home"), expected: KindScreenContextChanged},
		{name: "transcript dropped", event: NewTranscriptDropped("next", "exam", "home"), expected: KindTranscriptDropped},
		{name: "dialog state changed", event: NewDialogStateChanged("id", "exam", "idle", "announcing"), expected: KindDialogStateChanged},
		{name: "intent recognized", event: NewIntentRecognized("id", "next", "next"), expected: KindIntentRecognized},
		{name: "confirmation opened", event: NewConfirmationOpened("id", "submit?"), expected: KindConfirmationOpened},
		{name: "confirmation resolved", event: NewConfirmationResolved("id", true), expected: KindConfirmationResolved},
		{name: "confirmation discarded", event: NewConfirmationDiscarded("id", "auto_submit"), expected: KindConfirmationDiscarded},
		{name: "dialog ended", event: NewDialogEnded("id", "exam", "terminal"), expected: KindDialogEnded},
		{name: "auto submit tick", event: NewAutoSubmitTick(time.Minute), expected: KindAutoSubmitTick},
		{name: "auto submit expired", event: NewAutoSubmitExpired(), expected: KindAutoSubmitExpired},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestSpeechStartedAndEndedKindsAreDistinct(t *testing.T) {
	started := NewSpeechStarted("hello")
	ended := NewSpeechEnded("hello")

	if started.Kind() == ended.Kind() {
		t.Fatalf("expected speech started and speech ended kinds to differ, both were %q", started.Kind())
	}
}

func TestKindGroup(t *testing.T) {
	if got := NewDialogEnded("id", "exam", "terminal").Kind().Group(); got != "dialog" {
		t.Fatalf("expected group dialog, got %q", got)
	}
	if got := Kind("bare").Group(); got != "bare" {
		t.Fatalf("expected a kind without a dot to be its own group, got %q", got)
	}
}
