package speechtotext

import (
	"errors"
	"testing"
	"time"
)

func TestNewRecognitionOptions(t *testing.T) {
	options := NewRecognitionOptions(
		WithLanguage(""),
		WithKeywords("next", "submit"),
		WithKeywords("option"),
		WithEndpointing(-time.Second),
		WithInterimResults(true),
	)

	if options.Language != "en-US" {
		t.Fatalf("expected empty language to keep default, got %q", options.Language)
	}
	if len(options.Keywords) != 3 {
		t.Fatalf("expected keywords to accumulate, got %v", options.Keywords)
	}
	if options.Endpointing != 300*time.Millisecond {
		t.Fatalf("expected negative endpointing to be ignored, got %v", options.Endpointing)
	}
	if !options.InterimResults {
		t.Fatalf("expected interim results to be enabled")
	}
}

func TestEventString(t *testing.T) {
	if got := (Event{Transcript: "next", IsFinal: false}).String(); got != "next..." {
		t.Fatalf("expected interim marker, got %q", got)
	}
	if got := (Event{Transcript: "next", IsFinal: true}).String(); got != "next" {
		t.Fatalf("expected final transcript, got %q", got)
	}

	err := &EngineError{Kind: "network", Message: "socket closed"}
	if got := (Event{Err: err}).String(); got != "error: network: socket closed" {
		t.Fatalf("unexpected error rendering %q", got)
	}
	var engineErr *EngineError
	if !errors.As(error(err), &engineErr) {
		t.Fatalf("expected EngineError to match errors.As")
	}
}
