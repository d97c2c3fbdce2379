package orchestration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScreenContextGateNotifiesOnChange(t *testing.T) {
	generation := &Generation{}
	gate := NewScreenContextGate(generation)

	type change struct{ current, previous ScreenContext }
	var changes []change
	gate.Subscribe(func(current, previous ScreenContext) {
		if gate.Context() != current {
			t.Fatalf("expected the change to be visible to subscribers")
		}
		changes = append(changes, change{current, previous})
	})

	if !gate.SetContext(ScreenHome) {
		t.Fatalf("expected the first home context to be a change")
	}
	if gate.SetContext(ScreenHome) {
		t.Fatalf("expected setting home again not to be a change")
	}
	gate.SetContext(ScreenExam)

	want := []change{{ScreenHome, ScreenNone}, {ScreenHome, ScreenHome}, {ScreenExam, ScreenHome}}
	if diff := cmp.Diff(want, changes, cmp.AllowUnexported(change{})); diff != "" {
		t.Fatalf("unexpected changes (-want +got):\n%s", diff)
	}
	if got := generation.Current(); got != 2 {
		t.Fatalf("expected one generation per change, got %d", got)
	}
}

func TestScreenContextGateIsValid(t *testing.T) {
	gate := NewScreenContextGate(nil)

	if !gate.IsValid(ScreenNone) {
		t.Fatalf("expected none to be the current context before one is set")
	}
	if gate.IsValid(ScreenExam) {
		t.Fatalf("expected the exam screen not to hold focus before a context is set")
	}
	gate.SetContext(ScreenExam)
	if gate.IsValid(ScreenNone) {
		t.Fatalf("expected none to be invalid once a screen holds focus")
	}
	if !gate.IsValid(ScreenExam) {
		t.Fatalf("expected the exam screen to hold focus")
	}
	if gate.IsValid(ScreenHome) {
		t.Fatalf("expected the home screen not to hold focus")
	}
}

func TestScreenContextString(t *testing.T) {
	if got := ScreenNone.String(); got != "none" {
		t.Fatalf("expected none, got %q", got)
	}
	if got := ScreenExam.String(); got != "exam" {
		t.Fatalf("expected exam, got %q", got)
	}
}
