package screens

import (
	"testing"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

func TestSpokenDuration(t *testing.T) {
	cases := []struct {
		duration time.Duration
		want     string
	}{
		{0, "less than a second"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute and 30 seconds"},
		{5 * time.Minute, "5 minutes"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1 hour and 2 minutes"},
	}
	for _, tc := range cases {
		if got := spokenDuration(tc.duration); got != tc.want {
			t.Fatalf("expected %v to read %q, got %q", tc.duration, tc.want, got)
		}
	}
}

func TestQuestionText(t *testing.T) {
	q := exam.Question{Text: "Pick a colour.", Options: []string{"Red", "Blue"}}

	got := questionText(0, 3, q, exam.Answer{})
	want := "Question 1 of 3. Pick a colour. Option A: Red. Option B: Blue. Say select option followed by a letter."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = questionText(0, 3, q, exam.Answer{Option: "B"})
	want = "Question 1 of 3. Pick a colour. Option A: Red. Option B: Blue. Your current answer is option B."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCatalogueText(t *testing.T) {
	if got := catalogueText(nil); got != "There are no exams available." {
		t.Fatalf("unexpected empty catalogue text %q", got)
	}
	if got := catalogueText([]exam.Summary{{Title: "Biology"}}); got != "There is 1 exam available. Exam 1: Biology." {
		t.Fatalf("unexpected single catalogue text %q", got)
	}
}
