package commands

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	testCases := []struct{ input, expected string }{
		{input: "  Next Question!  ", expected: "next question"},
		{input: "Option A. Selected", expected: "option a selected"},
		{input: "What's   the time?", expected: "whats the time"},
		{input: "Séléctionner l'option", expected: "selectionner loption"},
		{input: "", expected: ""},
	}
	for _, testCase := range testCases {
		if got := Normalize(testCase.input); got != testCase.expected {
			t.Fatalf("expected Normalize(%q) = %q, got %q", testCase.input, testCase.expected, got)
		}
	}
}

func TestTokenizeKeepsOffsets(t *testing.T) {
	got := tokenize("begin exam 2")
	expected := []token{
		{text: "begin", start: 0, end: 5},
		{text: "exam", start: 6, end: 10},
		{text: "2", start: 11, end: 12},
	}
	if diff := cmp.Diff(expected, got, cmp.AllowUnexported(token{})); diff != "" {
		t.Fatalf("unexpected tokens (-want +got):\n%s", diff)
	}
}

func TestParseNumber(t *testing.T) {
	for word, expected := range map[string]int{"3": 3, "three": 3, "third": 3, "twenty": 20} {
		n, ok := parseNumber(word)
		if !ok || n != expected {
			t.Fatalf("expected %q to parse as %d, got %d (%t)", word, expected, n, ok)
		}
	}
	if _, ok := parseNumber("many"); ok {
		t.Fatalf("expected unknown word not to parse")
	}
	if _, ok := parseNumber("-1"); ok {
		t.Fatalf("expected negative numbers to be rejected")
	}
}
