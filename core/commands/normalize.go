package commands

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases the transcript, strips diacritics and punctuation
// and collapses whitespace.
func Normalize(transcript string) string {
	text := strings.ToLower(strings.TrimSpace(transcript))

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	if result, _, err := transform.String(t, text); err == nil {
		text = result
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if r == '\'' || r == '’' {
			return -1
		}
		return ' '
	}, text)

	return strings.Join(strings.Fields(text), " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

type token struct {
	text  string
	start int
	end   int
}

// tokenize splits normalised text into words with their byte offsets.
func tokenize(text string) []token {
	tokens := []token{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start >= 0 {
				tokens = append(tokens, token{text: text[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: text[start:], start: start, end: len(text)})
	}
	return tokens
}

func containsAny(tokens []token, words ...string) bool {
	for _, token := range tokens {
		for _, word := range words {
			if token.text == word {
				return true
			}
		}
	}
	return false
}

func containsPhrase(text string, phrases ...string) bool {
	padded := " " + text + " "
	for _, phrase := range phrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}
