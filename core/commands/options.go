package commands

import (
	"strings"
	"unicode/utf8"
)

// optionTailWindow is how many trailing characters of a transcript count as
// the user's latest words. Engines often prepend echoes of the prompt that
// was just spoken ("option a selected ..."), so later matches win.
const optionTailWindow = 15

// letterAliases covers the way recognisers tend to spell single letters.
var letterAliases = map[string]string{
	"ay": "a", "eh": "a",
	"bee": "b", "be": "b",
	"see": "c", "sea": "c", "cee": "c",
	"dee": "d", "de": "d",
	"ee": "e",
	"ef": "f", "eff": "f",
}

// ExtractOption finds the option letter chosen in a normalised transcript.
// choices holds the valid lower-case letters, e.g. "abcd".
//
// Search order: an "option X" phrase that ends the transcript, then any
// match inside the last [optionTailWindow] characters, then the last
// "option X" phrase anywhere.
func ExtractOption(normalized string, choices string) (string, bool) {
	if choices == "" {
		return "", false
	}
	choices = strings.ToLower(choices)

	tokens := tokenize(normalized)
	if len(tokens) == 0 {
		return "", false
	}

	type match struct {
		letter string
		start  int
	}
	phrases := []match{}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].text != "option" {
			continue
		}
		if letter, ok := letterOf(tokens[i+1].text, choices, true); ok {
			phrases = append(phrases, match{letter: letter, start: tokens[i+1].start})
		}
	}

	last := tokens[len(tokens)-1]
	if n := len(phrases); n > 0 && phrases[n-1].start == last.start {
		return strings.ToUpper(phrases[n-1].letter), true
	}

	tailStart := tailOffset(normalized, optionTailWindow)
	var best *match
	consider := func(m match) {
		if m.start < tailStart {
			return
		}
		if best == nil || m.start > best.start {
			best = &m
		}
	}
	for _, phrase := range phrases {
		consider(phrase)
	}
	for i, token := range tokens {
		isLast := i == len(tokens)-1
		letter, ok := letterOf(token.text, choices, len(tokens) == 1)
		if !ok {
			continue
		}
		// "a" is usually an article unless it closes the utterance
		if letter == "a" && !isLast {
			continue
		}
		consider(match{letter: letter, start: token.start})
	}
	if best != nil {
		return strings.ToUpper(best.letter), true
	}

	if n := len(phrases); n > 0 {
		return strings.ToUpper(phrases[n-1].letter), true
	}

	return "", false
}

func letterOf(word, choices string, allowAlias bool) (string, bool) {
	if allowAlias {
		if alias, ok := letterAliases[word]; ok {
			word = alias
		}
	}
	if utf8.RuneCountInString(word) != 1 || !strings.Contains(choices, word) {
		return "", false
	}
	return word, true
}

// tailOffset returns the byte offset where the last n runes of text start.
func tailOffset(text string, n int) int {
	count := utf8.RuneCountInString(text)
	if count <= n {
		return 0
	}
	skip := count - n
	for i := range text {
		if skip == 0 {
			return i
		}
		skip--
	}
	return len(text)
}
