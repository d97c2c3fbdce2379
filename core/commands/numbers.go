package commands

import "strconv"

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	// common mishearings
	"won": 1, "to": 2, "too": 2, "for": 4, "ate": 8,
}

// parseNumber reads a digit string or a spelled-out number.
func parseNumber(word string) (int, bool) {
	if n, err := strconv.Atoi(word); err == nil && n >= 0 {
		return n, true
	}
	n, ok := numberWords[word]
	return n, ok
}

// numberAfter finds the first number following the phrase made of words.
// Filler words between the phrase and the number are not allowed.
func numberAfter(tokens []token, words ...string) (int, bool) {
	for i := 0; i+len(words) < len(tokens); i++ {
		matched := true
		for j, word := range words {
			if tokens[i+j].text != word {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if n, ok := parseNumber(tokens[i+len(words)].text); ok {
			return n, true
		}
	}
	return 0, false
}
