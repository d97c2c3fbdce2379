package commands

import "strings"

// ExamGrammar handles the exam screen.
type ExamGrammar struct {
	// Choices returns the option letters of the current question, e.g.
	// "abcd", or "" for a free-text question.
	Choices func() string
}

var _ Grammar = ExamGrammar{}

var answerPrefixes = []string{"my answer is ", "the answer is ", "answer is ", "answer "}

var examKeywords = append([]keywordRule{}, navigationKeywords...)

func (g ExamGrammar) Interpret(transcript string, state State) Intent {
	normalized := Normalize(transcript)
	if state.AwaitingConfirmation {
		return interpretConfirmation(normalized)
	}
	if normalized == "" {
		return Intent{Kind: KindUnrecognized}
	}

	choices := ""
	if g.Choices != nil {
		choices = g.Choices()
	}

	if choices != "" {
		if letter, ok := ExtractOption(normalized, choices); ok {
			return SelectOption(letter)
		}
	} else {
		for _, prefix := range answerPrefixes {
			if text, ok := strings.CutPrefix(normalized, prefix); ok && text != "" {
				return Intent{Kind: KindAnswer, Text: text}
			}
		}
	}

	tokens := tokenize(normalized)
	if n, ok := numberAfter(tokens, "go", "to", "question"); ok {
		return Intent{Kind: KindGoTo, Number: n}
	}
	if n, ok := numberAfter(tokens, "question", "number"); ok {
		return Intent{Kind: KindGoTo, Number: n}
	}

	if intent, ok := matchKeywords(tokens, examKeywords); ok {
		return intent
	}

	if containsPhrase(normalized, helpPhrases...) {
		return Intent{Kind: KindHelp}
	}
	if containsPhrase(normalized, "time left", "how much time", "remaining time", "time remaining") {
		return Intent{Kind: KindTimeLeft}
	}

	return Intent{Kind: KindUnrecognized}
}

func (g ExamGrammar) Keywords() []string {
	words := append([]string{"option", "select", "choose", "pick", "answer", "question", "yes", "no"}, ruleWords(examKeywords)...)
	return append(words, "help", "time")
}
