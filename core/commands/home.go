package commands

// HomeGrammar handles the exam catalogue screen.
type HomeGrammar struct{}

var _ Grammar = HomeGrammar{}

var homeKeywords = []keywordRule{
	{kind: KindRepeat, words: []string{"repeat", "again"}},
	{kind: KindExit, words: []string{"exit", "quit", "leave"}},
}

func (HomeGrammar) Interpret(transcript string, state State) Intent {
	normalized := Normalize(transcript)
	if state.AwaitingConfirmation {
		return interpretConfirmation(normalized)
	}

	tokens := tokenize(normalized)
	for _, phrase := range [][]string{
		{"begin", "exam"},
		{"start", "exam"},
		{"open", "exam"},
		{"select", "exam", "number"},
		{"select", "exam"},
		{"exam", "number"},
	} {
		if n, ok := numberAfter(tokens, phrase...); ok {
			return Intent{Kind: KindBeginExam, Number: n}
		}
	}

	if containsPhrase(normalized, "list exams", "list the exams", "read the exams", "available exams", "which exams") {
		return Intent{Kind: KindListExams}
	}
	if intent, ok := matchKeywords(tokens, homeKeywords); ok {
		return intent
	}
	if containsPhrase(normalized, helpPhrases...) {
		return Intent{Kind: KindHelp}
	}

	return Intent{Kind: KindUnrecognized}
}

func (HomeGrammar) Keywords() []string {
	return append([]string{"begin", "start", "exam", "number", "list", "yes", "no", "help"}, ruleWords(homeKeywords)...)
}
