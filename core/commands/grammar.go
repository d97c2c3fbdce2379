package commands

// interpretConfirmation accepts only an exact yes or no.
func interpretConfirmation(normalized string) Intent {
	switch normalized {
	case "yes":
		return Intent{Kind: KindYes}
	case "no":
		return Intent{Kind: KindNo}
	}
	return Intent{Kind: KindIgnored}
}

type keywordRule struct {
	kind  Kind
	words []string
}

// navigationKeywords are checked in order, the first hit wins.
var navigationKeywords = []keywordRule{
	{kind: KindNext, words: []string{"next"}},
	{kind: KindPrevious, words: []string{"previous", "back"}},
	{kind: KindRepeat, words: []string{"repeat", "read", "again"}},
	{kind: KindSubmit, words: []string{"submit", "finish"}},
	{kind: KindExit, words: []string{"exit", "quit", "leave"}},
}

var helpPhrases = []string{"help", "instructions", "what can i say", "commands"}

func matchKeywords(tokens []token, rules []keywordRule) (Intent, bool) {
	for _, rule := range rules {
		if containsAny(tokens, rule.words...) {
			return Intent{Kind: rule.kind}, true
		}
	}
	return Intent{}, false
}

func ruleWords(rules []keywordRule) []string {
	words := []string{}
	for _, rule := range rules {
		words = append(words, rule.words...)
	}
	return words
}
