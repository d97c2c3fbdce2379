// Package commands maps recognised transcripts to screen intents.
//
// Everything here is pure: the same transcript and [State] always produce the
// same [Intent]. Grammars never touch the turn controller or the screens.
package commands

import (
	"fmt"
	"strings"
)

type Kind int

const (
	// KindUnrecognized is a grammar miss. It is not an error.
	KindUnrecognized Kind = iota
	// KindIgnored is anything other than yes/no while a confirmation is open.
	// The caller re-listens without a penalty prompt.
	KindIgnored
	KindYes
	KindNo
	KindNext
	KindPrevious
	KindRepeat
	KindSubmit
	KindExit
	KindSelectOption
	KindBeginExam
	KindListExams
	KindHelp
	KindAnswer
	KindGoTo
	KindTimeLeft
)

var kindNames = map[Kind]string{
	KindUnrecognized: "unrecognized",
	KindIgnored:      "ignored",
	KindYes:          "yes",
	KindNo:           "no",
	KindNext:         "next",
	KindPrevious:     "previous",
	KindRepeat:       "repeat",
	KindSubmit:       "submit",
	KindExit:         "exit",
	KindSelectOption: "select_option",
	KindBeginExam:    "begin_exam",
	KindListExams:    "list_exams",
	KindHelp:         "help",
	KindAnswer:       "answer",
	KindGoTo:         "go_to",
	KindTimeLeft:     "time_left",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Intent is the result of interpreting one transcript.
type Intent struct {
	Kind Kind
	// Option is the upper-case option letter for KindSelectOption.
	Option string
	// Number is the exam or question number for KindBeginExam and KindGoTo.
	Number int
	// Text is the dictated answer for KindAnswer.
	Text string
}

func (i Intent) String() string {
	switch i.Kind {
	case KindSelectOption:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Option)
	case KindBeginExam, KindGoTo:
		return fmt.Sprintf("%s(%d)", i.Kind, i.Number)
	case KindAnswer:
		return fmt.Sprintf("%s(%q)", i.Kind, i.Text)
	default:
		return i.Kind.String()
	}
}

func (i Intent) Recognized() bool {
	return i.Kind != KindUnrecognized && i.Kind != KindIgnored
}

func SelectOption(letter string) Intent {
	return Intent{Kind: KindSelectOption, Option: strings.ToUpper(letter)}
}

// State is the dialog state a grammar needs besides the transcript.
type State struct {
	AwaitingConfirmation bool
}

// Grammar is the fixed command set of one screen.
type Grammar interface {
	Interpret(transcript string, state State) Intent
	// Keywords lists vocabulary worth boosting in the recogniser.
	Keywords() []string
}
