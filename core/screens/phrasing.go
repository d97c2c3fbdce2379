package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

func plural(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

// spokenDuration renders d the way it is read out, "4 minutes and 30
// seconds".
func spokenDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		return "less than a second"
	}

	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	seconds := int((d % time.Minute) / time.Second)

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 && hours == 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	return strings.Join(parts, " and ")
}

func optionLetter(index int) string {
	return string(rune('A' + index))
}

func catalogueText(catalogue []exam.Summary) string {
	switch len(catalogue) {
	case 0:
		return "There are no exams available."
	case 1:
		return fmt.Sprintf("There is 1 exam available. Exam 1: %s.", catalogue[0].Title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "There are %d exams available.", len(catalogue))
	for i, summary := range catalogue {
		fmt.Fprintf(&b, " Exam %d: %s.", i+1, summary.Title)
	}
	return b.String()
}

func questionText(index, total int, q exam.Question, answer exam.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d of %d. %s", index+1, total, strings.TrimSpace(q.Text))
	if q.MultipleChoice() {
		for i, option := range q.Options {
			fmt.Fprintf(&b, " Option %s: %s.", optionLetter(i), strings.TrimSpace(option))
		}
	}

	switch {
	case answer.Option != "":
		fmt.Fprintf(&b, " Your current answer is option %s.", answer.Option)
	case answer.Text != "":
		fmt.Fprintf(&b, " Your current answer is: %s.", answer.Text)
	case q.MultipleChoice():
		b.WriteString(" Say select option followed by a letter.")
	default:
		b.WriteString(" Say answer followed by your answer.")
	}
	return b.String()
}
