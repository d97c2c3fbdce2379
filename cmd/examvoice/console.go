package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const consoleWidth = 80

type consoleStyles struct {
	screen    lipgloss.Style
	assistant lipgloss.Style
	candidate lipgloss.Style
	status    lipgloss.Style
	warning   lipgloss.Style
	title     lipgloss.Style
}

func newConsoleStyles(renderer *lipgloss.Renderer) consoleStyles {
	return consoleStyles{
		screen:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		assistant: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		candidate: renderer.NewStyle().Foreground(lipgloss.Color("14")),
		status:    renderer.NewStyle().Faint(true),
		warning:   renderer.NewStyle().Foreground(lipgloss.Color("11")),
		title:     renderer.NewStyle().Bold(true),
	}
}

// console prints a transcript of the conversation for the exam supervisor.
// It is driven by orchestrator events and may be called from any goroutine.
type console struct {
	mu      sync.Mutex
	out     io.Writer
	width   int
	verbose bool
	styles  consoleStyles
}

func newConsole(out io.Writer, verbose bool) *console {
	return &console{
		out:     out,
		width:   consoleWidth,
		verbose: verbose,
		styles:  newConsoleStyles(lipgloss.NewRenderer(out)),
	}
}

func (c *console) handleEvent(event events.Event) {
	switch e := event.(type) {
	case events.ScreenContextChanged:
		c.println(c.styles.screen.Render(fmt.Sprintf("== %s ==", e.Current)))
	case events.SpeechStarted:
		c.printEntry(c.styles.assistant, "assistant", e.Text)
	case events.TranscriptFinal:
		c.printEntry(c.styles.candidate, "candidate", e.Transcript)
	case events.TranscriptDropped:
		c.println(c.styles.warning.Render(fmt.Sprintf("dropped %q meant for %s", e.Transcript, e.Screen)))
	case events.RecognitionFailed:
		c.println(c.styles.warning.Render(fmt.Sprintf("recognition failed (%s)", e.ErrorKind)))
	case events.SpeechFailed:
		c.println(c.styles.warning.Render(fmt.Sprintf("speech failed: %v", e.Err)))
	case events.AutoSubmitTick:
		c.println(c.styles.status.Render(fmt.Sprintf("%s left", e.Remaining.Round(time.Second))))
	case events.AutoSubmitExpired:
		c.println(c.styles.warning.Render("time is up"))
	case events.TurnStateChanged:
		if c.verbose {
			c.println(c.styles.status.Render(fmt.Sprintf("%s -> %s", e.From, e.To)))
		}
	default:
		if c.verbose && event.Kind().Group() == "dialog" {
			c.println(c.styles.status.Render(string(event.Kind())))
		}
	}
}

func (c *console) submitted(submission exam.Submission) {
	c.println(c.styles.title.Render(fmt.Sprintf("submitted %s (%s), %d answers", submission.ExamID, submission.Reason, len(submission.Answers))))
}

func (c *console) printEntry(style lipgloss.Style, speaker, text string) {
	label := style.Render(speaker + ":")
	body := indent.String(wordwrap.String(text, c.width-2), 2)
	c.println(label + "\n" + body)
}

func (c *console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// printCatalogue writes the exam list the way the home screen reads it.
func printCatalogue(out io.Writer, summaries []exam.Summary) {
	styles := newConsoleStyles(lipgloss.NewRenderer(out))
	if len(summaries) == 0 {
		fmt.Fprintln(out, styles.warning.Render("no exams available"))
		return
	}

	titleWidth := 0
	for _, summary := range summaries {
		titleWidth = max(titleWidth, lipgloss.Width(summary.Title))
	}
	titleWidth = min(titleWidth, consoleWidth/2)

	column := styles.title.Width(titleWidth + 2)
	for i, summary := range summaries {
		title := summary.Title
		if lipgloss.Width(title) > titleWidth {
			title = truncate.StringWithTail(title, uint(titleWidth), "…")
		}
		limit := "untimed"
		if summary.Duration > 0 {
			limit = summary.Duration.String()
		}
		fmt.Fprintf(out, "%2d. %s%s\n", i+1, column.Render(title),
			styles.status.Render(fmt.Sprintf("%d questions, %s  [%s]", summary.QuestionCount, limit, summary.ID)))
	}
}
