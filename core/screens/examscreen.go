package screens

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	orchestration "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/commands"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

const (
	examHelp = "You can say next, previous, repeat, go to question followed by a number, " +
		"select option followed by a letter, answer followed by your answer, time left, submit, or exit."
	examExitQuestion = "Do you want to leave the exam without submitting? Your answers will be lost. Say yes or no."
)

// examRunner holds the progress of one attempt at an exam.
type examRunner struct {
	app       *App
	exam      exam.Exam
	attemptID string

	mu      sync.Mutex
	index   int
	answers map[int]exam.Answer
	session *orchestration.DialogSession
	timer   *orchestration.AutoSubmitTimer
}

func newExamRunner(app *App, e exam.Exam) *examRunner {
	return &examRunner{
		app:       app,
		exam:      e,
		attemptID: uuid.NewString(),
		answers:   map[int]exam.Answer{},
	}
}

func (r *examRunner) spec() orchestration.DialogSpec {
	return orchestration.DialogSpec{
		Grammar: commands.ExamGrammar{Choices: r.choices},
		Handle:  r.handle,
		Welcome: r.welcome(),
		Prompt:  r.currentQuestionText,
	}
}

// start arms the exam countdown on session, if the exam is timed.
func (r *examRunner) start(session *orchestration.DialogSession) {
	r.mu.Lock()
	r.session = session
	r.mu.Unlock()

	if r.exam.Duration <= 0 {
		return
	}
	timer := session.StartAutoSubmit(r.exam.Duration, r.autoSubmit,
		orchestration.WithWarnings(r.app.warnings...),
		orchestration.WithTickCallback(func(remaining time.Duration) {
			session.Announce(fmt.Sprintf("%s left.", spokenDuration(remaining)))
		}),
	)

	r.mu.Lock()
	r.timer = timer
	r.mu.Unlock()
}

func (r *examRunner) welcome() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.", r.exam.Title)
	if instructions := strings.TrimSpace(r.exam.Instructions); instructions != "" {
		b.WriteString(" " + instructions)
	}
	if r.exam.Duration > 0 {
		fmt.Fprintf(&b, " You have %s.", spokenDuration(r.exam.Duration))
	}
	fmt.Fprintf(&b, " There are %s. ", plural(len(r.exam.Questions), "question"))
	b.WriteString(r.currentQuestionText())
	return b.String()
}

func (r *examRunner) choices() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exam.Questions[r.index].Choices()
}

func (r *examRunner) currentQuestionText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return questionText(r.index, len(r.exam.Questions), r.exam.Questions[r.index], r.answers[r.index])
}

func (r *examRunner) answerSnapshot() map[int]exam.Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.answers)
}

func (r *examRunner) moveTo(index int) string {
	r.mu.Lock()
	r.index = index
	r.mu.Unlock()
	return r.currentQuestionText()
}

func (r *examRunner) handle(ctx context.Context, intent commands.Intent) orchestration.Reply {
	r.mu.Lock()
	index := r.index
	question := r.exam.Questions[index]
	r.mu.Unlock()
	total := len(r.exam.Questions)

	switch intent.Kind {
	case commands.KindNext:
		if index == total-1 {
			return orchestration.Reply{Say: "This is the last question. Say submit when you are ready to finish."}
		}
		return orchestration.Reply{Say: r.moveTo(index + 1)}

	case commands.KindPrevious:
		if index == 0 {
			return orchestration.Reply{Say: "This is the first question. " + r.currentQuestionText()}
		}
		return orchestration.Reply{Say: r.moveTo(index - 1)}

	case commands.KindGoTo:
		if intent.Number < 1 || intent.Number > total {
			return orchestration.Reply{Say: fmt.Sprintf("There is no question %d. This exam has %s.", intent.Number, plural(total, "question"))}
		}
		return orchestration.Reply{Say: r.moveTo(intent.Number - 1)}

	case commands.KindRepeat:
		return orchestration.Reply{Say: r.currentQuestionText()}

	case commands.KindSelectOption:
		optionIndex, ok := question.OptionIndex(intent.Option)
		if !ok {
			return orchestration.Reply{Say: fmt.Sprintf("There is no option %s for this question.", intent.Option)}
		}
		r.record(index, exam.Answer{Option: intent.Option})
		return orchestration.Reply{Say: fmt.Sprintf("Option %s selected: %s.", intent.Option, question.Options[optionIndex])}

	case commands.KindAnswer:
		if question.MultipleChoice() {
			return orchestration.Reply{Say: "This is a multiple choice question. Say select option followed by a letter."}
		}
		r.record(index, exam.Answer{Text: intent.Text})
		return orchestration.Reply{Say: fmt.Sprintf("Answer recorded: %s.", intent.Text)}

	case commands.KindTimeLeft:
		r.mu.Lock()
		timer := r.timer
		r.mu.Unlock()
		if timer == nil {
			return orchestration.Reply{Say: "This exam has no time limit."}
		}
		return orchestration.Reply{Say: fmt.Sprintf("You have %s left.", spokenDuration(timer.Remaining()))}

	case commands.KindHelp:
		return orchestration.Reply{Say: examHelp}

	case commands.KindSubmit:
		answered := len(r.answerSnapshot())
		return orchestration.Reply{Confirm: &orchestration.Confirmation{
			Question: fmt.Sprintf("You have answered %d of %s. Do you want to submit? Say yes or no.",
				answered, plural(total, "question")),
			OnYes: func(ctx context.Context) orchestration.Reply {
				return r.submit(ctx, exam.SubmitReasonUser)
			},
			Terminal: true,
		}}

	case commands.KindExit:
		return orchestration.Reply{Confirm: &orchestration.Confirmation{
			Question: examExitQuestion,
			OnYes: func(context.Context) orchestration.Reply {
				return orchestration.Reply{
					Say:  "Leaving the exam.",
					Then: r.app.navigate("home", r.app.ShowHome),
				}
			},
			Terminal: true,
		}}

	default:
		return orchestration.Reply{Say: "That is not available during the exam. Say help to hear the commands."}
	}
}

func (r *examRunner) record(index int, answer exam.Answer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers[index] = answer
}

func (r *examRunner) autoSubmit(ctx context.Context) orchestration.Reply {
	reply := r.submit(ctx, exam.SubmitReasonTimeout)
	reply.Say = "Time is up. " + reply.Say
	return reply
}

func (r *examRunner) submit(ctx context.Context, reason exam.SubmitReason) orchestration.Reply {
	ctx, span := tracer.Start(ctx, "submit exam")
	defer span.End()

	submission := exam.Submission{
		ExamID:      r.exam.ID,
		SessionID:   r.attemptID,
		Answers:     r.answerSnapshot(),
		Reason:      reason,
		SubmittedAt: time.Now().UTC(),
	}
	span.SetAttributes(
		attribute.String("exam", submission.ExamID),
		attribute.String("reason", string(reason)),
		attribute.Int("answers", len(submission.Answers)),
	)

	home := r.app.navigate("home", r.app.ShowHome)
	if err := r.app.sink.Submit(ctx, submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("failed to submit exam", "exam", submission.ExamID, "attempt", submission.SessionID, "error", err)
		return orchestration.Reply{
			Say:  "Sorry, your answers could not be submitted. Please tell the exam supervisor.",
			Then: home,
		}
	}

	logger.Info("exam submitted", "exam", submission.ExamID, "attempt", submission.SessionID,
		"reason", string(reason), "answers", len(submission.Answers))
	r.app.onSubmitted(submission)
	return orchestration.Reply{
		Say: fmt.Sprintf("Your exam has been submitted. You answered %d of %s.",
			len(submission.Answers), plural(len(r.exam.Questions), "question")),
		Then: home,
	}
}
