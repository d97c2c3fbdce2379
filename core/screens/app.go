// Package screens implements the voice dialogs of the exam application: the
// home screen that lists the catalogue and the exam screen that walks through
// questions, records answers and submits them.
package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	orchestration "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

// App switches the orchestrator between the home and exam screens.
type App struct {
	orchestrator *orchestration.Orchestrator
	content      exam.ContentProvider
	sink         exam.SubmissionSink

	warnings    []time.Duration
	onSubmitted func(exam.Submission)
	onQuit      func()

	mu      sync.Mutex
	ctx     context.Context
	current *examRunner
}

type Option func(*App)

// WithAutoSubmitWarnings sets the remaining times at which a running exam
// announces how long is left.
func WithAutoSubmitWarnings(warnings ...time.Duration) Option {
	return func(a *App) { a.warnings = append([]time.Duration{}, warnings...) }
}

// WithSubmittedCallback is called after every stored submission.
func WithSubmittedCallback(callback func(exam.Submission)) Option {
	return func(a *App) { a.onSubmitted = callback }
}

// WithQuitCallback is called when the user confirms leaving the application.
func WithQuitCallback(callback func()) Option {
	return func(a *App) { a.onQuit = callback }
}

func New(orchestrator *orchestration.Orchestrator, content exam.ContentProvider, sink exam.SubmissionSink, opts ...Option) *App {
	a := &App{
		orchestrator: orchestrator,
		content:      content,
		sink:         sink,
		warnings:     []time.Duration{5 * time.Minute, time.Minute},
		onSubmitted:  func(exam.Submission) {},
		onQuit:       func() {},
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start shows the home screen. ctx bounds every later navigation and
// submission.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
	return a.ShowHome(ctx)
}

func (a *App) baseContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// ShowHome moves focus to the home screen and starts its dialog.
func (a *App) ShowHome(ctx context.Context) error {
	catalogue, err := a.content.ListExams(ctx)
	if err != nil {
		return fmt.Errorf("failed to list exams: %w", err)
	}

	a.setCurrent(nil)
	a.orchestrator.SetContext(orchestration.ScreenHome)
	home := &homeScreen{app: a, catalogue: catalogue}
	if _, err := a.orchestrator.StartDialogSession(orchestration.ScreenHome, home.spec()); err != nil {
		return fmt.Errorf("failed to start home dialog: %w", err)
	}

	logger.Info("home screen shown", "exams", len(catalogue))
	return nil
}

// OpenExam moves focus to the exam screen and starts the exam.
func (a *App) OpenExam(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "open exam")
	defer span.End()

	e, err := a.content.Exam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load exam %s: %w", id, err)
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("exam %s has no questions", id)
	}

	runner := newExamRunner(a, e)
	a.setCurrent(runner)
	a.orchestrator.SetContext(orchestration.ScreenExam)
	session, err := a.orchestrator.StartDialogSession(orchestration.ScreenExam, runner.spec())
	if err != nil {
		a.setCurrent(nil)
		return fmt.Errorf("failed to start exam dialog: %w", err)
	}
	runner.start(session)

	logger.Info("exam opened", "exam", e.ID, "questions", len(e.Questions), "duration", e.Duration.String())
	return nil
}

// CurrentExam returns the answers recorded so far in the running exam.
func (a *App) CurrentExam() (exam.Exam, map[int]exam.Answer, bool) {
	a.mu.Lock()
	runner := a.current
	a.mu.Unlock()
	if runner == nil {
		return exam.Exam{}, nil, false
	}
	return runner.exam, runner.answerSnapshot(), true
}

func (a *App) setCurrent(runner *examRunner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = runner
}

// navigate runs fn once the current reply has been spoken. Failures fall back
// to the home screen.
func (a *App) navigate(description string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx := a.baseContext()
		if err := fn(ctx); err != nil {
			logger.Error("navigation failed", "to", description, "error", err)
			if description == "home" {
				return
			}
			if err := a.ShowHome(ctx); err != nil {
				logger.Error("failed to return home", "error", err)
			}
		}
	}
}
