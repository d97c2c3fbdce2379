package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/commands"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRetryPrompt            = "Sorry, I didn't understand that. Please try again."
	defaultRecognitionRetryPrompt = "Sorry, I had trouble hearing you. Please try again."
	defaultSilencePrompt          = "I didn't hear anything."
)

type DialogState int

const (
	DialogIdle DialogState = iota
	DialogAnnouncing
	DialogAwaitingCommand
	DialogProcessing
	DialogAwaitingConfirmation
)

func (s DialogState) String() string {
	switch s {
	case DialogIdle:
		return "idle"
	case DialogAnnouncing:
		return "announcing"
	case DialogAwaitingCommand:
		return "awaiting_command"
	case DialogProcessing:
		return "processing"
	case DialogAwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}

// Reply is what a screen wants done after an intent was handled.
type Reply struct {
	// Say is spoken before anything else happens.
	Say string
	// Then runs after Say was spoken, typically to navigate away.
	Then func()
	// Confirm opens a yes/no sub-dialog.
	Confirm *Confirmation
	// End ends the session once Say was spoken.
	End bool
}

// Confirmation is a yes/no sub-dialog. While it is open every other command
// is ignored.
type Confirmation struct {
	Question string
	OnYes    func(ctx context.Context) Reply
	// OnNo defaults to re-speaking the session prompt.
	OnNo func(ctx context.Context) Reply
	// Terminal marks OnYes as the session's terminal action. It runs at most
	// once per session, together with any forced terminal action, and ends
	// the session.
	Terminal bool
}

// DialogSpec configures the dialog a screen runs while it holds input
// focus.
type DialogSpec struct {
	Grammar commands.Grammar
	Handle  func(ctx context.Context, intent commands.Intent) Reply

	// Welcome is spoken when the session starts.
	Welcome string
	// Prompt returns the text re-spoken after a "no" and after silence.
	Prompt func() string

	RetryPrompt            string
	RecognitionRetryPrompt string
	SilencePrompt          string

	ListenOptions []ListenOption
}

func (s DialogSpec) withDefaults() DialogSpec {
	if s.RetryPrompt == "" {
		s.RetryPrompt = defaultRetryPrompt
	}
	if s.RecognitionRetryPrompt == "" {
		s.RecognitionRetryPrompt = defaultRecognitionRetryPrompt
	}
	if s.SilencePrompt == "" {
		s.SilencePrompt = defaultSilencePrompt
	}
	return s
}

// DialogSession runs one screen's welcome, listen, interpret, act and
// re-prompt loop. Transcripts and recognition errors are handled one at a
// time on the orchestrator's callback goroutine.
type DialogSession struct {
	id           string
	screen       ScreenContext
	spec         DialogSpec
	orchestrator *Orchestrator
	generation   uint64

	ctx    context.Context
	cancel context.CancelFunc

	processing atomic.Bool
	ended      atomic.Bool
	terminated atomic.Bool
	// forcing is set while a forced terminal action runs. That action ends
	// the session itself.
	forcing atomic.Bool

	mu           sync.Mutex
	state        DialogState
	confirmation *Confirmation
	retry        *ScheduledTask
	timers       []*AutoSubmitTimer
}

func newDialogSession(o *Orchestrator, screen ScreenContext, spec DialogSpec) *DialogSession {
	ctx, cancel := context.WithCancel(o.baseContext)
	return &DialogSession{
		id:           uuid.NewString(),
		screen:       screen,
		spec:         spec.withDefaults(),
		orchestrator: o,
		generation:   o.generation.Current(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *DialogSession) ID() string            { return s.id }
func (s *DialogSession) Screen() ScreenContext { return s.screen }
func (s *DialogSession) Generation() uint64    { return s.generation }
func (s *DialogSession) Ended() bool           { return s.ended.Load() }

// Context is cancelled when the session ends.
func (s *DialogSession) Context() context.Context { return s.ctx }

func (s *DialogSession) State() DialogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *DialogSession) AwaitingConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmation != nil
}

// End ends the session without running its terminal action.
func (s *DialogSession) End() { s.end("ended") }

// Announce speaks text outside the command loop, for example a countdown
// warning, and reopens the listening window it interrupted.
func (s *DialogSession) Announce(text string) {
	s.orchestrator.notifier.post(func() {
		if s.isStale() {
			return
		}
		if !s.processing.CompareAndSwap(false, true) {
			s.orchestrator.turns.Speak(s.ctx, text, WithRequestGeneration(s.generation))
			return
		}
		defer s.processing.Store(false)

		s.say(text)
		s.await(s.awaitingState())
	})
}

// StartAutoSubmit starts a countdown that runs action as the session's
// terminal action when it expires, discarding any open confirmation. The
// countdown is cancelled when the session ends.
func (s *DialogSession) StartAutoSubmit(duration time.Duration, action func(ctx context.Context) Reply, opts ...AutoSubmitOption) *AutoSubmitTimer {
	timer := NewAutoSubmitTimer(s.orchestrator.generation, duration, func() { s.ForceTerminal(action) }, opts...)
	timer.emit = s.orchestrator.publish

	s.mu.Lock()
	s.timers = append(s.timers, timer)
	s.mu.Unlock()

	if s.ended.Load() {
		return timer
	}
	timer.Start()
	return timer
}

// ForceTerminal runs action as the session's terminal action, pre-empting
// the turn in progress and any open confirmation. It reports false when the
// terminal action already ran or the session ended.
//
// action and its announcement run to completion even if the session ends
// meanwhile.
func (s *DialogSession) ForceTerminal(action func(ctx context.Context) Reply) bool {
	if s.ended.Load() || !s.terminated.CompareAndSwap(false, true) {
		return false
	}
	s.forcing.Store(true)

	ctx, span := tracer.Start(context.WithoutCancel(s.ctx), "auto submit", trace.WithAttributes(attribute.String("screen", s.screen.String())))
	defer span.End()

	// Anything the session queued before this point is now stale.
	generation := s.orchestrator.generation.Advance()
	if confirmation := s.takeConfirmation(nil); confirmation != nil {
		s.orchestrator.publish(events.NewConfirmationDiscarded(s.id, "terminal action forced"))
	}
	s.orchestrator.turns.AbortListening()

	reply := s.callAction(ctx, action)
	if reply.Say != "" {
		err := s.orchestrator.turns.Speak(ctx, reply.Say,
			WithPriority(PriorityImmediate),
			WithRequestGeneration(generation),
		).Wait(ctx)
		if err != nil {
			logger.Warn("failed to announce forced terminal action", "session", s.id, "error", err)
		}
	}
	if reply.Then != nil {
		reply.Then()
	}

	s.end("terminated")
	return true
}

func (s *DialogSession) begin() {
	if s.isStale() {
		s.endStale()
		return
	}
	if !s.processing.CompareAndSwap(false, true) {
		return
	}
	defer s.processing.Store(false)

	logger.Info("dialog session started", "session", s.id, "screen", s.screen.String(), "generation", s.generation)
	s.setState(DialogAnnouncing)
	if s.spec.Welcome != "" {
		s.say(s.spec.Welcome)
	}
	s.await(DialogAwaitingCommand)
}

// handleTranscript interprets a final transcript heard by one of this
// session's listening windows.
func (s *DialogSession) handleTranscript(result recognitionResult) {
	if s.ended.Load() {
		return
	}
	if result.screen != s.screen || result.generation != s.generation || s.isStale() {
		s.orchestrator.dropTranscript(result)
		return
	}
	transcript := result.transcript
	if !s.processing.CompareAndSwap(false, true) {
		logger.Debug("ignored transcript while processing", "transcript", transcript, "session", s.id)
		return
	}
	defer s.processing.Store(false)

	ctx, span := tracer.Start(s.ctx, "process transcript", trace.WithAttributes(
		attribute.String("screen", s.screen.String()),
		attribute.String("transcript", transcript),
	))
	defer span.End()

	confirmation := s.pendingConfirmation()
	s.setState(DialogProcessing)
	intent := s.spec.Grammar.Interpret(transcript, commands.State{AwaitingConfirmation: confirmation != nil})
	span.SetAttributes(attribute.String("intent", intent.String()))
	recognizedIntents.WithLabelValues(s.screen.String(), intent.Kind.String()).Inc()
	s.orchestrator.publish(events.NewIntentRecognized(s.id, transcript, intent.String()))

	if confirmation != nil {
		s.resolveConfirmation(ctx, confirmation, intent)
		return
	}
	if intent.Kind == commands.KindUnrecognized {
		s.say(s.spec.RetryPrompt)
		s.await(DialogAwaitingCommand)
		return
	}

	s.respond(ctx, s.callHandler(ctx, intent))
}

func (s *DialogSession) resolveConfirmation(ctx context.Context, confirmation *Confirmation, intent commands.Intent) {
	switch intent.Kind {
	case commands.KindYes:
		if s.takeConfirmation(confirmation) == nil {
			return
		}
		s.orchestrator.publish(events.NewConfirmationResolved(s.id, true))
		if !confirmation.Terminal {
			s.respond(ctx, s.callAction(ctx, confirmation.OnYes))
			return
		}
		if !s.terminated.CompareAndSwap(false, true) {
			return
		}
		s.cancelTimers()
		reply := s.callAction(context.WithoutCancel(ctx), confirmation.OnYes)
		reply.End = true
		s.respond(ctx, reply)
	case commands.KindNo:
		if s.takeConfirmation(confirmation) == nil {
			return
		}
		s.orchestrator.publish(events.NewConfirmationResolved(s.id, false))
		if confirmation.OnNo != nil {
			s.respond(ctx, s.callAction(ctx, confirmation.OnNo))
			return
		}
		s.respond(ctx, Reply{Say: s.prompt()})
	default:
		logger.Debug("ignored command while awaiting confirmation", "intent", intent.String(), "session", s.id)
		s.await(DialogAwaitingConfirmation)
	}
}

func (s *DialogSession) respond(ctx context.Context, reply Reply) {
	if reply.Say != "" {
		s.say(reply.Say)
	}
	if reply.Then != nil {
		reply.Then()
	}
	if s.ended.Load() {
		return
	}
	if s.isStale() {
		s.endStale()
		return
	}
	if reply.End {
		s.end("completed")
		return
	}

	if reply.Confirm != nil {
		s.openConfirmation(reply.Confirm)
		if reply.Confirm.Question != "" {
			s.say(reply.Confirm.Question)
		}
		s.await(DialogAwaitingConfirmation)
		return
	}
	s.await(DialogAwaitingCommand)
}

func (s *DialogSession) handleRecognitionError(err error) {
	if s.isStale() {
		return
	}
	if !s.processing.CompareAndSwap(false, true) {
		return
	}
	defer s.processing.Store(false)

	if KindOf(err) != ErrorKindSilenceTimeout {
		s.scheduleRetry(err)
		return
	}

	if confirmation := s.pendingConfirmation(); confirmation != nil {
		s.say(s.spec.SilencePrompt + " " + confirmation.Question)
		s.await(DialogAwaitingConfirmation)
		return
	}
	s.say(s.spec.SilencePrompt + " " + s.prompt())
	s.await(DialogAwaitingCommand)
}

// scheduleRetry speaks the recognition retry prompt and reopens listening
// after the configured delay.
func (s *DialogSession) scheduleRetry(cause error) {
	logger.Warn("recognition failed, retrying", "session", s.id, "error", cause, "delay", s.orchestrator.timings.RecognitionRetryDelay)
	task := s.orchestrator.generation.AfterFunc(s.orchestrator.timings.RecognitionRetryDelay, func() {
		s.orchestrator.notifier.post(s.retryAfterError)
	})

	s.mu.Lock()
	previous := s.retry
	s.retry = task
	s.mu.Unlock()
	previous.Cancel()
}

func (s *DialogSession) retryAfterError() {
	if s.isStale() {
		return
	}
	if !s.processing.CompareAndSwap(false, true) {
		return
	}
	defer s.processing.Store(false)

	s.say(s.spec.RecognitionRetryPrompt)
	s.await(s.awaitingState())
}

// await moves to state and opens a listening window, unless the session has
// gone stale in the meantime.
func (s *DialogSession) await(state DialogState) {
	if s.ended.Load() {
		return
	}
	if s.isStale() {
		s.endStale()
		return
	}
	s.setState(state)
	s.listen()
}

func (s *DialogSession) listen() {
	opts := make([]ListenOption, 0, len(s.spec.ListenOptions)+2)
	opts = append(opts, withListenScope(s.screen, s.generation))
	if keywords := s.spec.Grammar.Keywords(); len(keywords) > 0 {
		opts = append(opts, WithRecognitionOptions(speechtotext.WithKeywords(keywords...)))
	}
	opts = append(opts, s.spec.ListenOptions...)

	err := s.orchestrator.turns.StartListening(s.ctx, opts...)
	if s.isStale() {
		// The session ended while the window opened.
		if err == nil && !s.orchestrator.hasOtherSession(s) {
			s.orchestrator.turns.AbortListening()
		}
		return
	}
	if err == nil {
		return
	}
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrStaleRequest) || errors.Is(err, context.Canceled) {
		return
	}
	s.scheduleRetry(fmt.Errorf("failed to open listening window: %w", err))
}

func (s *DialogSession) say(text string) {
	err := s.orchestrator.turns.Speak(s.ctx, text, WithRequestGeneration(s.generation)).Wait(s.ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleRequest), errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		logger.Debug("speech skipped", "session", s.id, "text", text, "error", err)
	default:
		logger.Warn("speech failed, continuing", "session", s.id, "text", text, "error", err)
	}
}

func (s *DialogSession) prompt() string {
	if s.spec.Prompt != nil {
		if prompt := s.spec.Prompt(); prompt != "" {
			return prompt
		}
	}
	return s.spec.Welcome
}

func (s *DialogSession) callHandler(ctx context.Context, intent commands.Intent) (reply Reply) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("intent handler panicked", "session", s.id, "intent", intent.String(), "panic", fmt.Sprint(recovered))
			reply = Reply{Say: s.spec.RetryPrompt}
		}
	}()
	return s.spec.Handle(ctx, intent)
}

func (s *DialogSession) callAction(ctx context.Context, action func(ctx context.Context) Reply) (reply Reply) {
	if action == nil {
		return Reply{}
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("dialog action panicked", "session", s.id, "panic", fmt.Sprint(recovered))
			reply = Reply{Say: s.spec.RetryPrompt}
		}
	}()
	return action(ctx)
}

func (s *DialogSession) isStale() bool {
	return s.ended.Load() ||
		!s.orchestrator.gate.IsValid(s.screen) ||
		!s.orchestrator.generation.IsCurrent(s.generation)
}

func (s *DialogSession) awaitingState() DialogState {
	if s.AwaitingConfirmation() {
		return DialogAwaitingConfirmation
	}
	return DialogAwaitingCommand
}

func (s *DialogSession) setState(to DialogState) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	if from == to {
		return
	}

	logger.Debug("dialog state changed", "session", s.id, "screen", s.screen.String(), "from", from.String(), "to", to.String())
	s.orchestrator.publish(events.NewDialogStateChanged(s.id, s.screen.String(), from.String(), to.String()))
}

func (s *DialogSession) pendingConfirmation() *Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmation
}

func (s *DialogSession) openConfirmation(confirmation *Confirmation) {
	s.mu.Lock()
	s.confirmation = confirmation
	s.mu.Unlock()
	s.orchestrator.publish(events.NewConfirmationOpened(s.id, confirmation.Question))
}

// takeConfirmation clears the open confirmation if it is expected, or any
// open confirmation when expected is nil, and returns what it cleared.
func (s *DialogSession) takeConfirmation(expected *Confirmation) *Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.confirmation
	if current == nil || (expected != nil && current != expected) {
		return nil
	}
	s.confirmation = nil
	return current
}

func (s *DialogSession) cancelTimers() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	retry := s.retry
	s.retry = nil
	s.mu.Unlock()

	for _, timer := range timers {
		timer.Cancel()
	}
	retry.Cancel()
}

// endStale ends a session that lost focus, unless a forced terminal action
// is running and will end it.
func (s *DialogSession) endStale() {
	if s.forcing.Load() {
		return
	}
	s.end("context_changed")
}

func (s *DialogSession) end(reason string) {
	if !s.ended.CompareAndSwap(false, true) {
		return
	}

	s.cancelTimers()
	if confirmation := s.takeConfirmation(nil); confirmation != nil {
		s.orchestrator.publish(events.NewConfirmationDiscarded(s.id, reason))
	}
	s.setState(DialogIdle)
	if s.orchestrator.detachSession(s) {
		s.orchestrator.generation.Advance()
	}
	s.cancel()

	logger.Info("dialog session ended", "session", s.id, "screen", s.screen.String(), "reason", reason)
	s.orchestrator.publish(events.NewDialogEnded(s.id, s.screen.String(), reason))
}
