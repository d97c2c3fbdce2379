package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SpeechPriority decides what happens to a request arriving while the
// assistant is already speaking.
type SpeechPriority int

const (
	// PriorityNormal waits behind the current utterance and earlier requests.
	PriorityNormal SpeechPriority = iota
	// PriorityImmediate interrupts the current utterance and is spoken next.
	// Requests already waiting stay queued behind it.
	PriorityImmediate
)

// CompletionSignal delivers the outcome of one speech request and is then
// closed: nil once the text was spoken, otherwise the reason it was not.
type CompletionSignal <-chan error

// Wait blocks until the request resolved or ctx is done.
func (s CompletionSignal) Wait(ctx context.Context) error {
	select {
	case err := <-s:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type SpeakOption func(*speechRequest)

func WithPriority(priority SpeechPriority) SpeakOption {
	return func(r *speechRequest) { r.priority = priority }
}

func WithSpeechOptions(opts ...texttospeech.SpeakOption) SpeakOption {
	return func(r *speechRequest) { r.options = append(r.options, opts...) }
}

// WithRequestGeneration binds the request to generation instead of the one
// current when it was submitted.
func WithRequestGeneration(generation uint64) SpeakOption {
	return func(r *speechRequest) { r.generation = generation }
}

type ListenOptions struct {
	SilenceTimeout time.Duration
	Recognition    []speechtotext.RecognitionOption

	// The final transcript of the window belongs to this screen and
	// generation.
	screen     ScreenContext
	generation uint64
}

type ListenOption func(*ListenOptions)

func WithSilenceTimeout(timeout time.Duration) ListenOption {
	return func(o *ListenOptions) { o.SilenceTimeout = timeout }
}

func WithRecognitionOptions(opts ...speechtotext.RecognitionOption) ListenOption {
	return func(o *ListenOptions) { o.Recognition = append(o.Recognition, opts...) }
}

func withListenScope(screen ScreenContext, generation uint64) ListenOption {
	return func(o *ListenOptions) {
		o.screen = screen
		o.generation = generation
	}
}

type speechRequest struct {
	ctx        context.Context
	text       string
	priority   SpeechPriority
	options    []texttospeech.SpeakOption
	generation uint64
	done       chan error
	resolved   bool
}

func (r *speechRequest) resolve(err error) {
	if r.resolved {
		return
	}
	r.resolved = true
	r.done <- err
	close(r.done)
}

type activeSpeech struct {
	request   *speechRequest
	utterance texttospeech.Utterance
	span      trace.Span
}

type activeListening struct {
	recognition speechtotext.Recognition
	events      <-chan speechtotext.Event
	silence     *time.Timer
	screen      ScreenContext
	generation  uint64
	startedAt   time.Time
	span        trace.Span
}

type turnCallbacks struct {
	onStateChanged func(from, to TurnState)
	onSpeechEnd    func()
	onResult       func(result recognitionResult)
	onError        func(err error)
	emit           eventEmitter
}

// recognitionResult is a final transcript with the screen and generation of
// the listening window that heard it.
type recognitionResult struct {
	transcript string
	screen     ScreenContext
	generation uint64
}

type speakCommand struct{ request *speechRequest }

type listenCommand struct {
	ctx     context.Context
	options ListenOptions
	reply   chan error
}

type stopListeningCommand struct {
	abort  bool
	reason string
	reply  chan struct{}
}

type stopSpeakingCommand struct{ reply chan struct{} }

// TurnController owns the audio channel. A single goroutine applies every
// command in arrival order, so the controller is speaking, listening or idle
// and never two of them at once.
type TurnController struct {
	synthesizer        texttospeech.Synthesizer
	recognizer         speechtotext.Recognizer
	timings            Timings
	generation         *Generation
	speakOptions       []texttospeech.SpeakOption
	recognitionOptions []speechtotext.RecognitionOption

	callbacks turnCallbacks
	dispatch  func(func())

	commands chan any
	closeCh  chan struct{}
	done     chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	started   atomic.Bool

	state atomic.Int32

	// Owned by the run goroutine.
	baseCtx   context.Context
	speaking  *activeSpeech
	queue     []*speechRequest
	listening *activeListening
}

type turnControllerConfig struct {
	synthesizer        texttospeech.Synthesizer
	recognizer         speechtotext.Recognizer
	timings            Timings
	generation         *Generation
	speakOptions       []texttospeech.SpeakOption
	recognitionOptions []speechtotext.RecognitionOption
}

func newTurnController(config turnControllerConfig) *TurnController {
	if config.generation == nil {
		config.generation = &Generation{}
	}
	return &TurnController{
		synthesizer:        config.synthesizer,
		recognizer:         config.recognizer,
		timings:            config.timings,
		generation:         config.generation,
		speakOptions:       config.speakOptions,
		recognitionOptions: config.recognitionOptions,
		callbacks:          turnCallbacks{emit: noopEventEmitter},
		dispatch:           func(callback func()) { callback() },
		commands:           make(chan any, 16),
		closeCh:            make(chan struct{}),
		done:               make(chan struct{}),
		baseCtx:            context.Background(),
	}
}

// start runs the controller until ctx is done or close is called. Callbacks
// are handed to dispatch and must not be run inline by it.
func (c *TurnController) start(ctx context.Context, callbacks turnCallbacks, dispatch func(func())) {
	c.startOnce.Do(func() {
		if callbacks.emit == nil {
			callbacks.emit = noopEventEmitter
		}
		c.callbacks = callbacks
		if dispatch != nil {
			c.dispatch = dispatch
		}
		c.baseCtx = ctx
		c.started.Store(true)
		go c.run(ctx)
	})
}

func (c *TurnController) close() {
	c.closeOnce.Do(func() { close(c.closeCh) })
	if c.started.Load() {
		<-c.done
		return
	}
	c.drainCommands()
}

// State returns the current turn state.
func (c *TurnController) State() TurnState { return TurnState(c.state.Load()) }

// Speak submits text for speaking. The returned signal resolves once the text
// was spoken, including the post-speech buffer, or was dropped.
func (c *TurnController) Speak(ctx context.Context, text string, opts ...SpeakOption) CompletionSignal {
	request := &speechRequest{
		ctx:        ctx,
		text:       text,
		generation: c.generation.Current(),
		done:       make(chan error, 1),
	}
	for _, opt := range opts {
		opt(request)
	}

	select {
	case <-c.closeCh:
		request.resolve(ErrClosed)
		return request.done
	default:
	}

	select {
	case c.commands <- speakCommand{request: request}:
		select {
		case <-c.done:
			c.drainCommands()
		default:
		}
	case <-c.closeCh:
		request.resolve(ErrClosed)
	case <-ctx.Done():
		request.resolve(ctx.Err())
	}
	return request.done
}

// StartListening opens a listening window, stopping any speech first. It
// returns once the recognizer started or failed to.
func (c *TurnController) StartListening(ctx context.Context, opts ...ListenOption) error {
	options := ListenOptions{SilenceTimeout: c.timings.SilenceTimeout, generation: c.generation.Current()}
	for _, opt := range opts {
		opt(&options)
	}

	command := listenCommand{ctx: ctx, options: options, reply: make(chan error, 1)}
	select {
	case c.commands <- command:
	case <-c.closeCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-command.reply:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// StopListening ends the listening window and lets the recognizer flush. It
// is a no-op when not listening.
func (c *TurnController) StopListening() { c.stopListening(false, "stopped") }

// AbortListening ends the listening window and discards pending results.
func (c *TurnController) AbortListening() { c.stopListening(true, "aborted") }

func (c *TurnController) stopListening(abort bool, reason string) {
	if !c.started.Load() {
		return
	}
	command := stopListeningCommand{abort: abort, reason: reason, reply: make(chan struct{})}
	select {
	case c.commands <- command:
	case <-c.closeCh:
		return
	}

	select {
	case <-command.reply:
	case <-c.done:
	}
}

// StopSpeaking interrupts the current utterance and drops everything queued
// behind it.
func (c *TurnController) StopSpeaking() {
	if !c.started.Load() {
		return
	}
	command := stopSpeakingCommand{reply: make(chan struct{})}
	select {
	case c.commands <- command:
	case <-c.closeCh:
		return
	}

	select {
	case <-command.reply:
	case <-c.done:
	}
}

func (c *TurnController) run(ctx context.Context) {
	defer c.drainCommands()
	defer close(c.done)
	defer c.closeOnce.Do(func() { close(c.closeCh) })
	defer c.release()

	for {
		var speechDone <-chan error
		if c.speaking != nil {
			speechDone = c.speaking.utterance.Done()
		}
		var recognitionEvents <-chan speechtotext.Event
		var silence <-chan time.Time
		if c.listening != nil {
			recognitionEvents = c.listening.events
			silence = c.listening.silence.C
		}

		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case command := <-c.commands:
			c.handleCommand(command)
		case err, ok := <-speechDone:
			if !ok {
				err = nil
			}
			c.handleSpeechDone(err)
		case event, ok := <-recognitionEvents:
			c.handleRecognitionEvent(event, ok)
		case <-silence:
			c.handleSilenceTimeout()
		}
	}
}

func (c *TurnController) handleCommand(command any) {
	switch command := command.(type) {
	case speakCommand:
		c.handleSpeak(command.request)
	case listenCommand:
		command.reply <- c.handleListen(command)
	case stopListeningCommand:
		if c.listening != nil {
			c.endListening(command.abort, command.reason)
		}
		close(command.reply)
	case stopSpeakingCommand:
		if c.speaking != nil {
			c.interruptSpeech(true)
			c.setState(TurnIdle)
		}
		close(command.reply)
	}
}

func (c *TurnController) handleSpeak(request *speechRequest) {
	switch c.State() {
	case TurnSpeaking:
		if request.priority == PriorityImmediate {
			logger.Debug("interrupting speech for an immediate request", "text", request.text)
			c.interruptSpeech(false)
			c.speakNext(request)
			return
		}
		c.queue = append(c.queue, request)
		speechQueueDepth.Set(float64(len(c.queue)))
		c.emit(events.NewSpeechQueued(request.text, len(c.queue)))
	case TurnListening:
		c.endListening(true, "speech requested")
		if !c.pause(c.timings.PostStopBeforeSpeak) {
			request.resolve(ErrClosed)
			return
		}
		c.speakNext(request)
	default:
		c.speakNext(request)
	}
}

// speakNext starts request, or the first startable queued request when
// request cannot be spoken. It leaves the controller idle when nothing could
// be started.
func (c *TurnController) speakNext(request *speechRequest) {
	for request != nil {
		if err := c.startSpeech(request); err == nil {
			return
		}
		request = c.dequeue()
	}

	if c.State() == TurnSpeaking {
		c.setState(TurnIdle)
		if onSpeechEnd := c.callbacks.onSpeechEnd; onSpeechEnd != nil {
			c.dispatch(onSpeechEnd)
		}
	}
}

func (c *TurnController) startSpeech(request *speechRequest) error {
	if !c.generation.IsCurrent(request.generation) {
		logger.Debug("dropped stale speech request", "text", request.text, "generation", request.generation)
		speechRequests.WithLabelValues("stale").Inc()
		c.emit(events.NewSpeechDropped(request.text, "stale"))
		request.resolve(ErrStaleRequest)
		return ErrStaleRequest
	}
	if err := request.ctx.Err(); err != nil {
		speechRequests.WithLabelValues("cancelled").Inc()
		c.emit(events.NewSpeechDropped(request.text, "cancelled"))
		request.resolve(err)
		return err
	}

	ctx, span := tracer.Start(c.baseCtx, "speak", trace.WithAttributes(attribute.String("text", request.text)))
	if c.synthesizer == nil {
		c.failSpeech(ctx, span, request, ErrNoSynthesizer)
		return ErrNoSynthesizer
	}

	c.setState(TurnSpeaking)
	opts := append(append([]texttospeech.SpeakOption{}, c.speakOptions...), request.options...)
	utterance, err := c.synthesizer.Speak(ctx, request.text, opts...)
	if err != nil {
		c.failSpeech(ctx, span, request, err)
		return err
	}

	c.speaking = &activeSpeech{request: request, utterance: utterance, span: span}
	c.emit(events.NewSpeechStarted(request.text))
	return nil
}

func (c *TurnController) failSpeech(ctx context.Context, span trace.Span, request *speechRequest, err error) {
	err = &TurnError{Kind: ErrorKindSpeech, Err: err}
	logger.Error("speech failed", "text", request.text, "error", err)
	recordSpanError(ctx, err)
	span.End()
	speechRequests.WithLabelValues("failed").Inc()
	c.emit(events.NewSpeechFailed(request.text, err))
	request.resolve(err)
}

func (c *TurnController) handleSpeechDone(err error) {
	current := c.speaking
	c.speaking = nil
	defer current.span.End()

	switch {
	case err == nil:
		c.emit(events.NewSpeechEnded(current.request.text))
		if !c.pause(c.timings.PostSpeechBuffer) {
			current.request.resolve(ErrClosed)
			return
		}
		speechRequests.WithLabelValues("spoken").Inc()
		current.request.resolve(nil)
	case errors.Is(err, texttospeech.ErrStopped):
		speechRequests.WithLabelValues("interrupted").Inc()
		c.emit(events.NewSpeechInterrupted(current.request.text))
		current.request.resolve(ErrSpeechInterrupted)
	default:
		err = &TurnError{Kind: ErrorKindSpeech, Err: err}
		logger.Error("speech failed mid-utterance", "text", current.request.text, "error", err)
		current.span.RecordError(err)
		speechRequests.WithLabelValues("failed").Inc()
		c.emit(events.NewSpeechFailed(current.request.text, err))
		current.request.resolve(err)
	}

	c.speakNext(c.dequeue())
}

// interruptSpeech stops the current utterance and, if requested, everything
// queued behind it. The state is left for the caller to update.
func (c *TurnController) interruptSpeech(clearQueue bool) {
	if current := c.speaking; current != nil {
		c.speaking = nil
		if err := current.utterance.Stop(); err != nil {
			logger.Warn("failed to stop utterance", "error", err)
		}
		current.span.End()
		speechRequests.WithLabelValues("interrupted").Inc()
		c.emit(events.NewSpeechInterrupted(current.request.text))
		current.request.resolve(ErrSpeechInterrupted)
	}

	if !clearQueue {
		return
	}
	for _, request := range c.queue {
		speechRequests.WithLabelValues("interrupted").Inc()
		c.emit(events.NewSpeechDropped(request.text, "interrupted"))
		request.resolve(ErrSpeechInterrupted)
	}
	c.queue = nil
	speechQueueDepth.Set(0)
}

func (c *TurnController) dequeue() *speechRequest {
	if len(c.queue) == 0 {
		return nil
	}
	request := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	speechQueueDepth.Set(float64(len(c.queue)))
	return request
}

func (c *TurnController) handleListen(command listenCommand) error {
	if c.staleListen(command.options) {
		return ErrStaleRequest
	}
	switch c.State() {
	case TurnListening:
		return nil
	case TurnSpeaking:
		c.interruptSpeech(true)
		c.setState(TurnIdle)
		if !c.pause(c.timings.PostStopBeforeListen) {
			return ErrClosed
		}
	}

	if err := command.ctx.Err(); err != nil {
		return err
	}
	if c.staleListen(command.options) {
		return ErrStaleRequest
	}
	if c.recognizer == nil {
		return &TurnError{Kind: ErrorKindRecognition, Err: ErrNoRecognizer}
	}

	ctx, span := tracer.Start(c.baseCtx, "start listening")
	opts := append(append([]speechtotext.RecognitionOption{}, c.recognitionOptions...), command.options.Recognition...)
	recognition, err := c.recognizer.Start(ctx, opts...)
	if err != nil {
		err = &TurnError{Kind: ErrorKindRecognition, Err: fmt.Errorf("failed to start recognition: %w", err)}
		recordSpanError(ctx, err)
		span.End()
		recognitionFailures.WithLabelValues(string(ErrorKindRecognition)).Inc()
		c.emit(events.NewRecognitionFailed(string(ErrorKindRecognition), err))
		return err
	}

	timeout := command.options.SilenceTimeout
	if timeout <= 0 {
		timeout = c.timings.SilenceTimeout
	}
	c.listening = &activeListening{
		recognition: recognition,
		events:      recognition.Events(),
		silence:     time.NewTimer(timeout),
		screen:      command.options.screen,
		generation:  command.options.generation,
		startedAt:   time.Now(),
		span:        span,
	}
	c.setState(TurnListening)
	c.emit(events.NewListeningStarted())
	return nil
}

func (c *TurnController) staleListen(options ListenOptions) bool {
	if c.generation.IsCurrent(options.generation) {
		return false
	}
	logger.Debug("dropped stale listen request", "screen", options.screen.String(), "generation", options.generation)
	return true
}

// endListening closes the listening window. The silence timer is always
// cleared and the controller is left idle.
func (c *TurnController) endListening(abort bool, reason string) {
	current := c.listening
	c.listening = nil
	current.silence.Stop()

	var err error
	if abort {
		err = current.recognition.Abort()
	} else {
		err = current.recognition.Stop()
	}
	if err != nil {
		logger.Warn("failed to end recognition", "reason", reason, "error", err)
	}

	current.span.SetAttributes(attribute.String("reason", reason))
	current.span.End()
	listeningDuration.Observe(time.Since(current.startedAt).Seconds())
	c.setState(TurnIdle)
	c.emit(events.NewListeningStopped(reason))
}

func (c *TurnController) handleRecognitionEvent(event speechtotext.Event, ok bool) {
	switch {
	case !ok:
		c.endListening(false, "recognition ended")
		c.reportRecognitionError(&TurnError{Kind: ErrorKindRecognition, Err: ErrRecognitionEnded})
	case event.Err != nil:
		c.endListening(true, "recognition failed")
		c.reportRecognitionError(&TurnError{Kind: ErrorKindRecognition, Err: event.Err})
	case !event.IsFinal:
		logger.Debug("interim transcript", "transcript", event.Transcript)
		c.emit(events.NewTranscriptInterim(event.Transcript))
	default:
		transcript := strings.TrimSpace(event.Transcript)
		if transcript == "" {
			return
		}
		result := recognitionResult{
			transcript: transcript,
			screen:     c.listening.screen,
			generation: c.listening.generation,
		}
		c.endListening(true, "final transcript")
		c.emit(events.NewTranscriptFinal(transcript))
		if onResult := c.callbacks.onResult; onResult != nil {
			c.dispatch(func() { onResult(result) })
		}
	}
}

func (c *TurnController) handleSilenceTimeout() {
	generation := c.listening.generation
	c.endListening(true, string(ErrorKindSilenceTimeout))
	if !c.generation.IsCurrent(generation) {
		logger.Debug("dropped stale silence timeout", "generation", generation)
		return
	}
	c.reportRecognitionError(&TurnError{Kind: ErrorKindSilenceTimeout, Err: ErrSilenceTimeout})
}

func (c *TurnController) reportRecognitionError(err *TurnError) {
	logger.Info("listening window ended without a transcript", "kind", string(err.Kind), "error", err.Err)
	recognitionFailures.WithLabelValues(string(err.Kind)).Inc()
	c.emit(events.NewRecognitionFailed(string(err.Kind), err))
	if onError := c.callbacks.onError; onError != nil {
		c.dispatch(func() { onError(err) })
	}
}

func (c *TurnController) setState(to TurnState) {
	from := TurnState(c.state.Swap(int32(to)))
	if from == to {
		return
	}

	logger.Debug("turn state changed", "from", from.String(), "to", to.String())
	turnTransitions.WithLabelValues(from.String(), to.String()).Inc()
	c.emit(events.NewTurnStateChanged(from.String(), to.String()))
	if onStateChanged := c.callbacks.onStateChanged; onStateChanged != nil {
		c.dispatch(func() { onStateChanged(from, to) })
	}
}

func (c *TurnController) emit(event events.Event) {
	emit := c.callbacks.emit
	c.dispatch(func() { emit(event) })
}

func (c *TurnController) pause(d time.Duration) bool {
	return sleepContext(c.baseCtx, c.closeCh, d)
}

// release stops all audio activity and resolves every outstanding request.
func (c *TurnController) release() {
	if c.listening != nil {
		c.endListening(true, "closed")
	}
	if current := c.speaking; current != nil {
		c.speaking = nil
		if err := current.utterance.Stop(); err != nil {
			logger.Warn("failed to stop utterance", "error", err)
		}
		current.span.End()
		current.request.resolve(ErrClosed)
	}
	for _, request := range c.queue {
		request.resolve(ErrClosed)
	}
	c.queue = nil
	speechQueueDepth.Set(0)
	c.setState(TurnIdle)
}

// drainCommands answers commands nobody will run anymore.
func (c *TurnController) drainCommands() {
	for {
		select {
		case command := <-c.commands:
			switch command := command.(type) {
			case speakCommand:
				command.request.resolve(ErrClosed)
			case listenCommand:
				command.reply <- ErrClosed
			case stopListeningCommand:
				close(command.reply)
			case stopSpeakingCommand:
				close(command.reply)
			}
		default:
			return
		}
	}
}
