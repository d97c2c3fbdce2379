package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	orchestration "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio/miniaudio"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam/redisstore"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam/yamlprovider"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/screens"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
	deepgramstt "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext/deepgram"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
	deepgramtts "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech/deepgram"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/log/global"
	"golang.org/x/sync/errgroup"
)

var verbose bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the voice assistant",
	Long: `Opens the default microphone and speaker, reads the exam catalogue and
starts on the home screen. Say "help" on any screen to hear the commands.

Submissions go to Redis when redis.addr is set and are kept in memory
otherwise.`,
	Args: cobra.NoArgs,
	RunE: runAssistant,
}

func init() {
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print turn state transitions")
}

func runAssistant(cmd *cobra.Command, _ []string) error {
	settings, err := loadConfig()
	if err != nil {
		return err
	}

	log, provider, closeLog, err := newLogger(settings, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()
	global.SetLoggerProvider(provider)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content, err := yamlprovider.Load(afero.NewOsFs(), settings.Exams.Path)
	if err != nil {
		return err
	}

	sink, closeSink, err := newSubmissionSink(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn("failed to close submission sink", "error", err)
		}
	}()

	device, err := miniaudio.NewClient(miniaudio.WithSampleRate(settings.Audio.SampleRate))
	if err != nil {
		return err
	}
	defer device.Close()

	recognizer, err := deepgramstt.NewRecognizer(
		deepgramstt.WithAPIKey(settings.Deepgram.APIKey),
		deepgramstt.WithModel(settings.Deepgram.Model),
		deepgramstt.WithAudioSource(device),
	)
	if err != nil {
		return err
	}
	synthesizer, err := deepgramtts.NewSynthesizer(
		deepgramtts.WithAPIKey(settings.Deepgram.APIKey),
		deepgramtts.WithVoice(settings.Deepgram.Voice),
		deepgramtts.WithAudioOutput(device),
	)
	if err != nil {
		return err
	}

	encoding := device.EncodingInfo()
	orchestrator := orchestration.NewOrchestrator(
		orchestration.WithRecognizer(recognizer),
		orchestration.WithSynthesizer(synthesizer),
		orchestration.WithTimings(timingsFrom(settings)),
		orchestration.WithDefaultRecognitionOptions(
			speechtotext.WithLanguage(settings.Deepgram.Language),
			speechtotext.WithEncodingInfo(encoding),
		),
		orchestration.WithDefaultSpeakOptions(texttospeech.WithEncodingInfo(encoding)),
	)
	defer orchestrator.Close()

	ctx, quit := context.WithCancel(ctx)
	defer quit()
	group, ctx := errgroup.WithContext(ctx)

	out := newConsole(cmd.OutOrStdout(), verbose)
	orchestrator.Orchestrate(ctx,
		orchestration.WithEventCallback(out.handleEvent),
		orchestration.WithDialogEndedCallback(func(screen orchestration.ScreenContext, reason string) {
			log.Debug("dialog ended", "screen", screen, "reason", reason)
		}),
	)

	app := screens.New(orchestrator, content, sink,
		screens.WithAutoSubmitWarnings(settings.Exams.Warnings...),
		screens.WithSubmittedCallback(func(submission exam.Submission) {
			log.Info("exam submitted",
				"exam", submission.ExamID,
				"session", submission.SessionID,
				"reason", submission.Reason,
				"answers", len(submission.Answers))
			out.submitted(submission)
		}),
		screens.WithQuitCallback(quit),
	)

	group.Go(func() error {
		return serveMetrics(ctx, log, settings.Metrics.Addr)
	})
	group.Go(func() error {
		if err := app.Start(ctx); err != nil {
			return fmt.Errorf("failed to start home screen: %w", err)
		}
		<-ctx.Done()
		return nil
	})

	log.Info("assistant started",
		"exams", settings.Exams.Path,
		"model", settings.Deepgram.Model,
		"voice", settings.Deepgram.Voice,
		"sample_rate", settings.Audio.SampleRate)

	err = group.Wait()
	log.Info("assistant stopped")
	return err
}

func timingsFrom(settings config.Config) orchestration.Timings {
	return orchestration.Timings{
		PostStopBeforeSpeak:   settings.Timings.PostStopBeforeSpeak,
		PostStopBeforeListen:  settings.Timings.PostStopBeforeListen,
		PostSpeechBuffer:      settings.Timings.PostSpeechBuffer,
		SilenceTimeout:        settings.Timings.SilenceTimeout,
		RecognitionRetryDelay: settings.Timings.RecognitionRetryDelay,
	}
}

func newSubmissionSink(ctx context.Context, settings config.Config) (exam.SubmissionSink, func() error, error) {
	if settings.Redis.Addr == "" {
		return &exam.MemorySink{}, func() error { return nil }, nil
	}

	store, client, err := redisstore.Connect(ctx, redisstore.ConnectOptions{
		Addr:     settings.Redis.Addr,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
	}, redisstore.WithTTL(settings.Redis.TTL))
	if err != nil {
		return nil, nil, err
	}
	return store, client.Close, nil
}

// serveMetrics exposes the Prometheus registry until ctx is done. An empty
// addr disables it.
func serveMetrics(ctx context.Context, log *slog.Logger, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", otelhttp.NewHandler(promhttp.Handler(), "metrics"))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shut down metrics server", "error", err)
		}
	}()

	log.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
