package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/internal/config"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFlushTimeout = 5 * time.Second

// newLogger builds a JSON logger writing to w and, when configured, to a
// rotating log file. The provider exports the core packages' OpenTelemetry
// records to the same writers. The returned func flushes the provider and
// closes the file.
func newLogger(settings config.Config, w io.Writer) (*slog.Logger, *sdklog.LoggerProvider, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.Log.Level)); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid log level %q: %w", settings.Log.Level, err)
	}

	closeFile := func() error { return nil }
	if settings.Log.File != "" {
		file := &lumberjack.Logger{
			Filename:   settings.Log.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		}
		w = io.MultiWriter(w, file)
		closeFile = file.Close
	}

	exporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(
		sdklog.NewBatchProcessor(severityFilter{Exporter: exporter, min: severityOf(level)}),
	))

	closeLog := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), logFlushTimeout)
		defer cancel()
		return errors.Join(provider.Shutdown(ctx), closeFile())
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), provider, closeLog, nil
}

// severityOf maps a slog level onto the severity otelslog gives it.
func severityOf(level slog.Level) otellog.Severity {
	return otellog.Severity(level + 9)
}

// severityFilter drops records below min before they are exported.
type severityFilter struct {
	sdklog.Exporter
	min otellog.Severity
}

func (f severityFilter) Export(ctx context.Context, records []sdklog.Record) error {
	kept := make([]sdklog.Record, 0, len(records))
	for _, record := range records {
		if record.Severity() >= f.min {
			kept = append(kept, record)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return f.Exporter.Export(ctx, kept)
}
