package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
)

const (
	defaultEndpoint = "wss://api.deepgram.com/v1/listen"
	defaultModel    = "nova-3"
)

var ErrMissingAPIKey = errors.New("deepgram api key not found")

// AudioSource feeds captured audio into a recognition cycle.
type AudioSource interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// Recognizer opens Deepgram live transcription streams, one per listening
// window.
type Recognizer struct {
	apiKey   string
	model    string
	endpoint string
	source   AudioSource
	dialer   *websocket.Dialer
}

type RecognizerOption func(*Recognizer)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) RecognizerOption {
	return func(r *Recognizer) { r.apiKey = apiKey }
}

func WithModel(model string) RecognizerOption {
	return func(r *Recognizer) {
		if model != "" {
			r.model = model
		}
	}
}

// WithEndpoint points the recognizer at a different listen endpoint.
func WithEndpoint(endpoint string) RecognizerOption {
	return func(r *Recognizer) {
		if endpoint != "" {
			r.endpoint = endpoint
		}
	}
}

// AudioWriter is implemented by the recognitions this package returns. It is
// how audio reaches the stream when no [AudioSource] is configured.
type AudioWriter interface {
	SendAudio(audio []byte) error
}

// WithAudioSource sets the source that is captured for the duration of every
// recognition cycle.
func WithAudioSource(source AudioSource) RecognizerOption {
	return func(r *Recognizer) { r.source = source }
}

func NewRecognizer(opts ...RecognizerOption) (*Recognizer, error) {
	r := &Recognizer{
		model:    defaultModel,
		endpoint: defaultEndpoint,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		r.apiKey = apiKey
	}

	return r, nil
}

func (r *Recognizer) Start(ctx context.Context, opts ...speechtotext.RecognitionOption) (speechtotext.Recognition, error) {
	ctx, span := tracer.Start(ctx, "open transcription stream")
	defer span.End()

	options := speechtotext.NewRecognitionOptions(opts...)
	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}

	listenURL, err := r.listenURL(options, encoding)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("model", r.model),
		attribute.String("language", options.Language),
		attribute.Int("keywords", len(options.Keywords)),
	)

	conn, _, err := r.dialer.DialContext(ctx, listenURL,
		http.Header{"Authorization": {"Token " + r.apiKey}})
	if err != nil {
		err = fmt.Errorf("failed to open socket connection to deepgram: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec := newRecognition(conn, options, r.source)
	go rec.readMessages()
	go rec.generateSilence(options.EncodingInfo)

	if r.source != nil {
		if err := r.source.StartCapture(ctx, func(audio []byte) {
			if err := rec.SendAudio(audio); err != nil && !rec.isDone() {
				logger.Debug("failed to forward captured audio", "error", err)
			}
		}); err != nil {
			_ = rec.Abort()
			err = fmt.Errorf("failed to start audio capture: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	return rec, nil
}

func (r *Recognizer) listenURL(options speechtotext.RecognitionOptions, encoding encodingInfo) (string, error) {
	listenURL, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid listen endpoint: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format)
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", r.model)
	queryParams.Set("language", options.Language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("vad_events", "true")
	if options.Endpointing > 0 {
		queryParams.Set("endpointing", strconv.FormatInt(options.Endpointing.Milliseconds(), 10))
	}

	// nova-3 replaced keyword boosting with key terms.
	keywordParam := "keywords"
	if strings.HasPrefix(r.model, "nova-3") {
		keywordParam = "keyterm"
	}
	for _, keyword := range options.Keywords {
		queryParams.Add(keywordParam, keyword)
	}

	listenURL.RawQuery = queryParams.Encode()
	return listenURL.String(), nil
}
