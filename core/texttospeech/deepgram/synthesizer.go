package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

const defaultEndpoint = "wss://api.deepgram.com/v1/speak"

var (
	ErrMissingAPIKey = errors.New("deepgram api key not found")
	ErrInvalidVoice  = errors.New("invalid voice")
)

// AudioOutput plays synthesized audio.
type AudioOutput interface {
	SendAudio(audio []byte) error
	// ClearBuffer drops audio that has not been played yet.
	ClearBuffer()
	// Drain blocks until everything sent so far has been played.
	Drain(ctx context.Context) error
}

// Synthesizer speaks text through Deepgram's streaming speak API, one socket
// per utterance.
type Synthesizer struct {
	apiKey   string
	voice    deepgramVoice
	endpoint string
	output   AudioOutput
	dialer   *websocket.Dialer
}

type SynthesizerOption func(*Synthesizer)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) SynthesizerOption {
	return func(s *Synthesizer) { s.apiKey = apiKey }
}

func WithVoice(voice string) SynthesizerOption {
	return func(s *Synthesizer) {
		if voice != "" {
			s.voice = deepgramVoice(voice)
		}
	}
}

func WithEndpoint(endpoint string) SynthesizerOption {
	return func(s *Synthesizer) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithAudioOutput plays utterances on output. Without one, an utterance is
// done as soon as Deepgram has sent all of its audio.
func WithAudioOutput(output AudioOutput) SynthesizerOption {
	return func(s *Synthesizer) { s.output = output }
}

func NewSynthesizer(opts ...SynthesizerOption) (*Synthesizer, error) {
	s := &Synthesizer{
		voice:    defaultVoice,
		endpoint: defaultEndpoint,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !isAvailableVoice(string(s.voice)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVoice, s.voice)
	}
	if s.apiKey == "" {
		apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
		if !ok || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		s.apiKey = apiKey
	}

	return s, nil
}

func (s *Synthesizer) Speak(ctx context.Context, text string, opts ...texttospeech.SpeakOption) (texttospeech.Utterance, error) {
	ctx, span := tracer.Start(ctx, "open speech stream")
	defer span.End()

	options := texttospeech.NewSpeakOptions(opts...)
	voice := s.voice
	if options.Voice != "" {
		if isAvailableVoice(options.Voice) {
			voice = deepgramVoice(options.Voice)
		} else {
			logger.Warn("unknown voice, using default", "voice", options.Voice, "default", string(s.voice))
		}
	}
	span.SetAttributes(attribute.String("voice", string(voice)), attribute.Int("text_length", len(text)))

	speakURL, err := s.speakURL(voice, options)
	if err != nil {
		return nil, err
	}

	conn, _, err := s.dialer.DialContext(ctx, speakURL,
		http.Header{"Authorization": {"token " + s.apiKey}})
	if err != nil {
		err = fmt.Errorf("failed to open socket connection to deepgram: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	u := newUtterance(ctx, conn, s.output, options)
	go u.processIncomingMessages()

	if err := errors.Join(u.sendWebsocketMessage(speakMsg(text)), u.sendWebsocketMessage(flushMsg)); err != nil {
		_ = u.Stop()
		err = fmt.Errorf("failed to send text to deepgram: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return u, nil
}

func (s *Synthesizer) speakURL(voice deepgramVoice, options texttospeech.SpeakOptions) (string, error) {
	speakURL, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid speak endpoint: %w", err)
	}

	urlValues := speakURL.Query()
	urlValues.Set("encoding", options.EncodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(options.EncodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")
	speakURL.RawQuery = urlValues.Encode()

	return speakURL.String(), nil
}
