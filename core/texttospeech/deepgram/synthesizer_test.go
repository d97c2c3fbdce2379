package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

type fakeSpeakServer struct {
	server *httptest.Server
	// flush controls whether a Flush is answered with audio and Flushed.
	flush bool

	mu       sync.Mutex
	query    url.Values
	messages []string
}

func newFakeSpeakServer(t *testing.T, flush bool) *fakeSpeakServer {
	t.Helper()

	f := &fakeSpeakServer{flush: flush}
	upgrader := websocket.Upgrader{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.query = req.URL.Query()
		f.mu.Unlock()

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var parsed websocketMessage
			_ = json.Unmarshal(msg, &parsed)

			f.mu.Lock()
			f.messages = append(f.messages, parsed.Type)
			f.mu.Unlock()

			switch parsed.Type {
			case "Flush":
				if !f.flush {
					continue
				}
				_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
				_ = conn.WriteMessage(websocket.BinaryMessage, []byte{3, 4})
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Flushed","sequence_id":0}`))
			case "Clear":
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Cleared","sequence_id":0}`))
			case "Close":
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSpeakServer) endpoint() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeSpeakServer) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakeOutput struct {
	mu      sync.Mutex
	audio   []byte
	cleared int
	drained int
}

func (o *fakeOutput) SendAudio(audio []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.audio = append(o.audio, audio...)
	return nil
}

func (o *fakeOutput) ClearBuffer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleared++
	o.audio = nil
}

func (o *fakeOutput) Drain(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drained++
	return nil
}

func waitDone(t *testing.T, u texttospeech.Utterance) error {
	t.Helper()
	select {
	case err := <-u.Done():
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for utterance")
		return nil
	}
}

func waitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}

func TestNewSynthesizerValidatesVoiceAndKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")

	if _, err := NewSynthesizer(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewSynthesizer(WithAPIKey("key"), WithVoice("robot")); !errors.Is(err, ErrInvalidVoice) {
		t.Fatalf("expected ErrInvalidVoice, got %v", err)
	}
	if _, err := NewSynthesizer(WithAPIKey("key"), WithVoice("aura-luna-en")); err != nil {
		t.Fatalf("expected known voice to be accepted, got %v", err)
	}
}

func TestSpeakPlaysAudioAndResolvesAfterDrain(t *testing.T) {
	server := newFakeSpeakServer(t, true)
	output := &fakeOutput{}
	s, err := NewSynthesizer(WithAPIKey("key"), WithEndpoint(server.endpoint()), WithAudioOutput(output))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var callbackBytes int
	var callbackMu sync.Mutex
	u, err := s.Speak(context.Background(), "Question one.",
		texttospeech.WithVoice("aura-orion-en"),
		texttospeech.WithSpeechAudioCallback(func(audio []byte) {
			callbackMu.Lock()
			callbackBytes += len(audio)
			callbackMu.Unlock()
		}))
	if err != nil {
		t.Fatalf("unexpected speak error: %v", err)
	}

	if err := waitDone(t, u); err != nil {
		t.Fatalf("expected utterance to finish cleanly, got %v", err)
	}
	if _, open := <-u.Done(); open {
		t.Fatalf("expected done channel to be closed after the result")
	}

	output.mu.Lock()
	played, drained := len(output.audio), output.drained
	output.mu.Unlock()
	if played != 4 || drained != 1 {
		t.Fatalf("expected 4 bytes played and one drain, got %d bytes and %d drains", played, drained)
	}
	callbackMu.Lock()
	defer callbackMu.Unlock()
	if callbackBytes != 4 {
		t.Fatalf("expected audio callback to see 4 bytes, got %d", callbackBytes)
	}

	server.mu.Lock()
	model := server.query.Get("model")
	server.mu.Unlock()
	if model != "aura-orion-en" {
		t.Fatalf("expected per-request voice, got %q", model)
	}
	if got := server.Messages(); len(got) < 2 || got[0] != "Speak" || got[1] != "Flush" {
		t.Fatalf("expected Speak then Flush, got %v", got)
	}
}

func TestStopClearsAndResolvesStopped(t *testing.T) {
	server := newFakeSpeakServer(t, false)
	output := &fakeOutput{}
	s, _ := NewSynthesizer(WithAPIKey("key"), WithEndpoint(server.endpoint()), WithAudioOutput(output))

	u, err := s.Speak(context.Background(), "A long instruction")
	if err != nil {
		t.Fatalf("unexpected speak error: %v", err)
	}
	if err := u.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if err := u.Stop(); err != nil {
		t.Fatalf("expected repeated stop to be ignored, got %v", err)
	}

	if err := waitDone(t, u); !errors.Is(err, texttospeech.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}

	if !waitForCondition(t, time.Second, func() bool {
		for _, msg := range server.Messages() {
			if msg == "Clear" {
				return true
			}
		}
		return false
	}) {
		t.Fatalf("expected Clear to reach the server, got %v", server.Messages())
	}

	output.mu.Lock()
	defer output.mu.Unlock()
	if output.cleared != 1 {
		t.Fatalf("expected the output buffer to be cleared once, got %d", output.cleared)
	}
}

func TestSpeakFailsWhenEndpointUnreachable(t *testing.T) {
	s, _ := NewSynthesizer(WithAPIKey("key"), WithEndpoint("ws://127.0.0.1:1/v1/speak"))

	if _, err := s.Speak(context.Background(), "hello"); err == nil {
		t.Fatalf("expected dial failure")
	}
}
