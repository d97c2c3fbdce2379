package deepgram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/speechtotext"
)

const (
	eventBufferSize = 16
	// stopGrace bounds how long a stopped stream waits for Deepgram to flush
	// its last results and close the socket.
	stopGrace = 2 * time.Second

	typeErrorResponse = "Error"
)

type recognition struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	options speechtotext.RecognitionOptions
	source  AudioSource

	events     chan speechtotext.Event
	done       chan struct{}
	endOnce    sync.Once
	closeOnce  sync.Once
	ended      atomic.Bool
	lastAudio  atomic.Int64
	readerDone chan struct{}

	// only touched by the reader goroutine
	accumulatedTranscript string
	unendedSegment        bool
}

func newRecognition(conn *websocket.Conn, options speechtotext.RecognitionOptions, source AudioSource) *recognition {
	r := &recognition{
		conn:       conn,
		options:    options,
		source:     source,
		events:     make(chan speechtotext.Event, eventBufferSize),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	r.lastAudio.Store(time.Now().UnixNano())
	return r
}

func (r *recognition) Events() <-chan speechtotext.Event { return r.events }

// SendAudio streams raw audio in the negotiated encoding.
func (r *recognition) SendAudio(audio []byte) error {
	if r.isDone() {
		return errors.New("recognition ended")
	}

	r.lastAudio.Store(time.Now().UnixNano())
	return r.write(websocket.BinaryMessage, audio)
}

// Stop asks Deepgram to flush and close the stream. Events that arrive after
// Stop are dropped once nobody reads them.
func (r *recognition) Stop() error {
	var err error
	r.endOnce.Do(func() {
		r.ended.Store(true)
		close(r.done)
		err = errors.Join(r.stopCapture(), r.writeJSON(websocketMessage{Type: string(api.TypeCloseStreamResponse)}))
		_ = r.conn.SetReadDeadline(time.Now().Add(stopGrace))
	})
	return err
}

// Abort drops the connection without waiting for pending results.
func (r *recognition) Abort() error {
	var err error
	r.endOnce.Do(func() {
		r.ended.Store(true)
		close(r.done)
		err = errors.Join(r.stopCapture(), r.closeConn())
	})
	return err
}

func (r *recognition) isDone() bool { return r.ended.Load() }

func (r *recognition) stopCapture() error {
	if r.source == nil {
		return nil
	}
	if err := r.source.StopCapture(); err != nil {
		return fmt.Errorf("failed to stop audio capture: %w", err)
	}
	return nil
}

func (r *recognition) closeConn() error {
	var err error
	r.closeOnce.Do(func() {
		r.connMu.Lock()
		defer r.connMu.Unlock()
		if closeErr := r.conn.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close deepgram websocket: %w", closeErr)
		}
	})
	return err
}

type websocketMessage struct {
	Type string `json:"type"`
}

var keepAliveMsg = websocketMessage{Type: "KeepAlive"}

func (r *recognition) write(messageType int, data []byte) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if err := r.conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (r *recognition) writeJSON(msg websocketMessage) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s message to deepgram: %w", msg.Type, err)
	}
	return nil
}

func (r *recognition) readMessages() {
	defer func() {
		_ = r.closeConn()
		close(r.readerDone)
		close(r.events)
	}()

	for {
		msgType, msg, err := r.conn.ReadMessage()
		if err != nil {
			if r.isDone() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			logger.Warn("failed to read deepgram websocket message", "error", err)
			r.send(speechtotext.Event{Err: &speechtotext.EngineError{Kind: "network", Message: err.Error()}})
			return
		}
		if msgType != websocket.BinaryMessage {
			r.processMessage(msg)
		}
	}
}

func (r *recognition) send(event speechtotext.Event) bool {
	select {
	case r.events <- event:
		return true
	case <-r.done:
		return false
	}
}

func (r *recognition) processMessage(msg []byte) {
	var parsedMsg websocketMessage
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}
		if msgResp.IsFinal {
			if transcript != "" {
				r.accumulatedTranscript = strings.TrimSpace(r.accumulatedTranscript + " " + transcript)
			}
			if msgResp.SpeechFinal {
				r.onSpeechEnded()
			}
			return
		}
		if r.options.InterimResults && transcript != "" {
			r.send(speechtotext.Event{Transcript: strings.TrimSpace(r.accumulatedTranscript + " " + transcript)})
		}

	case api.TypeUtteranceEndResponse:
		if r.unendedSegment || r.accumulatedTranscript != "" {
			r.onSpeechEnded()
		}

	case api.TypeSpeechStartedResponse:
		r.unendedSegment = true

	case typeErrorResponse:
		var errResp struct {
			Description string `json:"description"`
			Message     string `json:"message"`
			Variant     string `json:"variant"`
		}
		if err := json.Unmarshal(msg, &errResp); err != nil {
			logger.Warn("failed to unmarshal deepgram error", "error", err)
		}
		message := errResp.Description
		if message == "" {
			message = errResp.Message
		}
		r.send(speechtotext.Event{Err: &speechtotext.EngineError{Kind: "engine", Message: message}})

	default:
		logger.Debug("ignoring deepgram message", "type", parsedMsg.Type)
	}
}

func (r *recognition) onSpeechEnded() {
	r.unendedSegment = false
	transcript := strings.TrimSpace(r.accumulatedTranscript)
	r.accumulatedTranscript = ""
	if transcript != "" {
		r.send(speechtotext.Event{Transcript: transcript, IsFinal: true})
	}
}
