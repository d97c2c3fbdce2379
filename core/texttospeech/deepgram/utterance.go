package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/texttospeech"
)

type utterance struct {
	ws *websocket.Conn
	mu sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	output  AudioOutput
	options texttospeech.SpeakOptions

	done       chan error
	finishOnce sync.Once
	closeOnce  sync.Once
	closed     bool
}

func newUtterance(ctx context.Context, ws *websocket.Conn, output AudioOutput, options texttospeech.SpeakOptions) *utterance {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &utterance{
		ws:      ws,
		ctx:     ctx,
		cancel:  cancel,
		output:  output,
		options: options,
		done:    make(chan error, 1),
	}
}

func (u *utterance) Done() <-chan error { return u.done }

// Stop clears whatever Deepgram and the output still hold and resolves the
// utterance with [texttospeech.ErrStopped].
func (u *utterance) Stop() error {
	stopped := false
	u.finishOnce.Do(func() {
		stopped = true
		u.cancel()
		u.done <- texttospeech.ErrStopped
		close(u.done)
	})
	if !stopped {
		return nil
	}

	var err error
	if sendErr := u.sendWebsocketMessage(clearMsg); sendErr != nil {
		err = fmt.Errorf("failed to send websocket clear message: %w", sendErr)
	}
	if u.output != nil {
		u.output.ClearBuffer()
	}
	return errors.Join(err, u.Close())
}

func (u *utterance) finish(err error) {
	u.finishOnce.Do(func() {
		u.cancel()
		u.done <- err
		close(u.done)
	})
	_ = u.Close()
}

// Close ends the socket, first politely and then forcefully.
func (u *utterance) Close() error {
	var err error
	u.closeOnce.Do(func() {
		sendErr := u.sendWebsocketMessage(closeMsg)
		u.mu.Lock()
		u.closed = true
		u.mu.Unlock()
		if closeErr := u.ws.Close(); closeErr != nil && sendErr != nil {
			err = fmt.Errorf("failed to close websocket: %w", errors.Join(sendErr, closeErr))
		}
	})
	return err
}

func (u *utterance) processIncomingMessages() {
	for {
		msgType, msg, err := u.ws.ReadMessage()
		if err != nil {
			if u.ctx.Err() != nil {
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Warn("deepgram speak websocket read error", "error", err)
				u.finish(fmt.Errorf("speech stream failed: %w", err))
				return
			}
			u.awaitPlayback()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if u.ctx.Err() != nil || len(msg) == 0 {
				continue
			}
			u.options.SpeechAudioCallback(msg)
			if u.output != nil {
				if err := u.output.SendAudio(msg); err != nil {
					u.finish(fmt.Errorf("failed to play speech audio: %w", err))
					return
				}
			}

		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Debug("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				go u.awaitPlayback()
			case "Warning", "Error":
				var detail struct {
					Description string `json:"description"`
				}
				_ = json.Unmarshal(msg, &detail)
				if parsedMsg.Type == "Error" {
					u.finish(fmt.Errorf("deepgram speak error: %s", detail.Description))
					return
				}
				logger.Warn("deepgram speak warning", "description", detail.Description)
			case "Cleared", "Metadata":
			default:
				logger.Debug("ignoring deepgram message", "type", parsedMsg.Type)
			}
		}
	}
}

func (u *utterance) awaitPlayback() {
	if u.output == nil {
		u.finish(nil)
		return
	}

	if err := u.output.Drain(u.ctx); err != nil {
		if u.ctx.Err() != nil {
			return
		}
		u.finish(fmt.Errorf("failed to drain audio output: %w", err))
		return
	}
	u.finish(nil)
}

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func speakMsg(text string) speakMessage {
	return speakMessage{Type: "Speak", Text: text}
}

func (u *utterance) sendWebsocketMessage(msg any) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("websocket connection closed")
	}

	if err := u.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
