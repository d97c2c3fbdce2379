package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"
)

// Client owns a microphone and a speaker on one malgo context. It is the
// audio source of the recognizer and the audio output of the synthesizer.
type Client struct {
	audioContext *malgo.AllocatedContext
	capture      capture
	playback     playback

	sampleRate uint32
}

type ClientOption func(*Client)

// WithSampleRate sets the rate both devices run at.
func WithSampleRate(sampleRate int) ClientOption {
	return func(c *Client) {
		if sampleRate > 0 {
			c.sampleRate = uint32(sampleRate)
		}
	}
}

// NewClient opens both devices and starts the speaker. The microphone only
// runs between StartCapture and StopCapture.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{sampleRate: audio.DefaultSampleRate}
	for _, opt := range opts {
		opt(client)
	}

	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	client.audioContext = audioContext

	if err := client.playback.open(audioContext, client.sampleRate); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.playback.device.start(); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.capture.open(audioContext, client.sampleRate); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("audio devices ready", "sample_rate", client.sampleRate)
	return client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.capture.start(onAudio)
}

func (c *Client) StopCapture() error { return c.capture.stop() }

func (c *Client) SendAudio(chunk []byte) error { return c.playback.write(chunk) }

// ClearBuffer drops queued speaker audio and releases pending drains.
func (c *Client) ClearBuffer() { c.playback.buffer.clear() }

func (c *Client) Drain(ctx context.Context) error { return c.playback.drain(ctx) }

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: int(c.sampleRate), Format: audio.EncodingLinear16}
}

// Close stops and releases both devices and the audio context.
func (c *Client) Close() {
	c.capture.close()
	c.playback.close()
	if c.audioContext != nil {
		if err := c.audioContext.Uninit(); err != nil {
			logger.Debug("failed to uninitialize audio context", "error", err)
		}
		c.audioContext.Free()
		c.audioContext = nil
	}
}
