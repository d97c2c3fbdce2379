package miniaudio

import (
	"sync"

	"github.com/gen2brain/malgo"
)

// capture forwards microphone frames to the current listener. Frames arriving
// with no listener are dropped.
type capture struct {
	device device

	mu      sync.RWMutex
	onAudio func(audio []byte)
}

func (c *capture) open(audioContext *malgo.AllocatedContext, sampleRate uint32) error {
	return c.device.open(audioContext, captureProfile, sampleRate, c.process)
}

func (c *capture) process(_, input []byte, frameCount uint32) {
	n := int(frameCount) * bytesPerFrame
	if n == 0 || len(input) < n {
		return
	}

	c.mu.RLock()
	onAudio := c.onAudio
	c.mu.RUnlock()
	if onAudio == nil {
		return
	}

	// malgo reuses input after the callback returns.
	onAudio(append([]byte(nil), input[:n]...))
}

func (c *capture) start(onAudio func(audio []byte)) error {
	c.setListener(onAudio)
	if err := c.device.start(); err != nil {
		c.setListener(nil)
		return err
	}
	return nil
}

func (c *capture) stop() error {
	c.setListener(nil)
	return c.device.stop()
}

func (c *capture) close() {
	c.setListener(nil)
	c.device.close()
}

func (c *capture) setListener(onAudio func([]byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAudio = onAudio
}
