package miniaudio

import (
	"context"
	"errors"

	"github.com/gen2brain/malgo"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"
)

var errPlaybackStopped = errors.New("playback device not started")

// playback feeds the speaker from a buffer, padding with silence when the
// buffer runs dry.
type playback struct {
	device device
	buffer playbackBuffer
}

func (p *playback) open(audioContext *malgo.AllocatedContext, sampleRate uint32) error {
	return p.device.open(audioContext, playbackProfile, sampleRate, p.process)
}

func (p *playback) process(output, _ []byte, frameCount uint32) {
	n := min(int(frameCount)*bytesPerFrame, len(output))
	p.buffer.read(output[:n], audio.GetDefaultEncodingInfo().SilenceValue())
}

func (p *playback) write(chunk []byte) error {
	if !p.device.started() {
		return errPlaybackStopped
	}
	p.buffer.write(chunk)
	return nil
}

// drain blocks until the audio written so far has been handed to the device.
func (p *playback) drain(ctx context.Context) error {
	return p.buffer.drain(ctx)
}

func (p *playback) close() {
	p.buffer.clear()
	p.device.close()
}
