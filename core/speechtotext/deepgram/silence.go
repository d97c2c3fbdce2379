package deepgram

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"
)

const (
	silenceChunkDuration = 50 * time.Millisecond
	silenceWindow        = time.Second
	keepAliveInterval    = 5 * time.Second
)

// generateSilence pads gaps in the captured audio so Deepgram's endpointing
// keeps running, then falls back to KeepAlive messages for longer gaps.
func (r *recognition) generateSilence(encoding audio.EncodingInfo) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	ticker := time.NewTicker(silenceChunkDuration)
	defer ticker.Stop()

	chunk := make([]byte, encoding.BytesPerSecond()*int(silenceChunkDuration/time.Millisecond)/1000)
	for i := range chunk {
		chunk[i] = encoding.SilenceValue()
	}

	sinceAudio := func() time.Duration {
		return time.Since(time.Unix(0, r.lastAudio.Load()))
	}

	state := silenceGeneratorStateWaiting
	var firstSilence, lastKeepAlive time.Time
	for {
		select {
		case <-r.done:
			return
		case <-r.readerDone:
			return
		case <-ticker.C:
		}

		switch state {
		case silenceGeneratorStateWaiting:
			if sinceAudio() > silenceChunkDuration {
				state = silenceGeneratorStateSilence
				firstSilence = time.Now()
			}

		case silenceGeneratorStateSilence:
			if sinceAudio() < silenceChunkDuration {
				state = silenceGeneratorStateWaiting
				continue
			}
			if time.Since(firstSilence) >= silenceWindow {
				state = silenceGeneratorStateKeepAlive
				lastKeepAlive = time.Now()
				continue
			}
			if err := r.write(websocket.BinaryMessage, chunk); err != nil {
				logger.Debug("failed to send silence", "error", err)
			}

		case silenceGeneratorStateKeepAlive:
			if sinceAudio() < silenceChunkDuration {
				state = silenceGeneratorStateWaiting
				continue
			}
			if time.Since(lastKeepAlive) >= keepAliveInterval {
				lastKeepAlive = time.Now()
				if err := r.writeJSON(keepAliveMsg); err != nil {
					logger.Debug("failed to send keep alive", "error", err)
				}
			}
		}
	}
}
