package miniaudio

import (
	"context"
	"sync"
)

// playbackBuffer queues audio for the device callback and tracks positions in
// the stream that callers wait on.
type playbackBuffer struct {
	mu      sync.Mutex
	pending []byte
	marks   []playbackMark
}

type playbackMark struct {
	// position counts the bytes still to be played before the mark is reached.
	position int
	reached  chan struct{}
}

func (b *playbackBuffer) write(audio []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, audio...)
}

// read fills out with queued audio, padding the rest with silence, and
// releases every mark the read passed.
func (b *playbackBuffer) read(out []byte, silence byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(out, b.pending)
	b.pending = b.pending[n:]
	if len(b.pending) == 0 {
		b.pending = nil
	}
	for i := n; i < len(out); i++ {
		out[i] = silence
	}

	kept := b.marks[:0]
	for _, mark := range b.marks {
		mark.position -= len(out)
		if mark.position <= 0 {
			close(mark.reached)
			continue
		}
		kept = append(kept, mark)
	}
	b.marks = kept
}

// mark returns a channel that is closed once the audio queued so far has been
// read.
func (b *playbackBuffer) mark() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	reached := make(chan struct{})
	if len(b.pending) == 0 {
		close(reached)
		return reached
	}
	b.marks = append(b.marks, playbackMark{position: len(b.pending), reached: reached})
	return reached
}

func (b *playbackBuffer) drain(ctx context.Context) error {
	select {
	case <-b.mark():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// clear drops queued audio and releases every waiting mark.
func (b *playbackBuffer) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = nil
	for _, mark := range b.marks {
		close(mark.reached)
	}
	b.marks = nil
}

func (b *playbackBuffer) buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
