package miniaudio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

var errDeviceNotOpen = errors.New("audio device not open")

// Both devices exchange mono signed 16 bit frames.
const (
	sampleFormat  = malgo.FormatS16
	channels      = 1
	bytesPerFrame = 2 * channels
)

// deviceProfile describes how a malgo device is opened.
type deviceProfile struct {
	name       string
	kind       malgo.DeviceType
	period     time.Duration
	periods    uint32
	lowLatency bool
}

var (
	captureProfile  = deviceProfile{name: "capture", kind: malgo.Capture, period: 30 * time.Millisecond, periods: 3, lowLatency: true}
	playbackProfile = deviceProfile{name: "playback", kind: malgo.Playback, period: 100 * time.Millisecond, periods: 4}
)

func (p deviceProfile) config(sampleRate uint32) malgo.DeviceConfig {
	config := malgo.DefaultDeviceConfig(p.kind)
	config.SampleRate = sampleRate
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(time.Duration(sampleRate) * p.period / time.Second)
	config.Periods = p.periods
	if p.lowLatency {
		config.PerformanceProfile = malgo.LowLatency
	}

	switch p.kind {
	case malgo.Capture:
		config.Capture.Format = sampleFormat
		config.Capture.Channels = channels
	case malgo.Playback:
		config.Playback.Format = sampleFormat
		config.Playback.Channels = channels
	}
	return config
}

// device serializes the lifecycle calls of one malgo device.
type device struct {
	mu      sync.Mutex
	profile deviceProfile
	handle  *malgo.Device
}

func (d *device) open(audioContext *malgo.AllocatedContext, profile deviceProfile, sampleRate uint32, data malgo.DataProc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle, err := malgo.InitDevice(audioContext.Context, profile.config(sampleRate), malgo.DeviceCallbacks{Data: data})
	if err != nil {
		return fmt.Errorf("failed to initialize %s device: %w", profile.name, err)
	}
	d.profile = profile
	d.handle = handle
	return nil
}

func (d *device) start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == nil {
		return errDeviceNotOpen
	}
	if d.handle.IsStarted() {
		return nil
	}
	if err := d.handle.Start(); err != nil {
		return fmt.Errorf("failed to start %s device: %w", d.profile.name, err)
	}
	return nil
}

func (d *device) stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == nil {
		return errDeviceNotOpen
	}
	if !d.handle.IsStarted() {
		return nil
	}
	if err := d.handle.Stop(); err != nil {
		return fmt.Errorf("failed to stop %s device: %w", d.profile.name, err)
	}
	return nil
}

func (d *device) started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle != nil && d.handle.IsStarted()
}

func (d *device) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle != nil {
		d.handle.Uninit()
		d.handle = nil
	}
}
