package texttospeech

import "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"

type SpeakOptions struct {
	// Voice selects the engine voice, engines fall back to their default
	// when it is empty or unknown.
	Voice string
	// Rate scales the speaking rate, 1 is the engine default. Not supported
	// by all engines.
	Rate float64
	// SpeechAudioCallback is called for every synthesized audio chunk before
	// it is handed to the audio output.
	SpeechAudioCallback func(audio []byte)

	EncodingInfo audio.EncodingInfo
}

type SpeakOption func(*SpeakOptions)

func WithVoice(voice string) SpeakOption {
	return func(o *SpeakOptions) { o.Voice = voice }
}

func WithRate(rate float64) SpeakOption {
	return func(o *SpeakOptions) {
		if rate <= 0 {
			return
		}
		o.Rate = rate
	}
}

func WithSpeechAudioCallback(callback func([]byte)) SpeakOption {
	return func(o *SpeakOptions) { o.SpeechAudioCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SpeakOption {
	return func(o *SpeakOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

// NewSpeakOptions applies opts on top of the defaults.
func NewSpeakOptions(opts ...SpeakOption) SpeakOptions {
	options := SpeakOptions{
		Rate:                1,
		SpeechAudioCallback: func([]byte) {},
		EncodingInfo:        audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.SpeechAudioCallback == nil {
		options.SpeechAudioCallback = func([]byte) {}
	}
	return options
}
