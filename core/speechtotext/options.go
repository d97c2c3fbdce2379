package speechtotext

import (
	"time"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"
)

type RecognitionOptions struct {
	// Language is a BCP-47 tag, e.g. "en-US".
	Language string
	// Keywords are boosted by engines that support vocabulary hints.
	Keywords []string
	// InterimResults requests non-final events as well.
	InterimResults bool
	// Endpointing is the trailing silence after which the engine finalises
	// an utterance.
	Endpointing time.Duration

	EncodingInfo audio.EncodingInfo
}

type RecognitionOption func(*RecognitionOptions)

func WithLanguage(language string) RecognitionOption {
	return func(o *RecognitionOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithKeywords(keywords ...string) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.Keywords = append(o.Keywords, keywords...)
	}
}

func WithInterimResults(enabled bool) RecognitionOption {
	return func(o *RecognitionOptions) { o.InterimResults = enabled }
}

func WithEndpointing(endpointing time.Duration) RecognitionOption {
	return func(o *RecognitionOptions) {
		if endpointing > 0 {
			o.Endpointing = endpointing
		}
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) RecognitionOption {
	return func(o *RecognitionOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

// NewRecognitionOptions applies opts on top of the defaults.
func NewRecognitionOptions(opts ...RecognitionOption) RecognitionOptions {
	options := RecognitionOptions{
		Language:     "en-US",
		Endpointing:  300 * time.Millisecond,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
