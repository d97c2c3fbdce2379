package deepgram

import (
	"errors"
	"fmt"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio"
)

var ErrUnsupportedEncoding = errors.New("unsupported audio encoding")

// encodingInfo is the encoding and sample rate pair sent as listen
// parameters.
type encodingInfo struct {
	SampleRate int
	Format     string
}

// listenSampleRates maps each raw format the listen endpoint accepts to the
// sample rates allowed for it. Companded formats are telephony only.
var listenSampleRates = map[string][]int{
	audio.EncodingLinear16.Name(): {8000, 16000, 24000, 32000, 48000},
	audio.EncodingALaw.Name():     {8000},
	audio.EncodingMulaw.Name():    {8000},
}

func convertEncoding(encoding audio.EncodingInfo) (encodingInfo, error) {
	format := encoding.Format.Name()
	rates, ok := listenSampleRates[format]
	if !ok {
		return encodingInfo{}, fmt.Errorf("%w: format %q", ErrUnsupportedEncoding, format)
	}
	for _, rate := range rates {
		if rate == encoding.SampleRate {
			return encodingInfo{SampleRate: rate, Format: format}, nil
		}
	}
	return encodingInfo{}, fmt.Errorf("%w: %s at %d Hz", ErrUnsupportedEncoding, format, encoding.SampleRate)
}
