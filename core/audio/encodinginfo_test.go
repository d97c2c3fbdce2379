package audio

import "testing"

func TestDefaultEncodingInfo(t *testing.T) {
	info := GetDefaultEncodingInfo()
	if info.IsZero() {
		t.Fatalf("expected default encoding info to be set")
	}
	if info.BytesPerSecond() != 32000 {
		t.Fatalf("expected 32000 bytes per second, got %d", info.BytesPerSecond())
	}
}

func TestSilenceValue(t *testing.T) {
	cases := map[encodingFormat]byte{
		EncodingLinear16: 0,
		EncodingMulaw:    0xFF,
		EncodingALaw:     0x55,
	}
	for format, want := range cases {
		info := EncodingInfo{SampleRate: 8000, Format: format}
		if got := info.SilenceValue(); got != want {
			t.Fatalf("expected silence value %x for %s, got %x", want, format, got)
		}
	}
}

func TestUnknownFormatByteSize(t *testing.T) {
	info := EncodingInfo{SampleRate: 8000, Format: encodingFormat("opus")}
	if info.BytesPerSecond() != 0 {
		t.Fatalf("expected unknown format to report zero bytes per second")
	}
}
