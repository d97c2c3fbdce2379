package deepgram

type deepgramVoice string

const defaultVoice deepgramVoice = "aura-2-thalia-en"

var availableVoices = []deepgramVoice{
	"aura-2-thalia-en",
	"aura-2-andromeda-en",
	"aura-2-helena-en",
	"aura-2-apollo-en",
	"aura-2-arcas-en",
	"aura-2-aries-en",
	"aura-asteria-en",
	"aura-luna-en",
	"aura-stella-en",
	"aura-athena-en",
	"aura-hera-en",
	"aura-orion-en",
	"aura-arcas-en",
	"aura-perseus-en",
	"aura-angus-en",
	"aura-orpheus-en",
	"aura-helios-en",
	"aura-zeus-en",
}

func GetAvailableVoices() []string {
	voices := make([]string, len(availableVoices))
	for i, voice := range availableVoices {
		voices[i] = string(voice)
	}
	return voices
}

func isAvailableVoice(voice string) bool {
	for _, available := range availableVoices {
		if string(available) == voice {
			return true
		}
	}
	return false
}
