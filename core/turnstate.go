package orchestration

// TurnState is the single owner of the audio channel. The assistant is never
// speaking and listening at the same time.
type TurnState int32

const (
	TurnIdle TurnState = iota
	TurnSpeaking
	TurnListening
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnSpeaking:
		return "speaking"
	case TurnListening:
		return "listening"
	default:
		return "unknown"
	}
}
