package events

// KindTurnStateChanged identifies a turn state transition.
const KindTurnStateChanged Kind = "turn_state.changed"

// TurnStateChanged marks a transition between idle, speaking and listening.
type TurnStateChanged struct {
	Base
	From string
	To   string
}

// NewTurnStateChanged creates a turn state changed event.
func NewTurnStateChanged(from, to string) TurnStateChanged {
	return TurnStateChanged{Base: NewBase(KindTurnStateChanged), From: from, To: to}
}
