package events

import "time"

const (
	// KindDialogStateChanged identifies a dialog session state transition.
	KindDialogStateChanged Kind = "dialog.state_changed"
	// KindIntentRecognized identifies a transcript mapped to an intent.
	KindIntentRecognized Kind = "dialog.intent_recognized"
	// KindConfirmationOpened identifies the start of a yes/no sub-dialog.
	KindConfirmationOpened Kind = "dialog.confirmation_opened"
	// KindConfirmationResolved identifies a yes/no answer.
	KindConfirmationResolved Kind = "dialog.confirmation_resolved"
	// KindConfirmationDiscarded identifies a sub-dialog dropped unanswered.
	KindConfirmationDiscarded Kind = "dialog.confirmation_discarded"
	// KindDialogEnded identifies the end of a dialog session.
	KindDialogEnded Kind = "dialog.ended"
	// KindAutoSubmitTick identifies a countdown warning.
	KindAutoSubmitTick Kind = "dialog.auto_submit_tick"
	// KindAutoSubmitExpired identifies an expired countdown.
	KindAutoSubmitExpired Kind = "dialog.auto_submit_expired"
)

// DialogStateChanged carries a dialog session state transition.
type DialogStateChanged struct {
	Base
	SessionID string
	Screen    string
	From      string
	To        string
}

// NewDialogStateChanged creates a dialog state changed event.
func NewDialogStateChanged(sessionID, screen, from, to string) DialogStateChanged {
	return DialogStateChanged{Base: NewBase(KindDialogStateChanged), SessionID: sessionID, Screen: screen, From: from, To: to}
}

// IntentRecognized carries the transcript and the intent it mapped to.
type IntentRecognized struct {
	Base
	SessionID  string
	Transcript string
	Intent     string
}

// NewIntentRecognized creates an intent recognized event.
func NewIntentRecognized(sessionID, transcript, intent string) IntentRecognized {
	return IntentRecognized{Base: NewBase(KindIntentRecognized), SessionID: sessionID, Transcript: transcript, Intent: intent}
}

// ConfirmationOpened carries the question of a yes/no sub-dialog.
type ConfirmationOpened struct {
	Base
	SessionID string
	Question  string
}

// NewConfirmationOpened creates a confirmation opened event.
func NewConfirmationOpened(sessionID, question string) ConfirmationOpened {
	return ConfirmationOpened{Base: NewBase(KindConfirmationOpened), SessionID: sessionID, Question: question}
}

// ConfirmationResolved carries the answer to a yes/no sub-dialog.
type ConfirmationResolved struct {
	Base
	SessionID string
	Accepted  bool
}

// NewConfirmationResolved creates a confirmation resolved event.
func NewConfirmationResolved(sessionID string, accepted bool) ConfirmationResolved {
	return ConfirmationResolved{Base: NewBase(KindConfirmationResolved), SessionID: sessionID, Accepted: accepted}
}

// ConfirmationDiscarded marks a sub-dialog closed without an answer.
type ConfirmationDiscarded struct {
	Base
	SessionID string
	Reason    string
}

// NewConfirmationDiscarded creates a confirmation discarded event.
func NewConfirmationDiscarded(sessionID, reason string) ConfirmationDiscarded {
	return ConfirmationDiscarded{Base: NewBase(KindConfirmationDiscarded), SessionID: sessionID, Reason: reason}
}

// DialogEnded marks the end of a dialog session.
type DialogEnded struct {
	Base
	SessionID string
	Screen    string
	Reason    string
}

// NewDialogEnded creates a dialog ended event.
func NewDialogEnded(sessionID, screen, reason string) DialogEnded {
	return DialogEnded{Base: NewBase(KindDialogEnded), SessionID: sessionID, Screen: screen, Reason: reason}
}

// AutoSubmitTick carries the time left on the countdown.
type AutoSubmitTick struct {
	Base
	Remaining time.Duration
}

// NewAutoSubmitTick creates an auto submit tick event.
func NewAutoSubmitTick(remaining time.Duration) AutoSubmitTick {
	return AutoSubmitTick{Base: NewBase(KindAutoSubmitTick), Remaining: remaining}
}

// AutoSubmitExpired marks the end of the countdown.
type AutoSubmitExpired struct{ Base }

// NewAutoSubmitExpired creates an auto submit expired event.
func NewAutoSubmitExpired() AutoSubmitExpired {
	return AutoSubmitExpired{Base: NewBase(KindAutoSubmitExpired)}
}
