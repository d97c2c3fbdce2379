// Package events defines the typed turn-taking event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - turn_state.*
//   - assistant_speech.*
//   - user_input.*
//   - screen.*
//   - dialog.*
//
// turn_state events
//
//   - TurnStateChanged (turn_state.changed): the single turn state moved
//     between idle, speaking and listening.
//
// assistant_speech events
//
//   - SpeechQueued (assistant_speech.queued): request waits behind the
//     current utterance.
//   - SpeechStarted (assistant_speech.started): utterance began playing.
//   - SpeechEnded (assistant_speech.ended): utterance finished naturally.
//   - SpeechInterrupted (assistant_speech.interrupted): utterance was cut off
//     to open a listening window or for an immediate request.
//   - SpeechDropped (assistant_speech.dropped): queued request was discarded
//     before it started, e.g. because its screen is gone.
//   - SpeechFailed (assistant_speech.failed): engine failure.
//
// user_input events
//
//   - ListeningStarted (user_input.listening_started)
//   - ListeningStopped (user_input.listening_stopped)
//   - TranscriptInterim (user_input.transcript_interim): logged and
//     otherwise ignored.
//   - TranscriptFinal (user_input.transcript_final): reported once per
//     utterance.
//   - RecognitionFailed (user_input.recognition_failed): silence_timeout or
//     recognition_error.
//
// screen events
//
//   - ScreenContextChanged (screen.context_changed)
//   - TranscriptDropped (screen.transcript_dropped): transcript addressed to
//     a screen that no longer owns voice focus.
//
// dialog events
//
//   - DialogStateChanged, IntentRecognized, ConfirmationOpened,
//     ConfirmationResolved, ConfirmationDiscarded, DialogEnded,
//     AutoSubmitTick, AutoSubmitExpired.
package events
