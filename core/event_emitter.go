package orchestration

import events "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OrchestrateOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.TranscriptInterim:
			if opts.onInterimRecognition != nil {
				opts.onInterimRecognition(typedEvent.Transcript)
			}
		case events.ScreenContextChanged:
			if opts.onContextChanged != nil {
				opts.onContextChanged(ScreenContext(typedEvent.Current), ScreenContext(typedEvent.Previous))
			}
		case events.DialogEnded:
			if opts.onDialogEnded != nil {
				opts.onDialogEnded(ScreenContext(typedEvent.Screen), typedEvent.Reason)
			}
		}
	}
}
