package screens

import (
	"context"
	"fmt"

	orchestration "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/commands"
	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

const (
	homePrompt       = "Say begin exam followed by its number, or list exams."
	homeHelp         = "You can say list exams, begin exam followed by a number, repeat, or exit."
	homeQuitQuestion = "Do you want to leave the application? Say yes or no."
)

type homeScreen struct {
	app       *App
	catalogue []exam.Summary
}

func (h *homeScreen) spec() orchestration.DialogSpec {
	return orchestration.DialogSpec{
		Grammar: commands.HomeGrammar{},
		Handle:  h.handle,
		Welcome: "Welcome. " + catalogueText(h.catalogue) + " " + homePrompt,
		Prompt:  func() string { return homePrompt },
	}
}

func (h *homeScreen) handle(ctx context.Context, intent commands.Intent) orchestration.Reply {
	switch intent.Kind {
	case commands.KindBeginExam:
		if intent.Number < 1 || intent.Number > len(h.catalogue) {
			return orchestration.Reply{Say: fmt.Sprintf("There is no exam number %d. %s", intent.Number, homePrompt)}
		}
		summary := h.catalogue[intent.Number-1]
		return orchestration.Reply{
			Say: fmt.Sprintf("Opening %s.", summary.Title),
			Then: h.app.navigate("exam", func(ctx context.Context) error {
				return h.app.OpenExam(ctx, summary.ID)
			}),
		}

	case commands.KindListExams:
		catalogue, err := h.app.content.ListExams(ctx)
		if err != nil {
			logger.Warn("failed to refresh exam catalogue", "error", err)
		} else {
			h.catalogue = catalogue
		}
		return orchestration.Reply{Say: catalogueText(h.catalogue) + " " + homePrompt}

	case commands.KindRepeat:
		return orchestration.Reply{Say: catalogueText(h.catalogue) + " " + homePrompt}

	case commands.KindHelp:
		return orchestration.Reply{Say: homeHelp}

	case commands.KindExit:
		return orchestration.Reply{Confirm: &orchestration.Confirmation{
			Question: homeQuitQuestion,
			OnYes: func(context.Context) orchestration.Reply {
				return orchestration.Reply{Say: "Goodbye.", Then: h.app.onQuit}
			},
			Terminal: true,
		}}

	default:
		return orchestration.Reply{Say: "That is not available here. " + homePrompt}
	}
}
