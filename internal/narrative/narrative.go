// Package narrative turns a finished round into a short story. It never
// touches match state; a failed narration degrades to FallbackMessage.
package narrative

import (
	"context"
	"log/slog"

	"github.com/playperu/climatechance/internal/climate"
)

// FallbackMessage is shown whenever no story could be generated.
const FallbackMessage = "Oh no! Our storyteller seems to be on a coffee break. But your choices still made a big impact! Let's see the results."

type Entry struct {
	TeamName      string `json:"teamName"`
	ScenarioTitle string `json:"scenarioTitle"`
	QuestionText  string `json:"questionText"`
	ChoiceText    string `json:"choiceText"`
	Score         int    `json:"score"`
}

type Request struct {
	Entries []Entry `json:"entries"`
}

// Narrator produces a story for a round.
type Narrator interface {
	Narrate(ctx context.Context, req Request) (string, error)
}

// RequestFromState collects every answer given in the current round, team by
// team.
func RequestFromState(s climate.GameState) Request {
	var req Request
	for _, team := range s.Teams {
		texts := make(map[string]string, len(team.Questions))
		for _, q := range team.Questions {
			texts[q.ID] = q.Text
		}
		for _, a := range team.Answers {
			req.Entries = append(req.Entries, Entry{
				TeamName:      team.Name,
				ScenarioTitle: team.Scenario.Title,
				QuestionText:  texts[a.QuestionID],
				ChoiceText:    a.Choice.Text,
				Score:         a.Choice.Score,
			})
		}
	}
	return req
}

// Tell returns the story for req, or FallbackMessage if n is nil, the request
// is empty or narration fails.
func Tell(ctx context.Context, n Narrator, req Request, logger *slog.Logger) string {
	if n == nil || len(req.Entries) == 0 {
		return FallbackMessage
	}
	text, err := n.Narrate(ctx, req)
	if err != nil {
		logger.Warn("narration failed", "error", err)
		return FallbackMessage
	}
	if text == "" {
		return FallbackMessage
	}
	return text
}
