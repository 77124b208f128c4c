package server

import (
	"errors"
	"fmt"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
)

var errBadAction = errors.New("bad action")

// ActionRequest is the wire form of every engine action. Fields not used by
// Type are ignored.
type ActionRequest struct {
	Type              engine.ActionType   `json:"type" required:"true" enum:"START_GAME,PROCEED_TO_PLAY,RESHUFFLE_SCENARIOS,ANSWER_QUESTION,CALCULATE_RESULTS,START_NEXT_ROUND,RESTART"`
	Teams             []climate.TeamSetup `json:"teams,omitempty"`
	QuestionsPerRound int                 `json:"questionsPerRound,omitempty"`
	TotalRounds       int                 `json:"totalRounds,omitempty"`
	TeamID            string              `json:"teamId,omitempty"`
	QuestionID        string              `json:"questionId,omitempty"`
	ChoiceID          string              `json:"choiceId,omitempty"`
	// Answer is free text resolved to a choice when ChoiceID is empty.
	Answer string `json:"answer,omitempty"`
}

// toAction converts the request against the current state. Free-text answers
// are resolved on the question the request names.
func (req ActionRequest) toAction(state climate.GameState) (engine.Action, error) {
	switch req.Type {
	case engine.ActionStartGame:
		qpr, rounds := req.QuestionsPerRound, req.TotalRounds
		if qpr == 0 {
			qpr = climate.DefaultQuestionsPerRound
		}
		if rounds == 0 {
			rounds = climate.DefaultTotalRounds
		}
		return engine.StartGame{Teams: req.Teams, QuestionsPerRound: qpr, TotalRounds: rounds}, nil
	case engine.ActionProceedToPlay:
		return engine.ProceedToPlay{}, nil
	case engine.ActionReshuffleScenarios:
		return engine.ReshuffleScenarios{}, nil
	case engine.ActionAnswerQuestion:
		return req.answer(state)
	case engine.ActionCalculateResults:
		return engine.CalculateResults{}, nil
	case engine.ActionStartNextRound:
		return engine.StartNextRound{}, nil
	case engine.ActionRestart:
		return engine.Restart{}, nil
	case "":
		return nil, fmt.Errorf("%w: type is required", errBadAction)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadAction, req.Type)
	}
}

func (req ActionRequest) answer(state climate.GameState) (engine.Action, error) {
	if req.TeamID == "" || req.QuestionID == "" {
		return nil, fmt.Errorf("%w: teamId and questionId are required", errBadAction)
	}
	a := engine.AnswerQuestion{TeamID: req.TeamID, QuestionID: req.QuestionID, ChoiceID: req.ChoiceID}
	if a.ChoiceID != "" || req.Answer == "" {
		return a, nil
	}

	q, ok := findQuestion(state, req.TeamID, req.QuestionID)
	if !ok {
		return a, nil
	}
	choice, ok := engine.ResolveChoice(q, req.Answer)
	if !ok {
		return nil, fmt.Errorf("answer %q matches no choice: %w", req.Answer, engine.ErrUnknownChoice)
	}
	a.ChoiceID = choice.ID
	return a, nil
}

func findQuestion(state climate.GameState, teamID, questionID string) (climate.QuestionInstance, bool) {
	i := state.TeamIndex(teamID)
	if i < 0 {
		return climate.QuestionInstance{}, false
	}
	for _, q := range state.Teams[i].Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return climate.QuestionInstance{}, false
}
