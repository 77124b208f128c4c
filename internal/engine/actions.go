package engine

import "github.com/playperu/climatechance/internal/climate"

type ActionType string

const (
	ActionStartGame          ActionType = "START_GAME"
	ActionProceedToPlay      ActionType = "PROCEED_TO_PLAY"
	ActionReshuffleScenarios ActionType = "RESHUFFLE_SCENARIOS"
	ActionAnswerQuestion     ActionType = "ANSWER_QUESTION"
	ActionCalculateResults   ActionType = "CALCULATE_RESULTS"
	ActionStartNextRound     ActionType = "START_NEXT_ROUND"
	ActionRestart            ActionType = "RESTART"
)

// Action is the closed set of inputs Transition accepts. Each variant carries
// exactly the payload it needs.
type Action interface {
	Type() ActionType
	isAction()
}

type StartGame struct {
	Teams             []climate.TeamSetup
	QuestionsPerRound int
	TotalRounds       int
}

type ProceedToPlay struct{}

type ReshuffleScenarios struct{}

// AnswerQuestion records the current team's choice. ChoiceID is resolved
// against the question instance, so callers cannot supply their own score.
type AnswerQuestion struct {
	TeamID     string
	QuestionID string
	ChoiceID   string
}

type CalculateResults struct{}

type StartNextRound struct{}

type Restart struct{}

func (StartGame) Type() ActionType          { return ActionStartGame }
func (ProceedToPlay) Type() ActionType      { return ActionProceedToPlay }
func (ReshuffleScenarios) Type() ActionType { return ActionReshuffleScenarios }
func (AnswerQuestion) Type() ActionType     { return ActionAnswerQuestion }
func (CalculateResults) Type() ActionType   { return ActionCalculateResults }
func (StartNextRound) Type() ActionType     { return ActionStartNextRound }
func (Restart) Type() ActionType            { return ActionRestart }

func (StartGame) isAction()          {}
func (ProceedToPlay) isAction()      {}
func (ReshuffleScenarios) isAction() {}
func (AnswerQuestion) isAction()     {}
func (CalculateResults) isAction()   {}
func (StartNextRound) isAction()     {}
func (Restart) isAction()            {}
