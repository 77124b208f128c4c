// Package engine is the match state machine. Transition maps a state and an
// action to the next state without mutating its input.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/playperu/climatechance/internal/catalog"
	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/outcome"
	"github.com/playperu/climatechance/internal/selection"
)

type Engine struct {
	scenarios     []climate.Scenario
	individual    outcome.IndividualTable
	collective    outcome.CollectiveTable
	selector      *selection.Selector
	newID         func() string
	initialTemp   decimal.Decimal
	initialTokens int
	tokenFloor    *int
	logger        *slog.Logger
}

type Option func(*Engine)

// WithSelector sets the source of all shuffles. Seeded selectors make matches
// reproducible.
func WithSelector(s *selection.Selector) Option {
	return func(e *Engine) { e.selector = s }
}

func WithTables(individual outcome.IndividualTable, collective outcome.CollectiveTable) Option {
	return func(e *Engine) {
		e.individual = individual
		e.collective = collective
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithInitialTemperature(t decimal.Decimal) Option {
	return func(e *Engine) { e.initialTemp = t }
}

func WithInitialTokens(n int) Option {
	return func(e *Engine) { e.initialTokens = n }
}

// WithTokenFloor clamps team tokens at floor after each round. Without it
// tokens may go negative.
func WithTokenFloor(floor int) Option {
	return func(e *Engine) { e.tokenFloor = &floor }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an engine over a validated catalog and validated tables.
func New(scenarios []climate.Scenario, opts ...Option) (*Engine, error) {
	e := &Engine{
		scenarios:     slices.Clone(scenarios),
		individual:    outcome.DefaultIndividual(),
		collective:    outcome.DefaultCollective(),
		newID:         uuid.NewString,
		initialTemp:   decimal.NewFromInt(climate.InitialTemperature),
		initialTokens: climate.InitialTokens,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.selector == nil {
		e.selector = selection.NewRandom()
	}

	if err := catalog.Validate(e.scenarios); err != nil {
		return nil, err
	}
	if err := e.individual.Validate(); err != nil {
		return nil, fmt.Errorf("validating tables: %w", err)
	}
	if err := e.collective.Validate(); err != nil {
		return nil, fmt.Errorf("validating tables: %w", err)
	}
	for _, qpr := range climate.QuestionsPerRoundOptions {
		if _, ok := e.individual.Best(qpr); !ok {
			return nil, fmt.Errorf("validating tables: no tiers for %d questions", qpr)
		}
	}
	return e, nil
}

// Scenarios returns the catalog the engine draws from.
func (e *Engine) Scenarios() []climate.Scenario { return slices.Clone(e.scenarios) }

// Tables returns the outcome tables in use.
func (e *Engine) Tables() (outcome.IndividualTable, outcome.CollectiveTable) {
	return e.individual, e.collective
}

// Initial returns a fresh LOBBY state with a newly shuffled scenario pool.
func (e *Engine) Initial() climate.GameState {
	return climate.GameState{
		Status:            climate.StatusLobby,
		Teams:             []climate.Team{},
		Scenarios:         e.selector.ShufflePool(e.scenarios),
		Temperature:       e.initialTemp,
		LastTempChange:    decimal.Zero,
		CurrentRound:      1,
		TotalRounds:       climate.DefaultTotalRounds,
		QuestionsPerRound: climate.DefaultQuestionsPerRound,
	}
}

// Transition applies action to state. On error the returned state is the
// input state, unchanged.
func (e *Engine) Transition(state climate.GameState, action Action) (climate.GameState, error) {
	next := state.Clone()

	var err error
	switch a := action.(type) {
	case StartGame:
		err = e.startGame(&next, a)
	case ProceedToPlay:
		err = e.proceedToPlay(&next, a)
	case ReshuffleScenarios:
		err = e.reshuffle(&next, a)
	case AnswerQuestion:
		err = e.answer(&next, a)
	case CalculateResults:
		err = e.calculateResults(&next, a)
	case StartNextRound:
		next, err = e.startNextRound(next, a)
	case Restart:
		next = e.Initial()
	default:
		err = fmt.Errorf("unknown action %T: %w", action, ErrInvalidTransition)
	}

	if err != nil {
		return state, err
	}
	return next, nil
}

func (e *Engine) startGame(s *climate.GameState, a StartGame) error {
	if s.Status != climate.StatusLobby {
		return invalidTransition(a, s.Status)
	}
	if err := e.validateSetup(a); err != nil {
		return err
	}

	s.QuestionsPerRound = a.QuestionsPerRound
	s.TotalRounds = a.TotalRounds
	s.Teams = make([]climate.Team, len(a.Teams))
	for i, setup := range a.Teams {
		s.Teams[i] = climate.Team{
			ID:              e.newID(),
			Name:            setup.Name,
			Avatar:          setup.Avatar,
			Players:         slices.Clone(setup.Players),
			Tokens:          e.initialTokens,
			Answers:         []climate.Answer{},
			Achievements:    []string{},
			NewAchievements: []climate.Achievement{},
		}
	}
	if len(s.Scenarios) == 0 {
		s.Scenarios = e.selector.ShufflePool(e.scenarios)
	}
	if err := e.dealRound(s); err != nil {
		return err
	}

	s.Status = climate.StatusScenarioAssignment
	s.CurrentRound = 1
	s.CurrentTeamIndex = 0
	s.CurrentQuestionIndex = 0
	s.ResultsCalculated = false
	return nil
}

func (e *Engine) validateSetup(a StartGame) error {
	if len(a.Teams) == 0 {
		return invalidSetup("no teams")
	}
	if !slices.Contains(climate.QuestionsPerRoundOptions, a.QuestionsPerRound) {
		return invalidSetup("%d questions per round, want one of %v", a.QuestionsPerRound, climate.QuestionsPerRoundOptions)
	}
	if a.TotalRounds < 1 {
		return invalidSetup("%d rounds", a.TotalRounds)
	}
	if !e.collective.Covers(len(a.Teams), a.QuestionsPerRound) {
		return invalidSetup("%d teams not supported: the temperature table only covers %v", len(a.Teams), e.collective.TeamCounts())
	}
	for i, t := range a.Teams {
		if isBlank(t.Name) {
			return invalidSetup("team %d has no name", i+1)
		}
		if len(t.Players) == 0 {
			return invalidSetup("team %q has no players", t.Name)
		}
		for _, p := range t.Players {
			if isBlank(p) {
				return invalidSetup("team %q has a blank player name", t.Name)
			}
		}
	}
	return nil
}

// dealRound assigns every team a scenario and a fresh question set.
func (e *Engine) dealRound(s *climate.GameState) error {
	assigned, err := e.selector.AssignScenarios(s.Scenarios, len(s.Teams))
	if err != nil {
		return err
	}
	for i := range s.Teams {
		questions, err := e.selector.BuildQuestionSet(assigned[i], s.QuestionsPerRound)
		if err != nil {
			return err
		}
		s.Teams[i].Scenario = assigned[i]
		s.Teams[i].Questions = questions
	}
	return nil
}

func (e *Engine) proceedToPlay(s *climate.GameState, a ProceedToPlay) error {
	if s.Status != climate.StatusScenarioAssignment {
		return invalidTransition(a, s.Status)
	}
	s.Status = climate.StatusPlaying
	return nil
}

// reshuffle reassigns scenarios only; question sets, scores and round
// counters stay as they are.
func (e *Engine) reshuffle(s *climate.GameState, a ReshuffleScenarios) error {
	if s.Status != climate.StatusScenarioAssignment {
		return invalidTransition(a, s.Status)
	}
	assigned, err := e.selector.AssignScenarios(s.Scenarios, len(s.Teams))
	if err != nil {
		return err
	}
	for i := range s.Teams {
		s.Teams[i].Scenario = assigned[i]
	}
	return nil
}

// answer records the current team's choice and advances the turn. Every team
// answers question i before any team sees question i+1.
func (e *Engine) answer(s *climate.GameState, a AnswerQuestion) error {
	if s.Status != climate.StatusPlaying {
		return invalidTransition(a, s.Status)
	}
	team := &s.Teams[s.CurrentTeamIndex]
	if team.ID != a.TeamID {
		return fmt.Errorf("team %q answered during %q's turn: %w", a.TeamID, team.ID, ErrNotYourTurn)
	}
	q := team.Questions[s.CurrentQuestionIndex]
	if q.ID != a.QuestionID {
		return fmt.Errorf("answered %q, current is %q: %w", a.QuestionID, q.ID, ErrWrongQuestion)
	}
	choice, ok := q.Choice(a.ChoiceID)
	if !ok {
		return fmt.Errorf("choice %q on %q: %w", a.ChoiceID, q.ID, ErrUnknownChoice)
	}

	team.Answers = append(team.Answers, climate.Answer{QuestionID: q.ID, Choice: choice})

	s.CurrentTeamIndex++
	if s.CurrentTeamIndex < len(s.Teams) {
		return nil
	}
	s.CurrentTeamIndex = 0
	s.CurrentQuestionIndex++
	if s.CurrentQuestionIndex < len(s.Teams[0].Questions) {
		return nil
	}
	s.CurrentQuestionIndex = 0
	s.Status = climate.StatusSummary
	return nil
}

func (e *Engine) calculateResults(s *climate.GameState, a CalculateResults) error {
	if s.Status != climate.StatusSummary {
		return invalidTransition(a, s.Status)
	}
	if s.ResultsCalculated {
		return fmt.Errorf("round %d: %w", s.CurrentRound, ErrResultsAlreadyCalculated)
	}

	best, _ := e.individual.Best(s.QuestionsPerRound)
	total := 0
	for i := range s.Teams {
		team := &s.Teams[i]
		roundScore := team.RoundScore()
		tier, err := e.individual.Lookup(s.QuestionsPerRound, roundScore)
		if err != nil {
			return fmt.Errorf("team %q: %w", team.Name, err)
		}

		team.Score += roundScore
		team.CLevel = tier.Label
		team.Tokens += tier.TokenDelta
		if e.tokenFloor != nil && team.Tokens < *e.tokenFloor {
			team.Tokens = *e.tokenFloor
		}
		team.NewAchievements = unlockAchievements(team, roundResult{
			score:             roundScore,
			questionsPerRound: s.QuestionsPerRound,
			tier:              tier,
			bestTier:          best,
		})
		total += roundScore
	}

	step, err := e.collective.Lookup(len(s.Teams), s.QuestionsPerRound, total)
	if err != nil {
		return err
	}
	delta := decimal.NewFromInt(int64(step.Delta))
	s.Temperature = s.Temperature.Add(delta)
	s.LastTempChange = delta
	s.ResultsCalculated = true

	e.logger.Debug("round results",
		"round", s.CurrentRound,
		"total_score", total,
		"temp_delta", step.Delta,
		"temperature", s.Temperature.String(),
	)
	return nil
}

// startNextRound deals a new round, or ends the match with a full restart
// when the last round is done.
func (e *Engine) startNextRound(s climate.GameState, a StartNextRound) (climate.GameState, error) {
	if s.Status != climate.StatusSummary {
		return s, invalidTransition(a, s.Status)
	}
	if s.CurrentRound >= s.TotalRounds {
		return e.Initial(), nil
	}

	if err := e.dealRound(&s); err != nil {
		return s, err
	}
	for i := range s.Teams {
		s.Teams[i].Answers = []climate.Answer{}
		s.Teams[i].NewAchievements = []climate.Achievement{}
	}
	s.CurrentTeamIndex = 0
	s.CurrentQuestionIndex = 0
	s.LastTempChange = decimal.Zero
	s.CurrentRound++
	s.Status = climate.StatusScenarioAssignment
	s.ResultsCalculated = false
	return s, nil
}
