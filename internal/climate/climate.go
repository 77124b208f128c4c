// Package climate defines the core domain types of the Climate Chance quiz.
// It only depends on decimal for the shared temperature meter.
package climate

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Match defaults.
const (
	InitialTemperature       = 22
	InitialTokens            = 10
	DefaultTotalRounds       = 3
	DefaultQuestionsPerRound = 3
	ChoicesPerQuestion       = 5
	MinChoiceScore           = 1
	MaxChoiceScore           = 5
)

// QuestionsPerRoundOptions lists the round sizes a lobby may offer.
var QuestionsPerRoundOptions = []int{3, 4, 6}

// Avatars offered to teams in the lobby.
var Avatars = []string{"😊", "😎", "🚀", "🦄", "🤖", "🦊", "🐼", "🐸"}

type Choice struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type Fact struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
	Theme   string   `json:"theme,omitempty"`
	Fact    *Fact    `json:"fact,omitempty"`
}

// QuestionInstance is a question drawn into a round. ID is unique within the
// team's round; TemplateID points back at the catalog question.
type QuestionInstance struct {
	ID         string   `json:"id"`
	TemplateID string   `json:"templateId"`
	Text       string   `json:"text"`
	Theme      string   `json:"theme"`
	Choices    []Choice `json:"choices"`
	Fact       *Fact    `json:"fact,omitempty"`
}

// Choice returns the choice with the given id.
func (q QuestionInstance) Choice(id string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// WorstChoice returns the highest-impact choice. Ties go to the first one in
// display order.
func (q QuestionInstance) WorstChoice() Choice {
	var worst Choice
	for i, c := range q.Choices {
		if i == 0 || c.Score > worst.Score {
			worst = c
		}
	}
	return worst
}

type Theme struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

type Scenario struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Themes      []Theme `json:"themes"`
}

// ThemeNames returns the scenario's theme names in catalog order.
func (s Scenario) ThemeNames() []string {
	names := make([]string, len(s.Themes))
	for i, t := range s.Themes {
		names[i] = t.Name
	}
	return names
}

// QuestionCount returns the number of template questions across all themes.
func (s Scenario) QuestionCount() int {
	n := 0
	for _, t := range s.Themes {
		n += len(t.Questions)
	}
	return n
}

type Answer struct {
	QuestionID string `json:"questionId"`
	Choice     Choice `json:"choice"`
}

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// TeamSetup is what the lobby hands over for each team.
type TeamSetup struct {
	Name    string   `json:"name"`
	Avatar  string   `json:"avatar"`
	Players []string `json:"players"`
}

type Team struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Avatar          string             `json:"avatar"`
	Players         []string           `json:"players"`
	Score           int                `json:"score"`
	Tokens          int                `json:"tokens"`
	CLevel          string             `json:"cLevel"`
	Answers         []Answer           `json:"answers"`
	Achievements    []string           `json:"achievements"`
	NewAchievements []Achievement      `json:"newAchievements"`
	Scenario        Scenario           `json:"scenario"`
	Questions       []QuestionInstance `json:"questions"`
}

// RoundScore sums the scores of the answers given this round.
func (t Team) RoundScore() int {
	sum := 0
	for _, a := range t.Answers {
		sum += a.Choice.Score
	}
	return sum
}

// HasAchievement reports whether the team already unlocked id.
func (t Team) HasAchievement(id string) bool {
	return slices.Contains(t.Achievements, id)
}

type Status string

const (
	StatusLobby              Status = "LOBBY"
	StatusScenarioAssignment Status = "SCENARIO_ASSIGNMENT"
	StatusPlaying            Status = "PLAYING"
	StatusSummary            Status = "SUMMARY"
)

type GameState struct {
	Status               Status          `json:"status"`
	Teams                []Team          `json:"teams"`
	Scenarios            []Scenario      `json:"-"`
	CurrentTeamIndex     int             `json:"currentTeamIndex"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	Temperature          decimal.Decimal `json:"temperature"`
	LastTempChange       decimal.Decimal `json:"lastTempChange"`
	CurrentRound         int             `json:"currentRound"`
	TotalRounds          int             `json:"totalRounds"`
	QuestionsPerRound    int             `json:"questionsPerRound"`
	ResultsCalculated    bool            `json:"resultsCalculated"`
}

// CurrentTeam returns the team whose turn it is. ok is false outside PLAYING.
func (s GameState) CurrentTeam() (Team, bool) {
	if s.Status != StatusPlaying || s.CurrentTeamIndex < 0 || s.CurrentTeamIndex >= len(s.Teams) {
		return Team{}, false
	}
	return s.Teams[s.CurrentTeamIndex], true
}

// CurrentQuestion returns the question instance the current team must answer.
func (s GameState) CurrentQuestion() (QuestionInstance, bool) {
	team, ok := s.CurrentTeam()
	if !ok || s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(team.Questions) {
		return QuestionInstance{}, false
	}
	return team.Questions[s.CurrentQuestionIndex], true
}

// TeamIndex returns the position of the team with the given id, or -1.
func (s GameState) TeamIndex(id string) int {
	for i, t := range s.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of every mutable part of the state. Scenarios and
// questions are catalog data and treated as immutable, so the slices holding
// them are copied but their elements are shared.
func (s GameState) Clone() GameState {
	out := s
	out.Scenarios = slices.Clone(s.Scenarios)
	if s.Teams != nil {
		out.Teams = make([]Team, len(s.Teams))
		for i, t := range s.Teams {
			out.Teams[i] = t.clone()
		}
	}
	return out
}

func (t Team) clone() Team {
	out := t
	out.Players = slices.Clone(t.Players)
	out.Answers = slices.Clone(t.Answers)
	out.Achievements = slices.Clone(t.Achievements)
	out.NewAchievements = slices.Clone(t.NewAchievements)
	out.Questions = slices.Clone(t.Questions)
	return out
}
