package server

import (
	"net/http"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
	"github.com/playperu/climatechance/internal/outcome"
)

type ScenarioSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	Color         string   `json:"color"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Themes        []string `json:"themes"`
	QuestionCount int      `json:"questionCount"`
}

// LobbyOptions lists what a lobby may offer when setting up a match.
type LobbyOptions struct {
	QuestionsPerRound []int                 `json:"questionsPerRound"`
	TeamCounts        []int                 `json:"teamCounts"`
	DefaultRounds     int                   `json:"defaultRounds"`
	Avatars           []string              `json:"avatars"`
	Achievements      []climate.Achievement `json:"achievements"`
}

type TablesResponse struct {
	Individual outcome.IndividualTable `json:"individual"`
	Collective outcome.CollectiveTable `json:"collective"`
}

func handleScenarios(eng *engine.Engine) http.HandlerFunc {
	scenarios := eng.Scenarios()
	out := make([]ScenarioSummary, len(scenarios))
	for i, sc := range scenarios {
		out[i] = ScenarioSummary{
			ID:            sc.ID,
			Title:         sc.Title,
			Description:   sc.Description,
			Icon:          sc.Icon,
			Color:         sc.Color,
			ImageURL:      sc.ImageURL,
			Themes:        sc.ThemeNames(),
			QuestionCount: sc.QuestionCount(),
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, out)
	}
}

func handleLobbyOptions(eng *engine.Engine) http.HandlerFunc {
	_, collective := eng.Tables()
	opts := LobbyOptions{
		QuestionsPerRound: climate.QuestionsPerRoundOptions,
		TeamCounts:        collective.TeamCounts(),
		DefaultRounds:     climate.DefaultTotalRounds,
		Avatars:           climate.Avatars,
	}
	for _, id := range engine.AchievementIDs() {
		opts.Achievements = append(opts.Achievements, engine.Achievements[id])
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, opts)
	}
}

// handleTables serves the scoring tables for the "how scoring works" help.
func handleTables(eng *engine.Engine) http.HandlerFunc {
	individual, collective := eng.Tables()
	resp := TablesResponse{Individual: individual, Collective: collective}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}
