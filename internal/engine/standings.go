package engine

import (
	"cmp"
	"slices"

	"github.com/playperu/climatechance/internal/climate"
)

// Standings ranks teams by cumulative score, lowest impact first. Ties keep
// setup order.
func Standings(state climate.GameState) []climate.Team {
	teams := state.Clone().Teams
	slices.SortStableFunc(teams, func(a, b climate.Team) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return teams
}

// MatchOver reports whether the final round's results are in. The next
// StartNextRound returns the match to the lobby.
func MatchOver(state climate.GameState) bool {
	return state.Status == climate.StatusSummary &&
		state.ResultsCalculated &&
		state.CurrentRound >= state.TotalRounds
}
