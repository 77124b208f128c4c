package server

import (
	"net/http"
	"time"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
)

type CreateMatchResponse struct {
	MatchID string    `json:"matchId"`
	HostKey string    `json:"hostKey"`
	Match   Snapshot  `json:"match"`
	Created time.Time `json:"created"`
}

type StandingsResponse struct {
	Standings []climate.Team `json:"standings"`
	MatchOver bool           `json:"matchOver"`
}

func handleCreateMatch(matches *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, hostKey, err := matches.Create()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, CreateMatchResponse{
			MatchID: m.ID,
			HostKey: hostKey,
			Match:   m.Snapshot(),
			Created: m.CreatedAt,
		})
	}
}

func handleDeleteMatch(matches *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := matches.Delete(matchFrom(r).ID); err != nil {
			writeDispatchError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMatchState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, matchFrom(r).Snapshot())
	}
}

func handleStandings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := matchFrom(r).Snapshot().State
		writeJSON(w, http.StatusOK, StandingsResponse{
			Standings: engine.Standings(state),
			MatchOver: engine.MatchOver(state),
		})
	}
}
