package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/narrative"
)

const narrativeTimeout = 30 * time.Second

type NarrativeResponse struct {
	Round int    `json:"round"`
	Text  string `json:"text"`
}

// handleNarrative tells the story of the round on the summary screen. The
// narrator runs outside the match lock and never changes the match.
func handleNarrative(logger *slog.Logger, narrator narrative.Narrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := matchFrom(r)
		state := m.Snapshot().State
		if state.Status != climate.StatusSummary {
			writeError(w, http.StatusConflict, "narrative is available on the summary screen")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), narrativeTimeout)
		defer cancel()

		text := narrative.Tell(ctx, narrator, narrative.RequestFromState(state), logger.With("match_id", m.ID))
		writeJSON(w, http.StatusOK, NarrativeResponse{Round: state.CurrentRound, Text: text})
	}
}
