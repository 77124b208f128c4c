package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
)

func handleAction(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		m := matchFrom(r)
		snap, err := m.DispatchFunc(func(state climate.GameState) (engine.Action, error) {
			return req.toAction(state)
		})
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				logger.Error("dispatching action", "match_id", m.ID, "type", req.Type, "error", err)
			}
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
