package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playperu/climatechance/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps dispatch errors to HTTP status codes. Anything unknown is a
// server-side defect.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadAction),
		errors.Is(err, engine.ErrInvalidSetup),
		errors.Is(err, engine.ErrUnknownChoice):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrWrongQuestion),
		errors.Is(err, engine.ErrResultsAlreadyCalculated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDispatchError writes err with its mapped status. Internal errors are
// not echoed to the client.
func writeDispatchError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
