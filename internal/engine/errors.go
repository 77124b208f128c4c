package engine

import (
	"errors"
	"fmt"

	"github.com/playperu/climatechance/internal/climate"
)

// Every rejected action leaves the state untouched and returns one of these
// (possibly wrapped).
var (
	ErrInvalidTransition        = errors.New("action not allowed in current status")
	ErrNotYourTurn              = errors.New("not this team's turn")
	ErrWrongQuestion            = errors.New("question is not the current question")
	ErrUnknownChoice            = errors.New("choice does not belong to question")
	ErrInvalidSetup             = errors.New("invalid game setup")
	ErrResultsAlreadyCalculated = errors.New("results already calculated for this round")
)

func invalidTransition(a Action, status climate.Status) error {
	return fmt.Errorf("%s in %s: %w", a.Type(), status, ErrInvalidTransition)
}

func invalidSetup(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSetup, fmt.Sprintf(format, args...))
}
