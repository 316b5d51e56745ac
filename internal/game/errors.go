package game

import (
	"errors"
	"fmt"
)

// ErrStale marks an action that arrived after the round or match already
// ended. It is an expected race outcome: callers treat it as a silent
// no-op rather than a fault.
var ErrStale = errors.New("round already ended")

// ErrDeckExhausted is returned when a draw is requested and both the deck
// and the discard pile are empty.
var ErrDeckExhausted = errors.New("deck and discard pile are empty")

// InvalidActionError rejects an action that is not legal in the current
// phase or for the acting player. State is left unchanged.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

func invalidf(format string, args ...any) error {
	return &InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// RuleError rejects a declaration or claim that does not satisfy the hand
// or interrupt rules. Reason is suitable for user feedback.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule violation: %s", e.Reason)
}

func rulef(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether an error is a plain action rejection, as
// opposed to staleness or an internal fault.
func IsRejection(err error) bool {
	var inv *InvalidActionError
	var rule *RuleError
	return errors.As(err, &inv) || errors.As(err, &rule)
}
