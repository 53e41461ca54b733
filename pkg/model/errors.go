package model

import "fmt"

// InvalidTransitionError is returned when a state transition is invalid,
// e.g. deciding an invite that is already terminal.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s state transition: %s → %s (entity %s)", e.Entity, e.From, e.To, e.ID)
}
