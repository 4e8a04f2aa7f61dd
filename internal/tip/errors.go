package tip

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("tip not found")
	ErrNotVotable        = errors.New("tip is not open for voting")
	ErrInvalidTransition = errors.New("invalid moderation transition")
)

// ValidationError names the submitted field that broke a rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
