package domain

import "strings"

// MsgNothingToUpdate is reported when a partial payload carries no known field.
const MsgNothingToUpdate = "nothing to update"

// ValidationError carries every field violation found in a payload, in rule order
type ValidationError struct {
	Messages []string
}

// NewValidationError creates a validation error from the given messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}
