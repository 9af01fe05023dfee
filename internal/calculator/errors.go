package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid input")
	// ErrInvariant matches every *InternalInvariantError via errors.Is.
	ErrInvariant = errors.New("ledger invariant violated")
)

// ValidationError reports malformed caller input, such as exact amounts that
// do not add up to the expense total. The caller is expected to fix the input;
// retrying with the same input fails the same way.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrValidation, e.Message, e.Field)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InternalInvariantError reports records that cannot have come from a correct
// ledger: balances that do not net to zero, shares that do not add up to
// their expense, or references to members outside the group. Results are
// never adjusted to hide it.
type InternalInvariantError struct {
	GroupID string
	Message string
}

func (e *InternalInvariantError) Error() string {
	if e.GroupID == "" {
		return fmt.Sprintf("%s: %s", ErrInvariant, e.Message)
	}
	return fmt.Sprintf("%s: group %s: %s", ErrInvariant, e.GroupID, e.Message)
}

// Is makes errors.Is(err, ErrInvariant) true.
func (e *InternalInvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func newInvariantError(groupID, format string, args ...any) error {
	return &InternalInvariantError{GroupID: groupID, Message: fmt.Sprintf(format, args...)}
}
