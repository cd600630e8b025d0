package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCandidates means the eligible pool is smaller than
	// MinCandidates. Surfaced to the invoker, never fatal, never retried.
	ErrInsufficientCandidates = errors.New("not enough candidates to draw from")

	// ErrPermissionDenied means the invoker lacks owner/admin/trusted-picker
	// privilege for the command.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnknownUser means a mention/username/id could not be resolved to a
	// chat member.
	ErrUnknownUser = errors.New("could not identify user")
)

// LimitExhaustedError means the chat's daily pick quota is spent. It resolves
// naturally at the next day rollover.
type LimitExhaustedError struct {
	Limit int
}

func (e *LimitExhaustedError) Error() string {
	return fmt.Sprintf("daily limit of %d pick(s) exhausted", e.Limit)
}

// MalformedInputError means a numeric/textual command argument did not
// validate. Usage carries the hint shown to the user; no state is mutated.
type MalformedInputError struct {
	Usage string
}

func (e *MalformedInputError) Error() string {
	return "malformed input: " + e.Usage
}
