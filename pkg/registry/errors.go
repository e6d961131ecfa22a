package registry

import "errors"

var (
	// ErrNotAuthorized indicates the caller is not the identity the
	// operation requires.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidInput is matched by every input validation error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTheory indicates the theory ID does not exist.
	ErrInvalidTheory error = &inputError{msg: "invalid theory"}
	// ErrInvalidVote indicates a vote value outside {-1, 0, 1}.
	ErrInvalidVote error = &inputError{msg: "invalid vote"}
)

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }
