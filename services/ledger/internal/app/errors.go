package app

import "errors"

var (
	// ErrUnknownOp indicates a scenario step names an operation the ledger
	// does not provide.
	ErrUnknownOp = errors.New("unknown operation")
	// ErrEmptyScenario indicates a scenario without cases.
	ErrEmptyScenario = errors.New("scenario has no cases")
)
