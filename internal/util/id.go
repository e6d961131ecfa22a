package util

import "github.com/google/uuid"

// NewRunID returns a random identifier for one scenario run.
func NewRunID() string {
	return uuid.NewString()
}
