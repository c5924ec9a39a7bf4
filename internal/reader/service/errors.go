package service

import "errors"

var (
	// ErrOutOfRange means an index or cursor landed outside the corpus
	// bounds. Recoverable: callers treat it as end-of-corpus, never as a
	// store failure.
	ErrOutOfRange = errors.New("verse index out of range")

	// ErrNoAssignment means the user has no assignment for today, so
	// there is nothing to mark read.
	ErrNoAssignment = errors.New("no assignment for today")
)
