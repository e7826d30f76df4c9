package service

import "errors"

var (
	// ErrUnavailable means a backing catalog or store could not answer.
	// It never means "nothing found".
	ErrUnavailable = errors.New("service unavailable")
	// ErrNotFound means the query was answered and nothing matched
	ErrNotFound = errors.New("not found")
)
