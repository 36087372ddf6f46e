package domain

import "errors"

var (
	// ErrEmptyActor indicates an empty handle or DID was given.
	ErrEmptyActor = errors.New("actor cannot be empty")

	// ErrAccountNotFound indicates the handle could not be resolved.
	ErrAccountNotFound = errors.New("account not found")
)
