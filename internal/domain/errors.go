package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("domain: not found")

	// ErrDuplicate indicates a unique key already exists.
	ErrDuplicate = errors.New("domain: duplicate")

	// ErrInvalidInput indicates a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("domain: invalid input")
)
