package persistence

import (
	"errors"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// Code classifies a failed operation. The zero value means success.
type Code string

const (
	CodeOK           Code = ""
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInvalidInput Code = "invalid_input"
	CodeUnavailable  Code = "unavailable"
)

// Result is returned by every facade method. On failure Value holds the
// operation's negative shape: the zero value, an empty list, or zeroed
// analytics.
type Result[T any] struct {
	Value T
	Code  Code
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Code == CodeOK }

// Outcome is the result of an operation with no value.
type Outcome = Result[struct{}]

func classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return CodeConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeUnavailable
	}
}

func (c Code) outcome() string {
	if c == CodeOK {
		return "ok"
	}
	return string(c)
}
