// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("missing credentials")
	ErrForbidden       = errors.New("invalid credentials")
	ErrNotFound        = errors.New("not found")
	ErrClosed          = errors.New("decision is closed")
	ErrJoinCodeExpired = errors.New("join code has expired")
)

var (
	ErrNoOptions      = fmt.Errorf("%w: no decision items available to score", ErrInvalidInput)
	ErrResultNotReady = fmt.Errorf("%w: result not available yet", ErrNotFound)
)

// Category is the coarse class of a failure, used by the HTTP boundary
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryNotFound   Category = "not_found"
	CategoryConflict   Category = "conflict"
	CategoryInternal   Category = "internal"
)

// CategoryOf classifies err. Anything unrecognised is internal.
func CategoryOf(err error) Category {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CategoryValidation
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		return CategoryAuth
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrClosed), errors.Is(err, ErrJoinCodeExpired):
		return CategoryConflict
	default:
		return CategoryInternal
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
