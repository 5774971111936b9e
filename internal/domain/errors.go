// Package domain holds errors shared across the listing search subsystem.
package domain

import "errors"

var (
	// ErrInvalidFilter signals a malformed search filter. Transport maps it
	// to a 400 response.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrIndexUnavailable signals that the index backend could not serve
	// a request and no relational fallback was possible.
	ErrIndexUnavailable = errors.New("index backend unavailable")
)
