package tools

import "errors"

// Sentinel errors for read-tool operations.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("tool unavailable")
)
