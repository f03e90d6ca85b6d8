package jobs

import (
	"errors"
	"net/http"
)

// Domain errors for job operations.
var (
	ErrNotFound  = errors.New("analysis job not found")
	ErrDuplicate = errors.New("an analysis for this item is already in progress")
	ErrTerminal  = errors.New("analysis job already reached a terminal state")
	ErrQueueFull = errors.New("analysis queue is full")
)

// MapHTTPStatus maps job domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrTerminal) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrQueueFull) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
