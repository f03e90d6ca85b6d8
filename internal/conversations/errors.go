package conversations

import (
	"errors"
	"net/http"
)

// Domain errors for conversation operations.
var (
	ErrNotFound      = errors.New("conversation not found")
	ErrDuplicate     = errors.New("conversation already exists")
	ErrInvalidSender = errors.New("invalid message sender")
	ErrEmptyContent  = errors.New("message content required")
)

// MapHTTPStatus maps conversation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidSender) || errors.Is(err, ErrEmptyContent) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
