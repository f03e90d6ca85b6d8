package audit

import (
	"errors"
	"net/http"
)

// Domain errors for audit operations.
var (
	ErrNotFound  = errors.New("audit record not found")
	ErrDuplicate = errors.New("audit record already exists")
)

// MapHTTPStatus maps audit domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
