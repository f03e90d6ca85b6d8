// Package llm provides the language-model caller used by intent extraction
// and the decision pipeline. The model is treated as a black-box text-in,
// text-out service behind the Caller interface.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Caller sends a prompt to a language model and returns its raw text response.
type Caller interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// ErrRateLimited signals that the upstream provider rejected the call due to
// rate limiting. Callers must not retry against the same limiter.
var ErrRateLimited = errors.New("upstream rate limited")

// ErrUnavailable signals that the provider could not be reached or refused
// the request (network, auth, malformed response).
var ErrUnavailable = errors.New("model unavailable")

// IsRateLimited reports whether err indicates upstream rate limiting, either
// as the sentinel or as a provider error mentioning HTTP 429.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}
