package llm

import (
	"context"
	"sync"
)

// ScriptStep is a single canned exchange for a ScriptCaller.
type ScriptStep struct {
	Response string
	Err      error
}

// ScriptCaller replays a fixed sequence of responses and records the prompts
// it received. It backs tests for extraction and pipeline behavior without a
// live provider.
type ScriptCaller struct {
	mu      sync.Mutex
	steps   []ScriptStep
	next    int
	Prompts []string
}

// NewScript creates a ScriptCaller that replays steps in order. Once the
// script is exhausted, the final step repeats.
func NewScript(steps ...ScriptStep) *ScriptCaller {
	return &ScriptCaller{steps: steps}
}

func (s *ScriptCaller) Chat(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)

	if len(s.steps) == 0 {
		return "", ErrUnavailable
	}

	step := s.steps[min(s.next, len(s.steps)-1)]
	s.next++

	return step.Response, step.Err
}

// Calls returns how many times Chat has been invoked.
func (s *ScriptCaller) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}
