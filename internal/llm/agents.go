package llm

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type client struct {
	cfg gaconfig.AgentConfig
}

// New creates a Caller backed by a go-agents chat agent. The agent itself is
// constructed per call; provider clients are cheap and this keeps the Caller
// safe for concurrent use.
func New(cfg gaconfig.AgentConfig) Caller {
	return &client{cfg: cfg}
}

func (c *client) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrUnavailable, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		if IsRateLimited(err) {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("%w: chat call: %w", ErrUnavailable, err)
	}

	return resp.Content(), nil
}
