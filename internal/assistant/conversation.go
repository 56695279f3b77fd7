package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/ingest"
)

// Completer produces a JSON completion for a chat history.
type Completer interface {
	CompleteJSON(ctx context.Context, messages []Message) (string, error)
}

// Conversation is a multi-turn asset generation session. Only turns that
// produced a usable tree are kept in the history.
type Conversation struct {
	completer Completer
	builder   *ingest.Builder
	selector  string
	logger    *slog.Logger

	mu      sync.Mutex
	history []Message
}

// NewConversation starts a session. selector picks the tree out of each
// reply (ingest.DefaultSelector when empty).
func NewConversation(completer Completer, selector string, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{
		completer: completer,
		builder:   ingest.NewBuilder(logger),
		selector:  selector,
		logger:    logger,
	}
}

// Generate sends prompt with the prior turns and returns the tree from the
// reply. A failed call leaves the history unchanged.
func (c *Conversation) Generate(ctx context.Context, prompt string) (api.Node, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return api.Node{}, errors.New("assistant generate: prompt required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]Message, 0, len(c.history)+2)
	messages = append(messages, Message{Role: "system", Content: SystemPrompt})
	messages = append(messages, c.history...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	content, err := c.completer.CompleteJSON(ctx, messages)
	if err != nil {
		return api.Node{}, err
	}
	root, err := c.builder.ParsePayload(content, c.selector)
	if err != nil {
		return api.Node{}, fmt.Errorf("assistant generate: %w (payload snippet: %s)", err, snippet(content))
	}
	c.history = append(c.history,
		Message{Role: "user", Content: prompt},
		Message{Role: "assistant", Content: content},
	)
	c.logger.Debug("assistant generated tree",
		"nodes", root.Count(), "turns", len(c.history)/2)
	return root, nil
}

// Turns returns the number of completed exchanges.
func (c *Conversation) Turns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history) / 2
}

// Reset forgets all prior turns.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// Generate is a single-turn request with no history.
func (c *Client) Generate(ctx context.Context, prompt, selector string) (api.Node, error) {
	return NewConversation(c, selector, nil).Generate(ctx, prompt)
}
