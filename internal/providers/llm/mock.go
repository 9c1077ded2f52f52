package llm

import (
	"context"
	"fmt"

	"github.com/janmasethu/sakhi/internal/core"
)

// Mock answers without a network call. Used when no small model endpoint is configured.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Chat(ctx context.Context, history []core.ChatMessage) (core.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return core.ChatMessage{}, err
	}

	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == core.RoleUser {
			last = history[i].Content
			break
		}
	}
	return core.ChatMessage{
		Role:    core.RoleAssistant,
		Content: fmt.Sprintf("[mock] %s heard you: %s", core.SakhiName, last),
	}, nil
}
