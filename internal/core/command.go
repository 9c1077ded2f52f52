package core

import "context"

// Command is a slash command handled by a transport before a turn runs.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, userID string, args []string) (string, error)
}

// TurnHandler runs a conversational turn. Transports depend on this instead of
// the concrete orchestrator.
type TurnHandler interface {
	Handle(ctx context.Context, req TurnRequest) (*TurnResult, error)
}
