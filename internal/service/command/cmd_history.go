package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/janmasethu/sakhi/internal/core"
)

const defaultHistoryShown = 5

type HistoryCommand struct {
	conversation core.ConversationLog
	formatter    *ResponseFormatter
}

func NewHistoryCommand(conversation core.ConversationLog) *HistoryCommand {
	return &HistoryCommand{conversation: conversation, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show your recent messages" }

func (c *HistoryCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	n := defaultHistoryShown
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 || v > 50 {
			return c.formatter.Usage("/history [1-50]"), nil
		}
		n = v
	}

	msgs, err := c.conversation.LastN(ctx, userID, n)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(msgs) == 0 {
		return c.formatter.Title("No messages yet"), nil
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", m.Role, m.CreatedAt.Format("02 Jan 15:04"), clip(m.Content, 120)))
	}
	return c.formatter.Combine(
		c.formatter.Title("Recent messages"),
		c.formatter.List(lines),
	), nil
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
