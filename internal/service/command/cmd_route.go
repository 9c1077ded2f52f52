package command

import (
	"context"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
)

type Decider interface {
	Decide(text string) core.RouteDecision
}

// RouteCommand shows which tier a message would take without running a turn.
type RouteCommand struct {
	router    Decider
	formatter *ResponseFormatter
}

func NewRouteCommand(router Decider) *RouteCommand {
	return &RouteCommand{router: router, formatter: NewResponseFormatter()}
}

func (c *RouteCommand) Name() string        { return "route" }
func (c *RouteCommand) Description() string { return "Show how a message would be routed" }

func (c *RouteCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Usage("/route <message>"), nil
	}

	d := c.router.Decide(strings.Join(args, " "))
	return c.formatter.Combine(
		c.formatter.Title("Routing"),
		c.formatter.Label("Route", string(d.Route)),
		c.formatter.Label("Intent", d.Intent),
		c.formatter.Label("Rule", d.Rule),
	), nil
}
