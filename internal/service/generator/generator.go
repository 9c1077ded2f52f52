package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

// base holds what every variant shares: one backend, one tier, one deadline.
type base struct {
	provider core.ChatProvider
	route    core.Route
	timeout  time.Duration
}

// call runs the backend under the tier timeout. Every failure, including a
// blank answer, comes back as a generation StageError.
func (b base) call(ctx context.Context, messages []core.ChatMessage) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := b.provider.Chat(ctx, messages)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return "", core.NewStageError(core.StageGeneration, b.route, err)
	}

	text := strings.TrimSpace(reply.Content)
	if text == "" {
		return "", core.NewStageError(core.StageGeneration, b.route, core.ErrEmptyOutput)
	}

	log.FromCtx(ctx).Debug().
		Str("route", string(b.route)).
		Dur("took", time.Since(start)).
		Int("chars", len(text)).
		Msg("generated reply")

	return text, nil
}

// Direct answers small talk. It sees only the message, language and user name.
type Direct struct {
	base
}

func NewDirect(provider core.ChatProvider, timeout time.Duration) *Direct {
	return &Direct{base{provider: provider, route: core.RouteSLMDirect, timeout: timeout}}
}

func (d *Direct) Generate(ctx context.Context, in core.GenerationInput) (string, error) {
	return d.call(ctx, directMessages(in))
}

// Grounded answers with retrieved context and recent history.
type Grounded struct {
	base
}

func NewGrounded(provider core.ChatProvider, route core.Route, timeout time.Duration) *Grounded {
	return &Grounded{base{provider: provider, route: route, timeout: timeout}}
}

func (g *Grounded) Generate(ctx context.Context, in core.GenerationInput) (string, error) {
	return g.call(ctx, groundedMessages(in))
}

// Set holds one generator per tier.
type Set struct {
	direct    core.Generator
	slmRAG    core.Generator
	openaiRAG core.Generator
}

func NewSet(direct, slmRAG, openaiRAG core.Generator) *Set {
	return &Set{direct: direct, slmRAG: slmRAG, openaiRAG: openaiRAG}
}

// NewDefaultSet wires the small model to the two SLM tiers and the large model to openai_rag.
func NewDefaultSet(slm, large core.ChatProvider, slmTimeout, largeTimeout time.Duration) *Set {
	return NewSet(
		NewDirect(slm, slmTimeout),
		NewGrounded(slm, core.RouteSLMRAG, slmTimeout),
		NewGrounded(large, core.RouteOpenAIRAG, largeTimeout),
	)
}

func (s *Set) For(route core.Route) (core.Generator, error) {
	switch route {
	case core.RouteSLMDirect:
		return s.direct, nil
	case core.RouteSLMRAG:
		return s.slmRAG, nil
	case core.RouteOpenAIRAG:
		return s.openaiRAG, nil
	default:
		return nil, fmt.Errorf("no generator for route %q", route)
	}
}
