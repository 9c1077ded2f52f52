package router

import (
	"strings"
	"sync/atomic"

	"github.com/janmasethu/sakhi/internal/core"
)

const (
	ruleDefault    = "default"
	ruleLength     = "long_message"
	ruleClassifier = "classifier_signal"
)

// Router maps a message to a tier. It does no I/O and is safe for concurrent
// use; the policy can be swapped at runtime.
type Router struct {
	policy atomic.Pointer[Policy]
}

func New(p *Policy) *Router {
	r := &Router{}
	if p == nil {
		p = DefaultPolicy()
	}
	r.policy.Store(p)
	return r
}

func (r *Router) Policy() *Policy {
	return r.policy.Load()
}

func (r *Router) SetPolicy(p *Policy) {
	r.policy.Store(p)
}

// Decide applies the lexical policy: first matching rule, else the default.
func (r *Router) Decide(text string) core.RouteDecision {
	p := r.policy.Load()
	norm := Normalize(text)
	words := len(strings.Fields(norm))

	best := core.RouteDecision{Route: p.DefaultRoute, Intent: p.DefaultIntent, Rule: ruleDefault}
	for _, rule := range p.Rules {
		if rule.matches(norm, words) {
			best = core.RouteDecision{Route: rule.Route, Intent: rule.Intent, Rule: rule.Name}
			break
		}
	}

	if best.Route != core.RouteSLMDirect && best.Route != core.RouteOpenAIRAG &&
		p.EscalateOverWords > 0 && words > p.EscalateOverWords {
		best = core.RouteDecision{Route: core.RouteOpenAIRAG, Intent: p.EscalateIntent, Rule: ruleLength}
	}

	return best
}

// DecideClassified combines the lexical decision with the classifier signal.
// A knowledge signal lifts small talk to a retrieval tier; the signal never lowers a tier.
func (r *Router) DecideClassified(text string, cls core.Classification) core.RouteDecision {
	d := r.Decide(text)
	if d.Route == core.RouteSLMDirect && cls.NeedsKnowledge() {
		p := r.policy.Load()
		return core.RouteDecision{Route: core.RouteSLMRAG, Intent: p.DefaultIntent, Rule: ruleClassifier}
	}
	return d
}
