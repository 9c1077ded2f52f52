package router

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/janmasethu/sakhi/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

const (
	MatchExact    = "exact"
	MatchPrefix   = "prefix"
	MatchContains = "contains"
)

type Rule struct {
	Name     string     `yaml:"name"`
	Route    core.Route `yaml:"route"`
	Intent   string     `yaml:"intent"`
	Match    string     `yaml:"match"`
	MaxWords int        `yaml:"max_words"`
	Phrases  []string   `yaml:"phrases"`
}

type Policy struct {
	DefaultRoute      core.Route `yaml:"default_route"`
	DefaultIntent     string     `yaml:"default_intent"`
	EscalateOverWords int        `yaml:"escalate_over_words"`
	EscalateIntent    string     `yaml:"escalate_intent"`
	Rules             []Rule     `yaml:"rules"`
}

func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic("embedded routing policy is invalid: " + err.Error())
	}
	return p
}

func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a policy. Phrases are normalized the same
// way messages are.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	if p.DefaultRoute == "" {
		p.DefaultRoute = core.RouteSLMRAG
	}
	// Only small talk may short-circuit, so the fallback can never be slm_direct.
	if !p.DefaultRoute.Valid() || p.DefaultRoute == core.RouteSLMDirect {
		return nil, fmt.Errorf("invalid default_route %q", p.DefaultRoute)
	}
	if p.DefaultIntent == "" {
		p.DefaultIntent = "medical_query"
	}
	if p.EscalateIntent == "" {
		p.EscalateIntent = "complex_medical"
	}

	if len(p.Rules) == 0 {
		return nil, fmt.Errorf("policy has no rules")
	}

	sawDirect := false
	for i := range p.Rules {
		r := &p.Rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if !r.Route.Valid() {
			return nil, fmt.Errorf("rule %s: invalid route %q", r.Name, r.Route)
		}
		if r.Route == core.RouteSLMDirect {
			sawDirect = true
		}
		if r.Route == core.RouteOpenAIRAG && sawDirect {
			return nil, fmt.Errorf("rule %s: openai_rag rules must precede slm_direct rules", r.Name)
		}
		switch r.Match {
		case "":
			r.Match = MatchContains
		case MatchExact, MatchPrefix, MatchContains:
		default:
			return nil, fmt.Errorf("rule %s: invalid match %q", r.Name, r.Match)
		}
		if r.Intent == "" {
			r.Intent = r.Name
		}

		phrases := make([]string, 0, len(r.Phrases))
		for _, ph := range r.Phrases {
			if n := Normalize(ph); n != "" {
				phrases = append(phrases, n)
			}
		}
		if len(phrases) == 0 {
			return nil, fmt.Errorf("rule %s: no phrases", r.Name)
		}
		r.Phrases = phrases
	}

	return &p, nil
}

func (r Rule) matches(text string, words int) bool {
	if r.MaxWords > 0 && words > r.MaxWords {
		return false
	}
	padded := " " + text + " "
	for _, ph := range r.Phrases {
		switch r.Match {
		case MatchExact:
			if text == ph {
				return true
			}
		case MatchPrefix:
			if text == ph || strings.HasPrefix(text, ph+" ") {
				return true
			}
		default:
			if strings.Contains(padded, " "+ph+" ") {
				return true
			}
		}
	}
	return false
}

// Normalize lowercases, turns punctuation into spaces and collapses whitespace.
// Apostrophes are dropped so "what's" and "whats" compare equal.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
