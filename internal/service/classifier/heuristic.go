package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
)

var smallTalkWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "namaste": true, "namaskar": true,
	"thanks": true, "thank": true, "you": true, "ok": true, "okay": true,
	"good": true, "morning": true, "evening": true, "night": true, "bye": true,
	"who": true, "are": true, "what": true, "your": true, "name": true, "there": true,
}

// Heuristic classifies without a model. It backs the mock mode.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Classify(ctx context.Context, text, declaredLang string) (core.Classification, error) {
	if err := ctx.Err(); err != nil {
		return core.Classification{}, fmt.Errorf("classify: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return core.Classification{}, fmt.Errorf("classify: %w: empty text", core.ErrInvalidRequest)
	}

	return core.Classification{
		Language:   resolveLanguage("", 0, text, declaredLang),
		Signal:     heuristicSignal(text),
		Confidence: 0,
	}, nil
}

// heuristicSignal is NO only when every word is small talk.
func heuristicSignal(text string) core.Signal {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && r < 0x80
	})
	if len(words) == 0 || len(words) > 5 {
		return core.SignalYes
	}
	for _, w := range words {
		if !smallTalkWords[w] {
			return core.SignalYes
		}
	}
	return core.SignalNo
}
