package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

const (
	defaultLanguage = "en"
	// MinConfidence below which the model's language guess is not trusted.
	MinConfidence = 0.6
)

const systemPrompt = `You classify messages sent to Sakhi, a maternal and reproductive health assistant.
Reply with one JSON object and nothing else: {"language": "<ISO 639-1 code>", "signal": "YES" or "NO", "confidence": <0..1>}.
signal is YES when answering needs medical, pregnancy, fertility, nutrition or child care knowledge.
signal is NO for greetings, thanks, questions about Sakhi itself and other small talk.
confidence is how sure you are about the language.`

// LLM classifies with the small model.
type LLM struct {
	provider core.ChatProvider
	timeout  time.Duration
}

func NewLLM(provider core.ChatProvider, timeout time.Duration) *LLM {
	return &LLM{provider: provider, timeout: timeout}
}

type verdict struct {
	Language   string   `json:"language"`
	Signal     string   `json:"signal"`
	Confidence *float64 `json:"confidence"`
}

func (c *LLM) Classify(ctx context.Context, text, declaredLang string) (core.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return core.Classification{}, fmt.Errorf("classify: %w: empty text", core.ErrInvalidRequest)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.provider.Chat(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: text},
	})
	if err != nil {
		return core.Classification{}, fmt.Errorf("classify: %w", err)
	}

	v, err := parseVerdict(reply.Content)
	if err != nil {
		return core.Classification{}, fmt.Errorf("classify: %w", err)
	}

	confidence := 1.0
	if v.Confidence != nil {
		confidence = *v.Confidence
	}

	cls := core.Classification{
		Signal:     core.Signal(strings.ToUpper(strings.TrimSpace(v.Signal))),
		Confidence: confidence,
		Language:   resolveLanguage(normalizeLanguage(v.Language), confidence, text, declaredLang),
	}
	if cls.Signal != core.SignalYes && cls.Signal != core.SignalNo {
		return core.Classification{}, fmt.Errorf("classify: unexpected signal %q", v.Signal)
	}

	log.FromCtx(ctx).Debug().
		Str("language", cls.Language).
		Str("signal", string(cls.Signal)).
		Float64("confidence", cls.Confidence).
		Msg("message classified")

	return cls, nil
}

func parseVerdict(content string) (verdict, error) {
	jsonStr := extractJSONObject(content)
	if jsonStr == "" {
		return verdict{}, fmt.Errorf("no JSON object found in response")
	}

	var v verdict
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return verdict{}, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return v, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content[start:], "}")
	if end == -1 {
		return ""
	}

	return content[start : start+end+1]
}

// normalizeLanguage accepts two or three letter codes and region tags like en-IN.
func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if len(lang) < 2 || len(lang) > 3 {
		return ""
	}
	for _, r := range lang {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return lang
}

// resolveLanguage prefers a confident model answer, then the script of the
// text, then the declared language.
func resolveLanguage(modelLang string, confidence float64, text, declared string) string {
	if modelLang != "" && confidence >= MinConfidence {
		return modelLang
	}
	if lang := DetectScript(text); lang != "" {
		return lang
	}
	if lang := normalizeLanguage(declared); lang != "" {
		return lang
	}
	if modelLang != "" {
		return modelLang
	}
	return defaultLanguage
}
