package llm

import (
	"context"
	"fmt"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

// NewProvider creates the high-capability backend for the openai_rag tier.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.ChatProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicKey, cfg.Model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterKey, cfg.Model), nil
	case "ollama":
		return NewOllama(cfg.OllamaURL, "", cfg.Model), nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiKey, cfg.Model)
	case "custom":
		return NewCustomOpenAI(cfg.CustomURL, cfg.CustomKey, cfg.Model), nil
	case "mock":
		log.FromCtx(ctx).Warn().Msg("LLM_PROVIDER is mock, openai_rag replies are canned")
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewSLMProvider creates the small model backend, or the mock when no endpoint is set.
func NewSLMProvider(ctx context.Context, cfg *config.SLMConfig) core.ChatProvider {
	if cfg.IsMock() {
		log.FromCtx(ctx).Warn().Msg("SLM_API_URL is empty, small model runs in mock mode")
		return NewMock()
	}

	log.FromCtx(ctx).Info().
		Str("url", cfg.URL).
		Str("model", cfg.Model).
		Msg("starting slm provider")

	return NewCustomOpenAI(cfg.URL, cfg.APIKey, cfg.Model)
}
