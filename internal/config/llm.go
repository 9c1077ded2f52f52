package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/janmasethu/sakhi/pkg/log"
)

// LLMConfig configures the high-capability backend behind the openai_rag tier.
type LLMConfig struct {
	Provider string        `env:"LLM_PROVIDER" envDefault:"openai"`
	Model    string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	Timeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	OpenAIKey     string `env:"OPENAI_API_KEY" secret:"true"`
	AnthropicKey  string `env:"ANTHROPIC_API_KEY" secret:"true"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY" secret:"true"`
	GeminiKey     string `env:"GEMINI_API_KEY" secret:"true"`

	OllamaURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	CustomURL string `env:"CUSTOM_BASE_URL"`
	CustomKey string `env:"CUSTOM_API_KEY" secret:"true"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
