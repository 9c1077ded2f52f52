package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/janmasethu/sakhi/pkg/log"
)

// SLMConfig configures the small model used for classification and the two SLM tiers.
// An empty URL switches the small model to the built-in mock.
type SLMConfig struct {
	URL     string        `env:"SLM_API_URL"`
	APIKey  string        `env:"SLM_API_KEY" secret:"true"`
	Model   string        `env:"SLM_MODEL" envDefault:"sakhi-slm"`
	Timeout time.Duration `env:"SLM_TIMEOUT" envDefault:"20s"`

	ClassifierTimeout time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"10s"`
}

func NewSLMConfig(ctx context.Context) *SLMConfig {
	c := &SLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse SLM config")
	}
	return c
}

func (c SLMConfig) IsMock() bool {
	return c.URL == ""
}
