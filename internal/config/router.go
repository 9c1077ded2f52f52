package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/janmasethu/sakhi/pkg/log"
)

type RouterConfig struct {
	// PolicyPath overrides the embedded routing policy. Watched for changes when set.
	PolicyPath string `env:"ROUTER_POLICY_PATH"`
}

func NewRouterConfig(ctx context.Context) *RouterConfig {
	c := &RouterConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Router config")
	}
	return c
}
