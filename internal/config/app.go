package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/janmasethu/sakhi/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SAKHI_RUNTIME_PATH" envDefault:".sakhi"`
	LogJSON     bool   `env:"SAKHI_LOG_JSON" envDefault:"false"`

	// Transport flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableIndexer  bool `env:"ENABLE_INDEXER" envDefault:"true"`

	HistoryLimit       int           `env:"HISTORY_LIMIT" envDefault:"5"`
	PersistenceTimeout time.Duration `env:"PERSISTENCE_TIMEOUT" envDefault:"5s"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = GetRuntimePath()
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "sakhi.db")
}
