package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/janmasethu/sakhi/pkg/log"
)

type RAGConfig struct {
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`
	EmbeddingModel    string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingURL      string `env:"EMBEDDING_API_URL" envDefault:"https://api.openai.com"`
	EmbeddingKey      string `env:"EMBEDDING_API_KEY" secret:"true"`
	Dimensions        int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`

	TopK          int           `env:"RAG_TOP_K" envDefault:"3"`
	StageK        int           `env:"RAG_STAGE_K" envDefault:"2"`
	MinStageScore float32       `env:"RAG_MIN_STAGE_SCORE" envDefault:"0.3"`
	TokenBudget   int           `env:"RAG_TOKEN_BUDGET" envDefault:"1200"`
	Timeout       time.Duration `env:"RAG_TIMEOUT" envDefault:"8s"`

	IndexInterval time.Duration `env:"RAG_INDEX_INTERVAL" envDefault:"30s"`
	IndexBatch    int           `env:"RAG_INDEX_BATCH" envDefault:"32"`
	ChunkTokens   int           `env:"RAG_CHUNK_TOKENS" envDefault:"400"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	c := &RAGConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return c
}
