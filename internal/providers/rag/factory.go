package rag

import (
	"context"
	"fmt"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/providers/llm"
	"github.com/janmasethu/sakhi/pkg/log"
)

func NewEmbeddingModel(ctx context.Context, cfg *config.RAGConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.EmbeddingProvider).
		Str("model", cfg.EmbeddingModel).
		Int("dims", cfg.Dimensions).
		Msg("starting embedding model")

	switch cfg.EmbeddingProvider {
	case "openai":
		return NewOpenAIEmbedder(cfg.EmbeddingURL, cfg.EmbeddingKey, cfg.EmbeddingModel, cfg.Dimensions), nil
	case "gemini":
		client, err := llm.NewGemini(ctx, cfg.EmbeddingKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedding model: %w", err)
		}
		return NewGeminiEmbedder(client, cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}
}
