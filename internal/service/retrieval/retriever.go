package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

type SearchRepository interface {
	SearchStages(ctx context.Context, query []float32, k int) ([]core.ScoredStage, error)
	SearchItems(ctx context.Context, query []float32, stageIDs []int64, k int) ([]core.RetrievalItem, error)
}

type Config struct {
	TopK          int
	StageK        int
	MinStageScore float32
	Timeout       time.Duration
}

func ConfigFrom(cfg *config.RAGConfig) Config {
	return Config{
		TopK:          cfg.TopK,
		StageK:        cfg.StageK,
		MinStageScore: cfg.MinStageScore,
		Timeout:       cfg.Timeout,
	}
}

// Retriever narrows by life stage first and ranks items inside the chosen
// stages, falling back to an unscoped search when that yields nothing.
type Retriever struct {
	embedder core.Embedder
	repo     SearchRepository
	cfg      Config
}

func NewRetriever(embedder core.Embedder, repo SearchRepository, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.StageK <= 0 {
		cfg.StageK = 2
	}
	return &Retriever{embedder: embedder, repo: repo, cfg: cfg}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]core.RetrievalItem, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	logger := log.FromCtx(ctx)

	vec, err := r.embedder.EncodeQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	stages, err := r.repo.SearchStages(ctx, vec, r.cfg.StageK)
	if err != nil {
		return nil, fmt.Errorf("search stages: %w", err)
	}

	stageIDs := make([]int64, 0, len(stages))
	for _, s := range stages {
		if s.Score >= r.cfg.MinStageScore {
			stageIDs = append(stageIDs, s.ID)
		}
	}

	if len(stageIDs) > 0 {
		items, err := r.repo.SearchItems(ctx, vec, stageIDs, r.cfg.TopK)
		if err != nil {
			return nil, fmt.Errorf("search items in stages: %w", err)
		}
		if len(items) > 0 {
			logger.Debug().Int("stages", len(stageIDs)).Int("items", len(items)).Msg("scoped retrieval")
			return items, nil
		}
	}

	items, err := r.repo.SearchItems(ctx, vec, nil, r.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	logger.Debug().Int("items", len(items)).Msg("unscoped retrieval")
	return items, nil
}
