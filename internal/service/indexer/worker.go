package indexer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 32
	defaultInterval    = 30 * time.Second
	defaultConcurrency = 4
)

// Worker embeds life stages and knowledge items that have no vector yet.
type Worker struct {
	repo        core.KnowledgeRepository
	embedder    core.Embedder
	interval    time.Duration
	batchSize   int
	concurrency int
}

func NewWorker(repo core.KnowledgeRepository, embedder core.Embedder, cfg *config.RAGConfig) *Worker {
	w := &Worker{
		repo:        repo,
		embedder:    embedder,
		interval:    defaultInterval,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	if cfg != nil {
		if cfg.IndexInterval > 0 {
			w.interval = cfg.IndexInterval
		}
		if cfg.IndexBatch > 0 {
			w.batchSize = cfg.IndexBatch
		}
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "indexer").Logger()
	logger.Info().Dur("interval", w.interval).Msg("starting knowledge indexer")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if n, err := w.RunOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("indexing batch failed")
		} else if n > 0 {
			logger.Info().Int("embedded", n).Msg("indexed knowledge")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down knowledge indexer")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) Shutdown(ctx context.Context) error {
	return nil
}

// RunOnce embeds one batch of pending stages and one batch of pending items.
// Single failures are logged and counted; the row is retried behind fresh rows
// until it runs out of attempts.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	stages, err := w.repo.PendingStages(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending stages: %w", err)
	}
	items, err := w.repo.PendingItems(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending items: %w", err)
	}

	logger := log.FromCtx(ctx)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, s := range stages {
		g.Go(func() error {
			vec, err := w.embedder.EncodePassage(gctx, stageText(s))
			if err != nil {
				logger.Warn().Err(err).Int64("stage_id", s.ID).Msg("failed to embed life stage")
				if err := w.repo.MarkStageFailed(gctx, s.ID); err != nil {
					return fmt.Errorf("record stage %d failure: %w", s.ID, err)
				}
				return nil
			}
			if err := w.repo.SetStageEmbedding(gctx, s.ID, vec); err != nil {
				return fmt.Errorf("store stage %d embedding: %w", s.ID, err)
			}
			done.Add(1)
			return nil
		})
	}

	for _, it := range items {
		g.Go(func() error {
			vec, err := w.embedder.EncodePassage(gctx, itemText(it))
			if err != nil {
				logger.Warn().Err(err).Int64("item_id", it.ID).Msg("failed to embed knowledge item")
				if err := w.repo.MarkItemFailed(gctx, it.ID); err != nil {
					return fmt.Errorf("record item %d failure: %w", it.ID, err)
				}
				return nil
			}
			if err := w.repo.SetItemEmbedding(gctx, it.ID, vec); err != nil {
				return fmt.Errorf("store item %d embedding: %w", it.ID, err)
			}
			done.Add(1)
			return nil
		})
	}

	err = g.Wait()
	return int(done.Load()), err
}

func stageText(s core.LifeStage) string {
	if s.Description == "" {
		return s.Name
	}
	return s.Name + ": " + s.Description
}

func itemText(it core.KnowledgeItem) string {
	if it.Title == "" {
		return it.Content
	}
	return it.Title + "\n" + it.Content
}
