package core

import (
	"context"
)

// ConversationLog is an append-only per-user message log.
type ConversationLog interface {
	Append(ctx context.Context, userID string, role Role, content, language string) error
	// LastN returns at most n messages in chronological order.
	LastN(ctx context.Context, userID string, n int) ([]Message, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	GetByPhone(ctx context.Context, phone string) (*Profile, error)
	Upsert(ctx context.Context, p Profile) (*Profile, error)
}

type KnowledgeRepository interface {
	UpsertStage(ctx context.Context, s LifeStage) (int64, error)
	AddItem(ctx context.Context, item KnowledgeItem) (int64, bool, error)

	PendingStages(ctx context.Context, limit int) ([]LifeStage, error)
	PendingItems(ctx context.Context, limit int) ([]KnowledgeItem, error)
	SetStageEmbedding(ctx context.Context, id int64, vec []float32) error
	SetItemEmbedding(ctx context.Context, id int64, vec []float32) error
	// MarkStageFailed and MarkItemFailed count a failed embedding attempt.
	MarkStageFailed(ctx context.Context, id int64) error
	MarkItemFailed(ctx context.Context, id int64) error

	SearchStages(ctx context.Context, query []float32, k int) ([]ScoredStage, error)
	// SearchItems restricts to the given stages when stageIDs is non-empty.
	SearchItems(ctx context.Context, query []float32, stageIDs []int64, k int) ([]RetrievalItem, error)
}
