package sqlite

import (
	"context"
	"testing"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedKnowledge(t *testing.T, repo *KnowledgeRepo) (pregnancy, postpartum int64) {
	t.Helper()
	ctx := context.Background()

	var err error
	pregnancy, err = repo.UpsertStage(ctx, core.LifeStage{Slug: "pregnancy", Name: "Pregnancy"})
	require.NoError(t, err)
	postpartum, err = repo.UpsertStage(ctx, core.LifeStage{Slug: "postpartum", Name: "Postpartum"})
	require.NoError(t, err)

	require.NoError(t, repo.SetStageEmbedding(ctx, pregnancy, []float32{1, 0, 0}))
	require.NoError(t, repo.SetStageEmbedding(ctx, postpartum, []float32{0, 1, 0}))

	items := []struct {
		item core.KnowledgeItem
		vec  []float32
	}{
		{core.KnowledgeItem{LifeStageID: pregnancy, SourceType: core.SourceFAQ, Content: "Folic acid prevents neural tube defects.", InfographicURL: "https://cdn/folic.png"}, []float32{1, 0.1, 0}},
		{core.KnowledgeItem{LifeStageID: pregnancy, SourceType: core.SourceArticle, Content: "Iron rich foods include spinach."}, []float32{0.9, 0, 0.4}},
		{core.KnowledgeItem{LifeStageID: postpartum, SourceType: core.SourceFAQ, Content: "Breastfeeding basics.", YouTubeLink: "https://youtu.be/x"}, []float32{0, 1, 0}},
		{core.KnowledgeItem{SourceType: core.SourceArticle, Content: "General wellness."}, []float32{0, 0, 1}},
	}
	for _, it := range items {
		id, created, err := repo.AddItem(ctx, it.item)
		require.NoError(t, err)
		require.True(t, created)
		require.NoError(t, repo.SetItemEmbedding(ctx, id, it.vec))
	}
	return pregnancy, postpartum
}

func TestKnowledgeRepo_SearchStages(t *testing.T) {
	repo := NewKnowledgeRepo(newTestDB(t))
	pregnancy, _ := seedKnowledge(t, repo)

	stages, err := repo.SearchStages(context.Background(), []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, pregnancy, stages[0].ID)
	assert.InDelta(t, 1.0, stages[0].Score, 1e-6)
}

func TestKnowledgeRepo_SearchItemsScoped(t *testing.T) {
	repo := NewKnowledgeRepo(newTestDB(t))
	pregnancy, _ := seedKnowledge(t, repo)

	items, err := repo.SearchItems(context.Background(), []float32{0, 1, 0}, []int64{pregnancy}, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, "Pregnancy", it.LifeStage)
	}

	all, err := repo.SearchItems(context.Background(), []float32{0, 1, 0}, nil, 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Breastfeeding basics.", all[0].Content)
	assert.Equal(t, "https://youtu.be/x", all[0].YouTubeLink)
}

func TestKnowledgeRepo_AddItemDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewKnowledgeRepo(newTestDB(t))

	item := core.KnowledgeItem{SourceType: core.SourceFAQ, Title: "Q", Content: "A"}
	id1, created, err := repo.AddItem(ctx, item)
	require.NoError(t, err)
	assert.True(t, created)

	id2, created, err := repo.AddItem(ctx, item)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id1, id2)

	pending, err := repo.PendingItems(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestKnowledgeRepo_UpsertStageResetsEmbeddingOnChange(t *testing.T) {
	ctx := context.Background()
	repo := NewKnowledgeRepo(newTestDB(t))

	id, err := repo.UpsertStage(ctx, core.LifeStage{Slug: "pregnancy", Name: "Pregnancy"})
	require.NoError(t, err)
	require.NoError(t, repo.SetStageEmbedding(ctx, id, []float32{1, 0}))

	same, err := repo.UpsertStage(ctx, core.LifeStage{Slug: "pregnancy", Name: "Pregnancy"})
	require.NoError(t, err)
	assert.Equal(t, id, same)
	pending, err := repo.PendingStages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = repo.UpsertStage(ctx, core.LifeStage{Slug: "pregnancy", Name: "Pregnancy", Description: "Weeks 1 to 40"})
	require.NoError(t, err)
	pending, err = repo.PendingStages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Weeks 1 to 40", pending[0].Description)
}

func TestKnowledgeRepo_FailedItemsYieldToFreshOnes(t *testing.T) {
	repo := NewKnowledgeRepo(newTestDB(t))
	ctx := context.Background()

	bad, _, err := repo.AddItem(ctx, core.KnowledgeItem{SourceType: core.SourceFAQ, Content: "unembeddable"})
	require.NoError(t, err)
	good, _, err := repo.AddItem(ctx, core.KnowledgeItem{SourceType: core.SourceFAQ, Content: "Calcium needs rise in pregnancy."})
	require.NoError(t, err)

	pending, err := repo.PendingItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bad, pending[0].ID)

	require.NoError(t, repo.MarkItemFailed(ctx, bad))
	pending, err = repo.PendingItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, good, pending[0].ID)

	require.NoError(t, repo.SetItemEmbedding(ctx, good, []float32{1, 0}))
	for i := 1; i < MaxEmbedAttempts; i++ {
		require.NoError(t, repo.MarkItemFailed(ctx, bad))
	}
	pending, err = repo.PendingItems(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestKnowledgeRepo_StageRewriteResetsAttempts(t *testing.T) {
	repo := NewKnowledgeRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.UpsertStage(ctx, core.LifeStage{Slug: "newborn", Name: "Newborn"})
	require.NoError(t, err)
	for i := 0; i < MaxEmbedAttempts; i++ {
		require.NoError(t, repo.MarkStageFailed(ctx, id))
	}
	pending, err := repo.PendingStages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = repo.UpsertStage(ctx, core.LifeStage{Slug: "newborn", Name: "Newborn", Description: "First 28 days"})
	require.NoError(t, err)
	pending, err = repo.PendingStages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
}

func TestKnowledgeRepo_SearchAcrossEmbeddingDimensions(t *testing.T) {
	tests := []struct {
		name string
		dims int
	}{
		{"gemini text-embedding-004", 768},
		{"openai text-embedding-3-small", 1536},
		{"openai text-embedding-3-large", 3072},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewKnowledgeRepo(newTestDB(t))
			ctx := context.Background()

			near := make([]float32, tt.dims)
			far := make([]float32, tt.dims)
			near[0], far[tt.dims-1] = 1, 1

			nearID, _, err := repo.AddItem(ctx, core.KnowledgeItem{SourceType: core.SourceFAQ, Content: "near"})
			require.NoError(t, err)
			farID, _, err := repo.AddItem(ctx, core.KnowledgeItem{SourceType: core.SourceFAQ, Content: "far"})
			require.NoError(t, err)
			require.NoError(t, repo.SetItemEmbedding(ctx, nearID, near))
			require.NoError(t, repo.SetItemEmbedding(ctx, farID, far))

			items, err := repo.SearchItems(ctx, near, nil, 2)
			require.NoError(t, err)
			require.NotEmpty(t, items)
			assert.Equal(t, nearID, items[0].ID)
			assert.InDelta(t, 1.0, items[0].Score, 1e-6)
		})
	}
}
