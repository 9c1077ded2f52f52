package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, f.err
}

func (f *fakeEmbedder) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, f.err
}

func (f *fakeEmbedder) Dims() int { return 2 }

type fakeRepo struct {
	stages      []core.ScoredStage
	scoped      []core.RetrievalItem
	unscoped    []core.RetrievalItem
	stageErr    error
	gotStageIDs [][]int64
}

func (f *fakeRepo) SearchStages(ctx context.Context, q []float32, k int) ([]core.ScoredStage, error) {
	return f.stages, f.stageErr
}

func (f *fakeRepo) SearchItems(ctx context.Context, q []float32, stageIDs []int64, k int) ([]core.RetrievalItem, error) {
	f.gotStageIDs = append(f.gotStageIDs, stageIDs)
	if len(stageIDs) > 0 {
		return f.scoped, nil
	}
	return f.unscoped, nil
}

func stage(id int64, score float32) core.ScoredStage {
	return core.ScoredStage{LifeStage: core.LifeStage{ID: id}, Score: score}
}

func TestRetrieve_Scoped(t *testing.T) {
	repo := &fakeRepo{
		stages: []core.ScoredStage{stage(1, 0.9), stage(2, 0.1)},
		scoped: []core.RetrievalItem{{ID: 10, Content: "scoped"}},
	}
	r := NewRetriever(&fakeEmbedder{}, repo, Config{TopK: 3, StageK: 2, MinStageScore: 0.3})

	items, err := r.Retrieve(context.Background(), "folic acid")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "scoped", items[0].Content)
	assert.Equal(t, [][]int64{{1}}, repo.gotStageIDs)
}

func TestRetrieve_FallsBackToUnscoped(t *testing.T) {
	tests := []struct {
		name   string
		stages []core.ScoredStage
		calls  int
	}{
		{"no stages", nil, 1},
		{"stages below threshold", []core.ScoredStage{stage(1, 0.1)}, 1},
		{"scoped search empty", []core.ScoredStage{stage(1, 0.9)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{stages: tt.stages, unscoped: []core.RetrievalItem{{ID: 1, Content: "any"}}}
			r := NewRetriever(&fakeEmbedder{}, repo, Config{MinStageScore: 0.3})

			items, err := r.Retrieve(context.Background(), "iron")
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Len(t, repo.gotStageIDs, tt.calls)
			assert.Nil(t, repo.gotStageIDs[len(repo.gotStageIDs)-1])
		})
	}
}

func TestRetrieve_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewRetriever(&fakeEmbedder{err: boom}, &fakeRepo{}, Config{}).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(&fakeEmbedder{}, &fakeRepo{stageErr: boom}, Config{Timeout: time.Second}).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestBuildContext_OrderAndBudget(t *testing.T) {
	items := []core.RetrievalItem{
		{SourceType: core.SourceFAQ, Title: "Folic acid", Content: "Take 400 mcg daily."},
		{SourceType: core.SourceArticle, Content: "   "},
		{SourceType: core.SourceArticle, Content: "Leafy greens are rich in folate."},
	}

	ctx := BuildContext(items, 1000)
	assert.False(t, ctx.Truncated)
	assert.Equal(t, 2, ctx.Items)
	assert.Equal(t, "[FAQ] Folic acid\nTake 400 mcg daily.\n\n[ARTICLE] Leafy greens are rich in folate.", ctx.Text)
	assert.Greater(t, ctx.Tokens, 0)
}

func TestBuildContext_BoundedRegardlessOfCorpusSize(t *testing.T) {
	var items []core.RetrievalItem
	for i := 0; i < 200; i++ {
		items = append(items, core.RetrievalItem{SourceType: core.SourceArticle, Content: strings.Repeat("iron folate calcium ", 50)})
	}

	ctx := BuildContext(items, 120)
	assert.True(t, ctx.Truncated)
	assert.LessOrEqual(t, ctx.Tokens, 120)
	assert.Less(t, len(ctx.Text), 120*charsPerToken*2)
}

func TestBuildContext_Empty(t *testing.T) {
	ctx := BuildContext(nil, 100)
	assert.True(t, ctx.Empty())
	assert.Zero(t, ctx.Items)
}

func TestExtractMedia_FirstMatchWins(t *testing.T) {
	items := []core.RetrievalItem{
		{ID: 1},
		{ID: 2, InfographicURL: "https://cdn/x.png"},
		{ID: 3, YouTubeLink: "https://youtu.be/y"},
	}

	media := ExtractMedia(items)
	assert.Equal(t, "https://cdn/x.png", media.InfographicURL)
	assert.Empty(t, media.YouTubeLink)

	assert.Equal(t, core.Media{}, ExtractMedia([]core.RetrievalItem{{ID: 1}, {ID: 2, InfographicURL: "  "}}))
}
