package rag

import (
	"strings"
	"testing"

	"github.com/janmasethu/sakhi/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTokenizer(t *testing.T) {
	t.Helper()
	if !tokens.Available() {
		t.Skip("tiktoken BPE ranks not available")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "english",
			text: "Hello world. How are you? I am fine.",
			want: []string{"Hello world.", "How are you?", "I am fine."},
		},
		{
			name: "devanagari danda",
			text: "आयरन ज़रूरी है। पालक खाएं।",
			want: []string{"आयरन ज़रूरी है।", "पालक खाएं।"},
		},
		{
			name: "paragraphs and soft wraps",
			text: "Para one\ncontinues.\n\nPara two.",
			want: []string{"Para one continues.", "Para two."},
		},
		{
			name: "decimal is not a boundary",
			text: "Take 0.4 mg daily.",
			want: []string{"Take 0.4 mg daily."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestChunkText_Empty(t *testing.T) {
	chunks, err := ChunkText("   \n\t ", DefaultChunkerConfig())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestChunkText_RespectsLimit(t *testing.T) {
	requireTokenizer(t)

	text := strings.Repeat("Folic acid helps the baby grow. ", 40)
	cfg := ChunkerConfig{MaxTokens: 30, OverlapTokens: 0}

	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, c.TokenSize, cfg.MaxTokens)
		assert.NotEmpty(t, c.Text)
	}
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	requireTokenizer(t)

	chunks, err := ChunkText("Hello world. How are you?", ChunkerConfig{MaxTokens: 50})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world. How are you?", chunks[0].Text)
}
