package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/janmasethu/sakhi/internal/providers/llm"
)

// OpenAIEmbedder uses an OpenAI-compatible /v1/embeddings endpoint.
// Queries and passages share one encoding.
type OpenAIEmbedder struct {
	client *llm.OpenAICompatible
	dims   int
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, dims int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: llm.NewOpenAICompatible(llm.OpenAICompatibleConfig{
			BaseURL:    strings.TrimSuffix(baseURL, "/"),
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
		dims: dims,
	}
}

func (e *OpenAIEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *OpenAIEmbedder) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *OpenAIEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.Embed(ctx, text, e.dims)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("embed: got %d dimensions, want %d", len(vec), e.dims)
	}
	return vec, nil
}

func (e *OpenAIEmbedder) Dims() int {
	return e.dims
}

// GeminiEmbedder distinguishes query and passage task types.
type GeminiEmbedder struct {
	client *llm.Gemini
	dims   int
}

func NewGeminiEmbedder(client *llm.Gemini, dims int) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, dims: dims}
}

func (e *GeminiEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, text, "RETRIEVAL_QUERY", e.dims)
}

func (e *GeminiEmbedder) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, text, "RETRIEVAL_DOCUMENT", e.dims)
}

func (e *GeminiEmbedder) Dims() int {
	return e.dims
}
