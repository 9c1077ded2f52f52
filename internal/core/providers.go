package core

import (
	"context"
)

// ChatProvider is a single generation backend.
type ChatProvider interface {
	Chat(ctx context.Context, messages []ChatMessage) (ChatMessage, error)
}

// Embedder encodes queries and passages into the same vector space.
type Embedder interface {
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
	EncodePassage(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

type Classifier interface {
	// Classify derives language and knowledge signal. declaredLang may be
	// empty; it is used when detection is not confident.
	Classify(ctx context.Context, text, declaredLang string) (Classification, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]RetrievalItem, error)
}

// GenerationInput carries everything a generator needs for one turn.
type GenerationInput struct {
	Message  string
	Language string
	UserName string
	History  []Message
	Context  RetrievalContext
}

type Generator interface {
	Generate(ctx context.Context, in GenerationInput) (string, error)
}

// RouteDecision is the router output for one message.
type RouteDecision struct {
	Route  Route
	Intent string
	Rule   string
}
