package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/janmasethu/sakhi/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
	temperature  float64
	maxTokens    int
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	Temperature  float64
	MaxTokens    int
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (o *OpenAICompatible) Chat(ctx context.Context, messages []core.ChatMessage) (core.ChatMessage, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
	}
	if o.temperature > 0 {
		payload["temperature"] = o.temperature
	}
	if o.maxTokens > 0 {
		payload["max_tokens"] = o.maxTokens
	}

	data, err := o.postJSON(ctx, "/v1/chat/completions", payload, o.headers())
	if err != nil {
		return core.ChatMessage{}, err
	}
	return parseOpenAIResponse(data)
}

// Embed calls the embeddings endpoint. dims is sent only when positive.
func (o *OpenAICompatible) Embed(ctx context.Context, input string, dims int) ([]float32, error) {
	payload := map[string]any{
		"model": o.model,
		"input": input,
	}
	if dims > 0 {
		payload["dimensions"] = dims
	}

	data, err := o.postJSON(ctx, "/v1/embeddings", payload, o.headers())
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding: %s", string(data))
	}
	return result.Data[0].Embedding, nil
}

func parseOpenAIResponse(data []byte) (core.ChatMessage, error) {
	var result struct {
		Choices []struct {
			Message core.ChatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ChatMessage{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.ChatMessage{}, fmt.Errorf("empty choices: %s", string(data))
	}
	msg := result.Choices[0].Message
	if msg.Role == "" {
		msg.Role = core.RoleAssistant
	}
	return msg, nil
}

