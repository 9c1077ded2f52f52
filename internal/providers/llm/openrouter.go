package llm

import (
	"github.com/janmasethu/sakhi/internal/core"
)

const sakhiRepositoryURL = "https://github.com/janmasethu/sakhi"

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": sakhiRepositoryURL,
				"X-Title":      core.SakhiName,
			},
		}),
	}
}
