package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightarrow/imagescout/internal/config"
)

// detectProvider infers the provider from the model name so config only has
// to name a model: claude-* -> anthropic, gemini-* -> google, anything else
// is served through the OpenAI-compatible API.
func detectProvider(model string) string {
	switch {
	case strings.HasPrefix(model, "claude-"):
		return "claude"
	case strings.HasPrefix(model, "gemini-"):
		return "gemini"
	default:
		return "openai"
	}
}

func NewClient(ctx context.Context, cfg config.ModelConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = detectProvider(cfg.Model)
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "ollama":
		// Ollama speaks the OpenAI API under /v1; the key is ignored but the
		// client requires one.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
