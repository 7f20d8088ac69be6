package tools

import (
	"context"

	"github.com/brightarrow/imagescout/internal/llm"
)

// LLMSearchTool backs the llm-web-search provider: the model performs the
// web search itself, so there is no separate provider session to manage.
type LLMSearchTool struct {
	client llm.Client
}

func NewLLMSearchTool(client llm.Client) *LLMSearchTool {
	return &LLMSearchTool{client: client}
}

func (t *LLMSearchTool) Name() string {
	return "llm_web_search"
}

func (t *LLMSearchTool) Search(ctx context.Context, instructions, query string) (string, error) {
	return t.client.Generate(ctx, instructions, query)
}
