package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
)

// ProviderFactory builds tool handles from the service configuration. The
// Pool owns the caching; this only knows how to construct.
type ProviderFactory struct {
	cfg       *config.Config
	llmClient llm.Client
}

func NewProviderFactory(cfg *config.Config, llmClient llm.Client) *ProviderFactory {
	return &ProviderFactory{cfg: cfg, llmClient: llmClient}
}

func (f *ProviderFactory) NewSearchTool(ctx context.Context, provider Provider) (SearchTool, error) {
	switch provider {
	case ProviderGoogle, ProviderYahoo:
		if f.cfg.Serp.BaseURL == "" {
			return nil, fmt.Errorf("%w: no SERP service configured", ErrUnavailable)
		}
		timeout := time.Duration(f.cfg.Serp.TimeoutSecs) * time.Second
		return NewSerpSearchTool(f.cfg.Serp.BaseURL, f.cfg.Serp.APIKey, provider.String(), timeout), nil

	case ProviderLLMWebSearch:
		return NewLLMSearchTool(f.llmClient), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}

func (f *ProviderFactory) NewScrapeTool(ctx context.Context, kind ScrapeKind) (ScrapeTool, error) {
	if f.cfg.Scrape.BaseURL == "" {
		return nil, fmt.Errorf("%w: no scrape service configured", ErrUnavailable)
	}
	timeout := time.Duration(f.cfg.Scrape.TimeoutSecs) * time.Second
	return NewScrapeAPITool(f.cfg.Scrape.BaseURL, f.cfg.Scrape.APIKey, kind, timeout), nil
}
