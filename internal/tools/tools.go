// Package tools defines the external capability interfaces the research
// pipeline consumes (web search, page scraping) and the shared handle pool
// that caches provider sessions across concurrent runs.
package tools

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a provider cannot supply the requested
// tool. Stages treat it as "fall back", not as a run failure.
var ErrUnavailable = errors.New("tool not available")

// Provider identifies a web-search backend.
type Provider int

const (
	ProviderGoogle Provider = iota
	ProviderYahoo
	ProviderLLMWebSearch
)

func (p Provider) String() string {
	switch p {
	case ProviderGoogle:
		return "google"
	case ProviderYahoo:
		return "yahoo"
	case ProviderLLMWebSearch:
		return "llm-web-search"
	default:
		return "unknown"
	}
}

// DisplayName is the human-readable tool name interpolated into prompts.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google Search tool"
	case ProviderYahoo:
		return "Yahoo Search tool"
	case ProviderLLMWebSearch:
		return "Web Search tool"
	default:
		return "search tool"
	}
}

// ScrapeKind selects the page-scrape variant by URL domain class.
type ScrapeKind int

const (
	// ScrapeMarketplace handles Amazon URL families via the provider's
	// dedicated product-data endpoint.
	ScrapeMarketplace ScrapeKind = iota
	// ScrapeGeneral handles every other storefront.
	ScrapeGeneral
)

func (k ScrapeKind) String() string {
	if k == ScrapeMarketplace {
		return "marketplace"
	}
	return "general"
}

// SearchTool executes one web search and returns the raw provider response,
// which may be structured JSON or free text with JSON embedded.
type SearchTool interface {
	Name() string
	Search(ctx context.Context, instructions, query string) (string, error)
}

// ScrapeTool visits the given pages and returns the validation payload
// described by the instructions, ideally schema-conformant JSON.
type ScrapeTool interface {
	Name() string
	Scrape(ctx context.Context, urls []string, instructions string) (string, error)
}
