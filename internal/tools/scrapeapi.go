package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ScrapeAPITool calls the page-scrape provider service. Two endpoints exist:
// a product-data endpoint tuned for Amazon marketplace URLs and a general
// one for everything else; kind selects between them.
type ScrapeAPITool struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	kind       ScrapeKind
}

func NewScrapeAPITool(baseURL, apiKey string, kind ScrapeKind, timeout time.Duration) *ScrapeAPITool {
	return &ScrapeAPITool{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		kind:       kind,
	}
}

func (t *ScrapeAPITool) Name() string {
	if t.kind == ScrapeMarketplace {
		return "get_product_data"
	}
	return "scrape_product_optimized"
}

type scrapeRequest struct {
	URLs         []string `json:"urls"`
	Instructions string   `json:"instructions"`
}

// Scrape posts the batch to the provider and returns the raw body. The
// provider enforces the validation output contract server-side.
func (t *ScrapeAPITool) Scrape(ctx context.Context, urls []string, instructions string) (string, error) {
	payload, err := json.Marshal(scrapeRequest{URLs: urls, Instructions: instructions})
	if err != nil {
		return "", fmt.Errorf("failed to encode scrape request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s", t.baseURL, t.Name())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read scrape response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}
