package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SerpSearchTool hits a SERP provider service over HTTP. One instance per
// engine (google/yahoo); instances are cached in the Pool.
type SerpSearchTool struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engine     string
}

func NewSerpSearchTool(baseURL, apiKey, engine string, timeout time.Duration) *SerpSearchTool {
	return &SerpSearchTool{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		engine:     engine,
	}
}

func (t *SerpSearchTool) Name() string {
	return t.engine + "_search"
}

// Search executes one query and returns the provider's raw JSON body.
// Classification of the body (empty result vs parseable vs garbage) is the
// caller's job.
func (t *SerpSearchTool) Search(ctx context.Context, instructions, query string) (string, error) {
	params := url.Values{}
	params.Add("engine", t.engine)
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s/search?%s", t.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}
