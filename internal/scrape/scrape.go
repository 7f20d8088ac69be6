// Package scrape fetches product pages directly and pulls out the bits the
// pipeline can judge without a provider: page text and candidate image URLs.
// It backs the last-resort validation path when neither the scrape service
// nor a model-only assessment is available.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the extractable content of one product page.
type Page struct {
	URL       string
	Title     string
	Text      string
	ImageURLs []string
}

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads one page and extracts its text plus image URLs from
// og:image metadata and img tags, deduplicated in document order and
// resolved against the page URL.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ImageScoutBot/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	page := &Page{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	seen := make(map[string]bool)
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			page.ImageURLs = append(page.ImageURLs, abs)
		}
	}

	doc.Find(`meta[property="og:image"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			add(content)
		}
	})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
		} else if src, ok := s.Attr("data-src"); ok {
			add(src)
		}
	})

	doc.Find("script, style, noscript").Remove()
	page.Text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	return page, nil
}

// ContainsIdentifier reports whether the page text carries the identifier,
// ignoring case and common digit-group separators.
func (p *Page) ContainsIdentifier(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	normalize := func(s string) string {
		s = strings.ToLower(s)
		for _, sep := range []string{" ", "-", " "} {
			s = strings.ReplaceAll(s, sep, "")
		}
		return s
	}
	return strings.Contains(normalize(p.Text), normalize(id))
}
