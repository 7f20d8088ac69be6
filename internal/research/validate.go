package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
	"github.com/brightarrow/imagescout/internal/scrape"
	"github.com/brightarrow/imagescout/internal/tools"
)

// ValidateStage visits the filtered URLs in small batches and decides, per
// page, whether it really describes the requested product. Marketplace URLs
// go through the marketplace scraper, everything else through the general
// one. A batch that cannot be validated is recorded as invalid rather than
// dropped, so every filtered URL is accounted for.
type ValidateStage struct {
	Pool    *tools.Pool
	LLM     llm.Client
	Fetcher *scrape.Fetcher
	Prompts config.Prompts
	Cfg     config.ValidationConfig
	Log     *zap.Logger
}

// Run processes every filtered URL and returns the accumulated delta.
func (v *ValidateStage) Run(ctx context.Context, st *RunState) Delta {
	if len(st.FilteredURLs) == 0 {
		return Delta{}
	}

	amazon, other := PartitionURLs(st.FilteredURLs)
	groups := []struct {
		kind tools.ScrapeKind
		urls []string
	}{
		{tools.ScrapeMarketplace, amazon},
		{tools.ScrapeGeneral, other},
	}

	var delta Delta
	found := st.TotalImages

	for _, g := range groups {
		for start := 0; start < len(g.urls); start += v.Cfg.BatchSize {
			end := start + v.Cfg.BatchSize
			if end > len(g.urls) {
				end = len(g.urls)
			}
			batch := g.urls[start:end]

			if v.Cfg.EarlyExit && found+delta.Images > 0 {
				for _, u := range batch {
					delta.Invalid = append(delta.Invalid, InvalidURL{
						URL:       u,
						Reasoning: "skipped, sufficient images already found",
					})
				}
				delta.Checked += len(batch)
				continue
			}

			v.runBatch(ctx, st, g.kind, batch, &delta)
		}
	}

	return delta
}

// runBatch validates one batch, retrying on dropped connections with a fresh
// tool session. Terminal failure marks the whole batch invalid.
func (v *ValidateStage) runBatch(ctx context.Context, st *RunState, kind tools.ScrapeKind, batch []string, delta *Delta) {
	timeout := time.Duration(v.Cfg.BaseTimeoutSecs+v.Cfg.PerURLTimeoutSecs*len(batch)) * time.Second
	log := v.Log.With(
		zap.Int("batch_size", len(batch)),
		zap.Stringer("scrape_kind", kind),
		zap.Duration("timeout", timeout),
	)

	for try := 0; ; try++ {
		batchCtx, cancel := context.WithTimeout(ctx, timeout)
		res, err := v.validateBatch(batchCtx, st, kind, batch)
		cancel()

		if err == nil {
			images := res.TotalValidatedImages
			if images == 0 {
				for _, p := range res.ValidatedPages {
					images += len(p.ImageURLs)
				}
			}
			log.Info("batch validated",
				zap.Int("validated", len(res.ValidatedPages)),
				zap.Int("invalid", len(res.InvalidURLs)),
				zap.Int("images", images))
			delta.Pages = append(delta.Pages, res.ValidatedPages...)
			delta.Invalid = append(delta.Invalid, res.InvalidURLs...)
			delta.Images += images
			delta.Checked += len(batch)
			return
		}

		if IsConnectionDropped(err) && try < v.Cfg.MaxSessionRetries {
			log.Warn("scrape session dropped, rebuilding tools", zap.Int("retry", try+1), zap.Error(err))
			v.Pool.Invalidate()
			continue
		}

		reason := fmt.Sprintf("validation failed: %v", err)
		if IsTimeout(err) {
			reason = fmt.Sprintf("validation batch timed out after %s", timeout)
		}
		log.Warn("batch validation failed", zap.String("reason", reason), zap.Error(err))
		for _, u := range batch {
			delta.Invalid = append(delta.Invalid, InvalidURL{URL: u, Reasoning: reason})
		}
		delta.Checked += len(batch)
		return
	}
}

// validateBatch runs one validation call. Preference order: the scrape tool
// for the batch's domain kind, then the validation model on its own, then a
// local fetch with identifier matching.
func (v *ValidateStage) validateBatch(ctx context.Context, st *RunState, kind tools.ScrapeKind, batch []string) (validationResults, error) {
	urlsJSON, _ := json.Marshal(batch)
	prompt := config.Fill(v.Prompts.Validate, map[string]string{
		"barcode":     st.Query.Barcode,
		"sku":         st.Query.SKU,
		"title":       st.Query.Title,
		"search_type": st.SearchType,
		"urls":        string(urlsJSON),
	})

	tool, err := v.Pool.AcquireScrape(ctx, kind)
	if err == nil {
		raw, serr := tool.Scrape(ctx, batch, prompt)
		if serr != nil {
			return validationResults{}, serr
		}
		res, perr := DecodeJSON[validationResults](raw)
		if perr != nil {
			return validationResults{}, fmt.Errorf("unparseable validation response: %w", perr)
		}
		return res, nil
	}
	if !errors.Is(err, tools.ErrUnavailable) {
		return validationResults{}, err
	}

	res, merr := v.modelValidate(ctx, prompt)
	if merr == nil {
		return res, nil
	}
	v.Log.Warn("model-only validation failed, fetching pages locally", zap.Error(merr))
	return v.localValidate(ctx, st.Query, batch), nil
}

// modelValidate asks the validation model directly, with a structured output
// contract when the backend supports one.
func (v *ValidateStage) modelValidate(ctx context.Context, prompt string) (validationResults, error) {
	input := "Validate each URL and report the product images found."
	var raw string
	var err error
	if sc, ok := llm.AsStructured(v.LLM); ok {
		raw, err = sc.GenerateStructured(ctx, prompt, input, "validation_results", validationSchema)
	} else {
		raw, err = v.LLM.Generate(ctx, prompt, input)
	}
	if err != nil {
		return validationResults{}, err
	}
	return DecodeJSON[validationResults](raw)
}

// localValidate is the last resort: fetch each page ourselves and accept it
// only when the barcode or SKU literally appears in its text.
func (v *ValidateStage) localValidate(ctx context.Context, q ProductQuery, batch []string) validationResults {
	var res validationResults
	for _, u := range batch {
		page, err := v.Fetcher.Fetch(ctx, u)
		if err != nil {
			res.InvalidURLs = append(res.InvalidURLs, InvalidURL{
				URL:       u,
				Reasoning: fmt.Sprintf("page fetch failed: %v", err),
			})
			continue
		}

		method := ""
		switch {
		case q.Barcode != "" && page.ContainsIdentifier(q.Barcode):
			method = "barcode"
		case q.SKU != "" && page.ContainsIdentifier(q.SKU):
			method = "sku"
		}
		if method == "" {
			res.InvalidURLs = append(res.InvalidURLs, InvalidURL{
				URL:       u,
				Reasoning: "identifier not found on page",
			})
			continue
		}

		res.ValidatedPages = append(res.ValidatedPages, ValidatedPage{
			URL:                u,
			ValidationMethod:   method,
			ImageURLs:          page.ImageURLs,
			ProductDescription: page.Title,
			Reasoning:          fmt.Sprintf("page text contains the product %s", method),
		})
		res.TotalValidatedImages += len(page.ImageURLs)
	}
	return res
}
