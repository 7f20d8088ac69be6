package research

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
	"github.com/brightarrow/imagescout/internal/tools"
)

// searchTimeout bounds one provider call including tool-side browsing.
const searchTimeout = 60 * time.Second

// SearchStatus classifies how an attempt ended. Empty results and exhausted
// retries both advance the plan, but they are distinct for diagnostics.
type SearchStatus int

const (
	SearchSucceeded SearchStatus = iota
	SearchEmpty
	SearchExhausted
	SearchShortCircuited
)

// SearchOutcome reports the attempt's terminal status and how many retries
// were burned reaching it.
type SearchOutcome struct {
	Status  SearchStatus
	Retries int
}

// SearchStage executes the attempt at the current plan index and classifies
// the outcome. Transient failures retry up to MaxRetries with a fresh tool
// acquisition; a zero-result response never retries.
type SearchStage struct {
	Pool       *tools.Pool
	LLM        llm.Client
	Prompts    config.Prompts
	MaxRetries int
	Log        *zap.Logger
}

// Run consumes exactly one plan attempt and returns the resulting delta.
func (s *SearchStage) Run(ctx context.Context, st *RunState) (Delta, SearchOutcome) {
	attempt := st.Plan[st.AttemptIndex]
	log := s.Log.With(
		zap.String("attempt", attempt.Name),
		zap.Int("attempt_index", st.AttemptIndex),
		zap.Int("plan_len", len(st.Plan)),
	)

	if attempt.Kind == AttemptAllFieldsWeb {
		return s.runAllFields(ctx, st, attempt, log)
	}

	prompt := config.Fill(s.Prompts.SearchPrompt(attempt.PromptKey), map[string]string{
		"barcode":   st.Query.Barcode,
		"sku":       st.Query.SKU,
		"title":     st.Query.Title,
		"tool_name": attempt.Provider.DisplayName(),
	})
	input := fillTemplate(attempt.InputTemplate, st.Query)

	retries := 0
	for retries < s.MaxRetries {
		raw, err := s.execute(ctx, attempt.Provider, prompt, input)
		if err != nil {
			// Some providers report zero results through an error payload.
			if isNoResults(err.Error()) {
				log.Info("search returned zero results (via error), advancing plan")
				return advanceDelta(), SearchOutcome{SearchEmpty, retries}
			}
			if IsConnectionDropped(err) {
				s.Pool.Invalidate()
			}
			log.Warn("search attempt failed", zap.Int("retry", retries+1), zap.Error(err))
			retries++
			continue
		}

		if isNoResults(raw) {
			log.Info("search returned zero results, advancing plan")
			return advanceDelta(), SearchOutcome{SearchEmpty, retries}
		}

		parsed, err := DecodeJSON[searchResults](raw)
		if err == nil && len(parsed.hits()) > 0 {
			log.Info("search succeeded", zap.Int("results", len(parsed.hits())))
			// Keep the provider's raw payload so the filter sees every
			// field, not just the ones searchResults recognizes.
			return Delta{
				AdvanceAttempt: 1,
				SetSearch:      true,
				CurrentResult:  raw,
				SearchOK:       true,
			}, SearchOutcome{SearchSucceeded, retries}
		}

		log.Warn("search returned unparseable results, retrying", zap.Int("retry", retries+1))
		retries++
	}

	log.Warn("search retries exhausted, advancing plan", zap.Int("retries", retries))
	return advanceDelta(), SearchOutcome{SearchExhausted, retries}
}

// execute acquires the provider tool fresh from the pool and runs one call.
func (s *SearchStage) execute(ctx context.Context, provider tools.Provider, prompt, input string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	tool, err := s.Pool.AcquireSearch(callCtx, provider)
	if err != nil {
		return "", err
	}
	return tool.Search(callCtx, prompt, input)
}

// runAllFields handles the search-everything attempt: the model browses and
// extracts images itself under a strict output schema, so on success the
// result skips filter and validation entirely and lands as validated pages.
func (s *SearchStage) runAllFields(ctx context.Context, st *RunState, attempt SearchAttempt, log *zap.Logger) (Delta, SearchOutcome) {
	prompt := config.Fill(s.Prompts.SearchPrompt(attempt.PromptKey), map[string]string{
		"barcode":   st.Query.Barcode,
		"sku":       st.Query.SKU,
		"title":     st.Query.Title,
		"tool_name": attempt.Provider.DisplayName(),
	})
	input := fillTemplate(attempt.InputTemplate, st.Query)

	callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	var raw string
	var err error
	if sc, ok := llm.AsStructured(s.LLM); ok {
		raw, err = sc.GenerateStructured(callCtx, prompt, input, "all_fields_search", allFieldsSchema)
	} else {
		raw, err = s.LLM.Generate(callCtx, prompt, input)
	}
	if err != nil {
		log.Warn("all-fields search failed", zap.Error(err))
		return advanceDelta(), SearchOutcome{SearchExhausted, 0}
	}

	parsed, err := DecodeJSON[allFieldsResults](raw)
	if err != nil || len(parsed.Items) == 0 {
		log.Warn("all-fields search returned no usable items")
		return advanceDelta(), SearchOutcome{SearchEmpty, 0}
	}

	var pages []ValidatedPage
	images := 0
	for _, item := range parsed.Items {
		pages = append(pages, ValidatedPage{
			URL:              item.SourceURL,
			ValidationMethod: "all_fields_search",
			ImageURLs:        item.ImageURLs,
			Reasoning:        "Validated via web search with structured output",
		})
		images += len(item.ImageURLs)
	}

	log.Info("all-fields search extracted pages",
		zap.Int("pages", len(pages)),
		zap.Int("images", images))

	return Delta{
		AdvanceAttempt: 1,
		SetSearch:      true,
		SearchOK:       true,
		Pages:          pages,
		Images:         images,
		Checked:        len(pages),
	}, SearchOutcome{SearchShortCircuited, 0}
}

// advanceDelta moves to the next attempt with no usable result.
func advanceDelta() Delta {
	return Delta{AdvanceAttempt: 1, SetSearch: true}
}
