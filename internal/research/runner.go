package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
	"github.com/brightarrow/imagescout/internal/scrape"
	"github.com/brightarrow/imagescout/internal/tools"
)

// ErrNoIdentifiers is returned for a query with no usable field at all.
var ErrNoIdentifiers = errors.New("product has no barcode, sku, or title")

// Runner owns one configured pipeline and executes product runs against it.
// It is safe for concurrent use; per-run state lives in RunState.
type Runner struct {
	cfg      *config.Config
	log      *zap.Logger
	search   *SearchStage
	filter   *FilterStage
	validate *ValidateStage
	checker  *ImageChecker
}

// NewRunner wires the stages from config. searchLLM drives searching and
// filtering, validationLLM the page validation calls.
func NewRunner(cfg *config.Config, searchLLM, validationLLM llm.Client, pool *tools.Pool, log *zap.Logger) *Runner {
	return &Runner{
		cfg: cfg,
		log: log,
		search: &SearchStage{
			Pool:       pool,
			LLM:        searchLLM,
			Prompts:    cfg.Prompts,
			MaxRetries: cfg.Search.MaxRetries,
			Log:        log,
		},
		filter: &FilterStage{
			LLM:     searchLLM,
			Prompts: cfg.Prompts,
			Log:     log,
		},
		validate: &ValidateStage{
			Pool:    pool,
			LLM:     validationLLM,
			Fetcher: scrape.NewFetcher(time.Duration(cfg.Scrape.TimeoutSecs) * time.Second),
			Prompts: cfg.Prompts,
			Cfg:     cfg.Validate,
			Log:     log,
		},
		checker: NewImageChecker(cfg.Images, log),
	}
}

// RunSingle researches one product to completion and returns its final
// result. The context bounds the whole run.
func (r *Runner) RunSingle(ctx context.Context, q ProductQuery) (*FinalResult, error) {
	if q.Barcode == "" && q.SKU == "" && q.Title == "" {
		return nil, ErrNoIdentifiers
	}

	runID := uuid.NewString()
	log := r.log.With(zap.String("run_id", runID))

	normalized, note := NormalizeBarcode(q.Barcode)
	switch note {
	case BarcodeNonStandard:
		log.Info("barcode kept as non-standard 13-digit code", zap.String("barcode", normalized))
	case BarcodeOutOfRange:
		log.Warn("barcode length outside UPC range, using as-is", zap.String("barcode", normalized))
	}
	q.Barcode = normalized

	st := NewRunState(q)
	log.Info("starting product research",
		zap.String("search_type", st.SearchType),
		zap.Int("plan_len", len(st.Plan)))

	for !st.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d, outcome := r.searchGuarded(ctx, st)
		st.Apply(d)
		if outcome.Status == SearchShortCircuited {
			continue
		}

		st.Apply(r.filterGuarded(ctx, st))
		st.Apply(r.validateGuarded(ctx, st))
	}

	cleaned, count := r.checker.Clean(ctx, st.ValidatedPages)
	st.SetCleaned(cleaned, count)

	res := Finalize(st)
	log.Info("product research finished",
		zap.Int("total_checked", res.TotalChecked),
		zap.Int("total_validated_images", res.TotalValidatedImages),
		zap.Int("validated_pages", len(res.ValidatedPages)),
		zap.Int("invalid_urls", len(res.InvalidURLs)))
	return res, nil
}

// The guarded wrappers turn a stage panic into an empty delta so one bad
// response cannot take down the whole run.

func (r *Runner) searchGuarded(ctx context.Context, st *RunState) (d Delta, outcome SearchOutcome) {
	defer r.recoverStage("search", &d, func() {
		d = advanceDelta()
		outcome = SearchOutcome{Status: SearchExhausted}
	})
	return r.search.Run(ctx, st)
}

func (r *Runner) filterGuarded(ctx context.Context, st *RunState) (d Delta) {
	defer r.recoverStage("filter", &d, func() {
		d = Delta{SetFiltered: true}
	})
	return r.filter.Run(ctx, st)
}

func (r *Runner) validateGuarded(ctx context.Context, st *RunState) (d Delta) {
	defer r.recoverStage("validate", &d, nil)
	return r.validate.Run(ctx, st)
}

func (r *Runner) recoverStage(stage string, d *Delta, reset func()) {
	if rec := recover(); rec != nil {
		r.log.Error("stage panicked, continuing with empty result",
			zap.String("stage", stage),
			zap.String("panic", fmt.Sprint(rec)))
		*d = Delta{}
		if reset != nil {
			reset()
		}
	}
}
