package research

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
)

const filterTimeout = 60 * time.Second

// FilterStage asks the search model which of the raw results plausibly point
// at the exact product. Any failure fails open to an empty URL list so the
// loop keeps moving.
type FilterStage struct {
	LLM     llm.Client
	Prompts config.Prompts
	Log     *zap.Logger
}

// Run replaces the filtered URL set wholesale. A run whose search produced
// nothing, or whose filter call breaks, yields an empty set rather than an
// error.
func (f *FilterStage) Run(ctx context.Context, st *RunState) Delta {
	empty := Delta{SetFiltered: true}

	if !st.SearchOK || st.CurrentResult == "" {
		return empty
	}

	prompt := config.Fill(f.Prompts.Filter, map[string]string{
		"barcode":        st.Query.Barcode,
		"sku":            st.Query.SKU,
		"title":          st.Query.Title,
		"search_type":    st.SearchType,
		"search_results": st.CurrentResult,
	})

	callCtx, cancel := context.WithTimeout(ctx, filterTimeout)
	defer cancel()

	raw, err := f.LLM.Generate(callCtx, prompt, "Filter the search results and return only the URLs likely to be pages for this exact product.")
	if err != nil {
		f.Log.Warn("filter call failed, continuing with no URLs", zap.Error(err))
		return empty
	}

	parsed, err := DecodeJSON[filterResults](raw)
	if err != nil {
		f.Log.Warn("filter response unparseable, continuing with no URLs", zap.Error(err))
		return empty
	}

	f.Log.Info("filtered search results", zap.Int("urls", len(parsed.URLs)))
	return Delta{SetFiltered: true, FilteredURLs: parsed.URLs}
}
