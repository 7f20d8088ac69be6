package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/tools"
)

func newSearchStage(f *MockFactory, llmClient *MockLLM) *SearchStage {
	if llmClient == nil {
		llmClient = &MockLLM{}
	}
	return &SearchStage{
		Pool:       tools.NewPool(f, zap.NewNop()),
		LLM:        llmClient,
		Prompts:    config.Default().Prompts,
		MaxRetries: 3,
		Log:        zap.NewNop(),
	}
}

func TestSearchStage_Success(t *testing.T) {
	tool := &MockSearchTool{Response: `{"results": [{"title": "Widget", "url": "https://shop.test/w"}]}`}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	d, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchSucceeded, outcome.Status)
	assert.Equal(t, 0, outcome.Retries)
	assert.Equal(t, 1, d.AdvanceAttempt)
	assert.True(t, d.SearchOK)
	assert.Contains(t, d.CurrentResult, "https://shop.test/w")
	assert.Equal(t, "Barcode: 012345678905", tool.LastQuery)
}

func TestSearchStage_SuccessKeepsRawProviderPayload(t *testing.T) {
	raw := `{"results": [{"title": "Widget", "url": "https://shop.test/w", "thumbnail": "https://img.test/t.jpg", "rating": 4.5}], "search_metadata": {"engine": "google"}}`
	tool := &MockSearchTool{Response: raw}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	d, outcome := stage.Run(context.Background(), st)

	require.Equal(t, SearchSucceeded, outcome.Status)
	// The filter prompt gets the provider response verbatim, including
	// fields the stage itself never decodes.
	assert.Equal(t, raw, d.CurrentResult)
	assert.Contains(t, d.CurrentResult, "thumbnail")
	assert.Contains(t, d.CurrentResult, "search_metadata")
}

func TestSearchStage_EmptyResultAdvancesWithoutRetry(t *testing.T) {
	tool := &MockSearchTool{Response: `{"organic_results_state": "Fully empty", "results": []}`}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	d, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchEmpty, outcome.Status)
	assert.Equal(t, 0, outcome.Retries)
	assert.Equal(t, 1, tool.Calls)
	assert.Equal(t, 1, d.AdvanceAttempt)
	assert.False(t, d.SearchOK)
}

func TestSearchStage_EmptyResultViaError(t *testing.T) {
	tool := &MockSearchTool{Err: errors.New("Google hasn't returned any results for this query")}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	_, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchEmpty, outcome.Status)
	assert.Equal(t, 1, tool.Calls)
}

func TestSearchStage_UnparseableRetriesThenAdvances(t *testing.T) {
	tool := &MockSearchTool{Response: "I was unable to produce structured output"}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	d, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchExhausted, outcome.Status)
	assert.Equal(t, 3, outcome.Retries)
	assert.Equal(t, 3, tool.Calls)
	assert.Equal(t, 1, d.AdvanceAttempt)
	assert.False(t, d.SearchOK)
}

func TestSearchStage_RecoversOnRetry(t *testing.T) {
	tool := &MockSearchTool{ResponseQueue: []string{
		"garbage",
		`{"results": [{"url": "https://shop.test/w"}]}`,
	}}
	stage := newSearchStage(&MockFactory{SearchTool: tool}, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	_, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchSucceeded, outcome.Status)
	assert.Equal(t, 1, outcome.Retries)
}

func TestSearchStage_ConnectionDroppedInvalidatesPool(t *testing.T) {
	tool := &MockSearchTool{Err: errors.New("read: connection reset by peer")}
	factory := &MockFactory{SearchTool: tool}
	stage := newSearchStage(factory, nil)
	st := NewRunState(ProductQuery{Barcode: "012345678905"})

	_, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchExhausted, outcome.Status)
	// Every retry rebuilds the tool because the pool was invalidated.
	assert.Equal(t, 3, factory.SearchBuilds)
}

func TestSearchStage_AllFieldsShortCircuit(t *testing.T) {
	structured := &MockStructuredLLM{
		StructuredResponse: `{"items": [{"source_url": "https://shop.test/w", "image_urls": ["https://img.test/1.jpg", "https://img.test/2.jpg"]}]}`,
	}
	stage := &SearchStage{
		Pool:       tools.NewPool(&MockFactory{}, zap.NewNop()),
		LLM:        structured,
		Prompts:    config.Default().Prompts,
		MaxRetries: 3,
		Log:        zap.NewNop(),
	}

	st := NewRunState(ProductQuery{Title: "Widget Pro"})
	st.Apply(Delta{AdvanceAttempt: 1}) // move past title_sku_google to all_fields_web
	require.Equal(t, AttemptAllFieldsWeb, st.Plan[st.AttemptIndex].Kind)

	d, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchShortCircuited, outcome.Status)
	assert.Equal(t, 1, structured.StructuredCalls)
	require.Len(t, d.Pages, 1)
	assert.Equal(t, "all_fields_search", d.Pages[0].ValidationMethod)
	assert.Equal(t, 2, d.Images)
	assert.Equal(t, 1, d.Checked)
	assert.True(t, d.SearchOK)
}

func TestSearchStage_AllFieldsPlainClientFallsBackToGenerate(t *testing.T) {
	plain := &MockLLM{Response: "```json\n{\"items\": [{\"source_url\": \"https://shop.test/w\", \"image_urls\": [\"https://img.test/1.jpg\"]}]}\n```"}
	stage := newSearchStage(&MockFactory{}, plain)

	st := NewRunState(ProductQuery{Title: "Widget Pro"})
	st.Apply(Delta{AdvanceAttempt: 1})

	d, outcome := stage.Run(context.Background(), st)

	assert.Equal(t, SearchShortCircuited, outcome.Status)
	assert.Equal(t, 1, plain.Calls)
	assert.Equal(t, 1, d.Images)
}
