package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/tools"
)

func newTestRunner(f *MockFactory, filterLLM *MockLLM) *Runner {
	cfg := config.Default()
	cfg.Images.TimeoutSecs = 5
	if filterLLM == nil {
		filterLLM = &MockLLM{}
	}
	pool := tools.NewPool(f, zap.NewNop())
	return NewRunner(cfg, filterLLM, &MockLLM{}, pool, zap.NewNop())
}

func TestRunSingle_NoIdentifiers(t *testing.T) {
	runner := newTestRunner(&MockFactory{}, nil)
	_, err := runner.RunSingle(context.Background(), ProductQuery{})
	assert.ErrorIs(t, err, ErrNoIdentifiers)
}

func TestRunSingle_EndToEnd(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngHeader)
	}))
	defer imgSrv.Close()

	searchTool := &MockSearchTool{
		Response: `{"results": [{"title": "Widget Pro", "url": "https://shop.test/p1"}]}`,
	}
	scrapeTool := &MockScrapeTool{Response: fmt.Sprintf(`{
		"validated_pages": [{
			"url": "https://shop.test/p1",
			"validation_method": "barcode",
			"image_urls": ["%s/hero.png", "https://0.0.0.0:1/dead.png"],
			"reasoning": "barcode shown on page"
		}],
		"invalid_urls": [],
		"total_validated_images": 2
	}`, imgSrv.URL)}
	filterLLM := &MockLLM{Response: `{"urls": ["https://shop.test/p1"], "total_urls": 1}`}

	runner := newTestRunner(&MockFactory{SearchTool: searchTool, ScrapeTool: scrapeTool}, filterLLM)

	res, err := runner.RunSingle(context.Background(), ProductQuery{Barcode: "12345678905"})
	require.NoError(t, err)

	// The 11-digit barcode was padded before searching.
	assert.Equal(t, "012345678905", res.Product.Barcode)
	assert.Equal(t, "barcode", res.SearchType)

	// One image survived the authenticity check, the dead link did not.
	assert.Equal(t, 1, res.TotalValidatedImages)
	require.Len(t, res.ValidatedPages, 1)
	assert.Equal(t, []string{imgSrv.URL + "/hero.png"}, res.ValidatedPages[0].ImageURLs)
	assert.Equal(t, 1, res.TotalChecked)

	// The loop stopped after the first successful attempt.
	assert.Equal(t, 1, searchTool.Calls)
}

func TestRunSingle_ExhaustsPlanOnEmptyResults(t *testing.T) {
	searchTool := &MockSearchTool{Response: `{"organic_results_state": "Fully empty"}`}
	// The all-fields attempt goes through the LLM, which also finds nothing.
	filterLLM := &MockLLM{Response: `{"items": []}`}
	runner := newTestRunner(&MockFactory{SearchTool: searchTool, ScrapeTool: &MockScrapeTool{}}, filterLLM)

	res, err := runner.RunSingle(context.Background(), ProductQuery{Barcode: "012345678905", SKU: "AB-1234", Title: "Widget"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalValidatedImages)
	assert.Empty(t, res.ValidatedPages)
	// Every plain attempt ran exactly once; empty results never retry.
	assert.Equal(t, 7, searchTool.Calls)
}

func TestRunSingle_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(&MockFactory{SearchTool: &MockSearchTool{}}, nil)
	_, err := runner.RunSingle(ctx, ProductQuery{Barcode: "012345678905"})
	assert.ErrorIs(t, err, context.Canceled)
}
