package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Search.MaxRetries)
	assert.Equal(t, 3, cfg.Validate.BatchSize)
	assert.Equal(t, 2, cfg.Validate.MaxSessionRetries)
	assert.Equal(t, 30, cfg.Validate.BaseTimeoutSecs)
	assert.Equal(t, 20, cfg.Validate.PerURLTimeoutSecs)
	assert.True(t, cfg.Validate.EarlyExit)
	assert.Equal(t, 10, cfg.Images.Concurrency)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.NotEmpty(t, cfg.Prompts.Filter)
	assert.NotEmpty(t, cfg.Prompts.Validate)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
model = "gpt-5-mini"

[validate]
batch_size = 5
early_exit = false

[serp]
base_url = "https://serp.internal"
api_key = "k"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Validate.BatchSize)
	assert.False(t, cfg.Validate.EarlyExit)
	assert.Equal(t, "https://serp.internal", cfg.Serp.BaseURL)
	// Unset sections keep their defaults.
	assert.Equal(t, 3, cfg.Search.MaxRetries)
	assert.Equal(t, 10, cfg.Images.Concurrency)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEARCH_MODEL", "gpt-5-nano")
	t.Setenv("SERP_API_URL", "https://serp.env")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-test", cfg.Validation.APIKey)
	assert.Equal(t, "gpt-5-nano", cfg.LLM.Model)
	assert.Equal(t, "https://serp.env", cfg.Serp.BaseURL)
}

func TestApplyEnv_DoesNotOverwriteExplicitKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg := Default()
	cfg.LLM.APIKey = "sk-file"
	cfg.ApplyEnv()

	assert.Equal(t, "sk-file", cfg.LLM.APIKey)
}

func TestSearchPrompt_Fallback(t *testing.T) {
	p := defaultPrompts()
	assert.Equal(t, p.Search["default"], p.SearchPrompt("barcode_google"))
	assert.Equal(t, p.Search["all_fields_web"], p.SearchPrompt("all_fields_web"))
}

func TestFill(t *testing.T) {
	got := Fill("Find {barcode} with the {tool_name}.", map[string]string{
		"barcode":   "012345678905",
		"tool_name": "Google Search tool",
	})
	assert.Equal(t, "Find 012345678905 with the Google Search tool.", got)

	// Unknown placeholders pass through untouched.
	assert.Equal(t, "keep {this}", Fill("keep {this}", map[string]string{"other": "x"}))
}
