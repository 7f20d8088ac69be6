package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ModelConfig selects a language model. Provider may be left empty, in which
// case it is inferred from the model name prefix (claude-*, gemini-*, else
// OpenAI-compatible).
type ModelConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// SearchConfig tunes the search stage.
type SearchConfig struct {
	MaxRetries int `toml:"max_retries"` // transient errors only, never "no results"
}

// ValidationConfig tunes the batched page-validation stage.
type ValidationConfig struct {
	BatchSize          int  `toml:"batch_size"`
	MaxSessionRetries  int  `toml:"max_session_retries"` // extra tries after a dropped session
	BaseTimeoutSecs    int  `toml:"base_timeout_secs"`
	PerURLTimeoutSecs  int  `toml:"per_url_timeout_secs"`
	EarlyExit          bool `toml:"early_exit"` // stop batching once any image is found
}

// ImagesConfig tunes the image authenticity checker.
type ImagesConfig struct {
	Concurrency int     `toml:"concurrency"`
	TimeoutSecs int     `toml:"timeout_secs"`
	RatePerSec  float64 `toml:"rate_per_sec"` // 0 disables pacing
}

// BatchConfig tunes the cross-product batch coordinator.
type BatchConfig struct {
	Concurrency int `toml:"concurrency"`
}

// SerpConfig points at the web-search provider service.
type SerpConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// ScrapeConfig points at the page-scrape provider service. When BaseURL is
// empty the pipeline falls back to model-only validation and the local
// scraper.
type ScrapeConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

type Config struct {
	LLM        ModelConfig      `toml:"llm"`        // search + filter model
	Validation ModelConfig      `toml:"validation"` // page-validation model
	Search     SearchConfig     `toml:"search"`
	Validate   ValidationConfig `toml:"validate"`
	Images     ImagesConfig     `toml:"images"`
	Batch      BatchConfig      `toml:"batch"`
	Serp       SerpConfig       `toml:"serp"`
	Scrape     ScrapeConfig     `toml:"scrape"`
	Prompts    Prompts          `toml:"prompts"`
}

// Default returns the built-in configuration. A config file and env
// overrides are both optional; they layer on top of this.
func Default() *Config {
	return &Config{
		LLM: ModelConfig{
			Model: "gpt-5-mini",
		},
		Validation: ModelConfig{
			Model: "gpt-5.1",
		},
		Search: SearchConfig{
			MaxRetries: 3,
		},
		Validate: ValidationConfig{
			BatchSize:         3,
			MaxSessionRetries: 2,
			BaseTimeoutSecs:   30,
			PerURLTimeoutSecs: 20,
			EarlyExit:         true,
		},
		Images: ImagesConfig{
			Concurrency: 10,
			TimeoutSecs: 10,
		},
		Batch: BatchConfig{
			Concurrency: 3,
		},
		Serp: SerpConfig{
			TimeoutSecs: 30,
		},
		Scrape: ScrapeConfig{
			TimeoutSecs: 60,
		},
		Prompts: defaultPrompts(),
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the environment variables operators actually set in
// deployment. Keys beat file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
		if c.Validation.APIKey == "" {
			c.Validation.APIKey = v
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.Validation.APIKey == "" {
		c.Validation.APIKey = v
	}
	if v := os.Getenv("SEARCH_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("VALIDATION_MODEL"); v != "" {
		c.Validation.Model = v
	}
	if v := os.Getenv("SERP_API_URL"); v != "" {
		c.Serp.BaseURL = v
	}
	if v := os.Getenv("SERP_API_KEY"); v != "" {
		c.Serp.APIKey = v
	}
	if v := os.Getenv("SCRAPE_API_URL"); v != "" {
		c.Scrape.BaseURL = v
	}
	if v := os.Getenv("SCRAPE_API_KEY"); v != "" {
		c.Scrape.APIKey = v
	}
}
