package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/brightarrow/imagescout/internal/config"
	"github.com/brightarrow/imagescout/internal/llm"
	"github.com/brightarrow/imagescout/internal/research"
	"github.com/brightarrow/imagescout/internal/tools"
)

func main() {
	inputPath := flag.String("input", "", "CSV of products to research (columns: barcode, sku, title)")
	outputPath := flag.String("output", "", "where to write results (default: timestamped CSV in cwd)")
	concurrency := flag.Int("concurrency", 0, "parallel products (default: from config)")
	cfgPath := flag.String("config", "config/config.toml", "config file path")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment as-is")
	}

	if *inputPath == "" {
		log.Fatal("missing -input file")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Warn("config file not loaded, using defaults", zap.String("path", *cfgPath), zap.Error(err))
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	products, err := readProducts(*inputPath)
	if err != nil {
		log.Fatal("failed to read input", zap.Error(err))
	}

	ctx := context.Background()
	searchLLM, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("failed to initialize search model", zap.Error(err))
	}
	validationLLM, err := llm.NewClient(ctx, cfg.Validation)
	if err != nil {
		log.Fatal("failed to initialize validation model", zap.Error(err))
	}

	pool := tools.NewPool(tools.NewProviderFactory(cfg, searchLLM), log)
	runner := research.NewRunner(cfg, searchLLM, validationLLM, pool, log)

	_, path, err := runner.RunBatch(ctx, products, *concurrency, *outputPath)
	if err != nil {
		log.Fatal("batch run failed", zap.Error(err))
	}
	log.Info("results written", zap.String("path", path))
}

// readProducts loads the product list. Column order is taken from the header
// row; unknown columns are ignored.
func readProducts(path string) ([]research.ProductQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var products []research.ProductQuery
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		products = append(products, research.ProductQuery{
			Barcode: field(row, "barcode"),
			SKU:     field(row, "sku"),
			Title:   field(row, "title"),
		})
	}
	return products, nil
}
