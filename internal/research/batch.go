package research

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// batchRetryDelay is the pause before a failed product's second attempt.
const batchRetryDelay = time.Second

// RunBatch researches every product concurrently, bounded by concurrency
// (or the configured default when <= 0), and writes the outcomes to a CSV.
// Results come back in input order regardless of completion order.
// Per-product failures are recorded in the result row, not returned as an
// error.
func (r *Runner) RunBatch(ctx context.Context, products []ProductQuery, concurrency int, outputPath string) ([]BatchResult, string, error) {
	if len(products) == 0 {
		return nil, "", errors.New("no products to process")
	}

	if concurrency <= 0 {
		concurrency = r.cfg.Batch.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	r.log.Info("starting batch run",
		zap.Int("products", len(products)),
		zap.Int("concurrency", concurrency))

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]BatchResult, len(products))
	var wg sync.WaitGroup

	for i, p := range products {
		wg.Add(1)
		go func(i int, p ProductQuery) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = failedResult(p, err)
				return
			}
			defer sem.Release(1)
			results[i] = r.runWithRetry(ctx, p)
		}(i, p)
	}
	wg.Wait()

	path, err := r.writeResultsCSV(results, outputPath)
	if err != nil {
		return results, "", err
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	r.log.Info("batch run finished",
		zap.Int("products", len(products)),
		zap.Int("failed", failed),
		zap.String("output", path))
	return results, path, nil
}

// runWithRetry gives each product two chances before recording a failure.
func (r *Runner) runWithRetry(ctx context.Context, p ProductQuery) BatchResult {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(batchRetryDelay):
			case <-ctx.Done():
				return failedResult(p, ctx.Err())
			}
		}

		res, err := r.RunSingle(ctx, p)
		if err == nil {
			payload, merr := json.Marshal(res)
			if merr != nil {
				lastErr = merr
				continue
			}
			return BatchResult{
				Barcode: p.Barcode,
				SKU:     p.SKU,
				Title:   p.Title,
				Result:  string(payload),
			}
		}
		lastErr = err
		r.log.Warn("batch product attempt failed",
			zap.String("barcode", p.Barcode),
			zap.String("sku", p.SKU),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return failedResult(p, lastErr)
}

func failedResult(p ProductQuery, err error) BatchResult {
	payload, _ := json.Marshal(map[string]string{
		"error":  err.Error(),
		"status": "failed",
	})
	return BatchResult{
		Barcode: p.Barcode,
		SKU:     p.SKU,
		Title:   p.Title,
		Result:  string(payload),
	}
}

// Failed reports whether this row carries the error payload instead of a
// research result.
func (b BatchResult) Failed() bool {
	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(b.Result), &probe); err != nil {
		return true
	}
	return probe.Status == "failed"
}

// writeResultsCSV writes one row per product and returns the absolute path.
// An empty outputPath gets a timestamped default name in the working
// directory.
func (r *Runner) writeResultsCSV(results []BatchResult, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("batch_results_%s.csv", time.Now().Format("20060102_150405"))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"barcode", "sku", "title", "result"}); err != nil {
		return "", fmt.Errorf("write results header: %w", err)
	}
	for _, res := range results {
		if err := w.Write([]string{res.Barcode, res.SKU, res.Title, res.Result}); err != nil {
			return "", fmt.Errorf("write result row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush results file: %w", err)
	}

	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return outputPath, nil
	}
	return abs, nil
}
