package research

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/brightarrow/imagescout/internal/config"
)

// sniffLen is how many leading bytes we read to identify an image format.
const sniffLen = 16

// magicPrefixes identify real image payloads regardless of what the server
// claims in its headers. RIFF covers WEBP containers.
var magicPrefixes = [][]byte{
	{0xff, 0xd8, 0xff},          // JPEG
	{0x89, 'P', 'N', 'G'},       // PNG
	[]byte("GIF87a"),            // GIF
	[]byte("GIF89a"),            // GIF
	{'R', 'I', 'F', 'F'},        // RIFF / WEBP
}

// imageContentTypes is the fallback for servers that return a valid image
// behind a CDN transform where the first bytes are not a known signature.
var imageContentTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/bmp":     {},
	"image/tiff":    {},
	"image/svg+xml": {},
}

// ImageChecker fetches each validated image URL and keeps only those that
// actually serve image bytes. Dead links, HTML error pages, and placeholder
// redirects all fail the sniff and get dropped.
type ImageChecker struct {
	client  *http.Client
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	timeout time.Duration
	log     *zap.Logger
}

// NewImageChecker builds a checker with the configured concurrency cap and
// optional request rate limit.
func NewImageChecker(cfg config.ImagesConfig, log *zap.Logger) *ImageChecker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		burst := int(cfg.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return &ImageChecker{
		client:  &http.Client{Timeout: timeout},
		sem:     semaphore.NewWeighted(int64(concurrency)),
		limiter: limiter,
		timeout: timeout,
		log:     log,
	}
}

// Clean verifies every image URL across the validated pages and returns the
// pages with unverifiable URLs removed, plus the surviving image count.
// Page order and every non-image field are preserved.
func (c *ImageChecker) Clean(ctx context.Context, pages []ValidatedPage) ([]ValidatedPage, int) {
	type job struct {
		page, slot int
		url        string
	}

	cleaned := make([]ValidatedPage, len(pages))
	keep := make([][]bool, len(pages))
	var jobs []job
	for i, p := range pages {
		cleaned[i] = p
		keep[i] = make([]bool, len(p.ImageURLs))
		seen := make(map[string]bool, len(p.ImageURLs))
		for j, u := range p.ImageURLs {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			jobs = append(jobs, job{page: i, slot: j, url: u})
		}
	}

	var wg sync.WaitGroup
	for _, jb := range jobs {
		wg.Add(1)
		go func(jb job) {
			defer wg.Done()
			if err := c.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer c.sem.Release(1)
			// Each job owns its slot, so no lock is needed here.
			keep[jb.page][jb.slot] = c.verify(ctx, jb.url)
		}(jb)
	}
	wg.Wait()

	total := 0
	for i := range cleaned {
		var urls []string
		for j, u := range pages[i].ImageURLs {
			if keep[i][j] {
				urls = append(urls, u)
			}
		}
		cleaned[i].ImageURLs = urls
		total += len(urls)
	}

	c.log.Info("image check complete",
		zap.Int("candidates", len(jobs)),
		zap.Int("verified", total))
	return cleaned, total
}

// verify streams the first bytes of the URL and sniffs for an image format.
func (c *ImageChecker) verify(ctx context.Context, imageURL string) bool {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; imagescout/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("image fetch failed", zap.String("url", imageURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	head = head[:n]

	for _, prefix := range magicPrefixes {
		if bytes.HasPrefix(head, prefix) {
			return true
		}
	}

	ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	_, ok := imageContentTypes[ct]
	return ok
}
