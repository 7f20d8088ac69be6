package tools

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Factory builds fresh tool handles. Implementations talk to the actual
// provider services; tests supply stubs.
type Factory interface {
	NewSearchTool(ctx context.Context, provider Provider) (SearchTool, error)
	NewScrapeTool(ctx context.Context, kind ScrapeKind) (ScrapeTool, error)
}

// Pool caches tool handles behind a single lock so concurrent runs share
// sessions instead of racing to open new ones. A run that hits a
// connection-class error must call Invalidate before retrying, so siblings
// do not inherit a broken handle; the next Acquire rebuilds from the factory
// while readers block on the lock.
type Pool struct {
	factory Factory
	log     *zap.Logger

	mu      sync.Mutex
	search  map[Provider]SearchTool
	scrape  map[ScrapeKind]ScrapeTool
}

func NewPool(factory Factory, log *zap.Logger) *Pool {
	return &Pool{
		factory: factory,
		log:     log,
		search:  make(map[Provider]SearchTool),
		scrape:  make(map[ScrapeKind]ScrapeTool),
	}
}

// AcquireSearch returns the cached search tool for the provider, building it
// on first use.
func (p *Pool) AcquireSearch(ctx context.Context, provider Provider) (SearchTool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.search[provider]; ok {
		return t, nil
	}

	t, err := p.factory.NewSearchTool(ctx, provider)
	if err != nil {
		return nil, err
	}
	p.search[provider] = t
	p.log.Info("search tool acquired",
		zap.String("provider", provider.String()),
		zap.String("tool", t.Name()))
	return t, nil
}

// AcquireScrape returns the cached scrape tool for the domain class, building
// it on first use.
func (p *Pool) AcquireScrape(ctx context.Context, kind ScrapeKind) (ScrapeTool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.scrape[kind]; ok {
		return t, nil
	}

	t, err := p.factory.NewScrapeTool(ctx, kind)
	if err != nil {
		return nil, err
	}
	p.scrape[kind] = t
	p.log.Info("scrape tool acquired",
		zap.String("kind", kind.String()),
		zap.String("tool", t.Name()))
	return t, nil
}

// Invalidate drops every cached handle wholesale. The next Acquire rebuilds
// fresh ones.
func (p *Pool) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.search = make(map[Provider]SearchTool)
	p.scrape = make(map[ScrapeKind]ScrapeTool)
	p.log.Warn("tool pool invalidated")
}
