package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsvani/internal/infra"
	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// Fallback tries each fetcher in order and returns the first non-empty result.
type Fallback struct {
	fetchers []Fetcher
}

// NewFallback chains fetchers.
func NewFallback(fetchers ...Fetcher) *Fallback {
	return &Fallback{fetchers: fetchers}
}

// Name returns the data source name.
func (f *Fallback) Name() string { return "fallback(" + names(f.fetchers) + ")" }

// Fetch implements Fetcher.
func (f *Fallback) Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error) {
	var errs []error
	for _, src := range f.fetchers {
		frags, err := src.Fetch(ctx, company, n)
		if err == nil && len(frags) > 0 {
			return frags, nil
		}
		if errors.Is(err, ErrEmptyCompany) {
			return nil, err
		}
		if err != nil {
			slog.Debug("news source failed, trying next", "source", src.Name(), "error", err)
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, unavailable(f.Name(), errors.Join(errs...))
}

// Merge queries every fetcher concurrently and merges their fragments in
// fetcher order, dropping duplicate links. It fails only if all sources fail.
type Merge struct {
	fetchers []Fetcher
}

// NewMerge combines fetchers.
func NewMerge(fetchers ...Fetcher) *Merge {
	return &Merge{fetchers: fetchers}
}

// Name returns the data source name.
func (m *Merge) Name() string { return "merge(" + names(m.fetchers) + ")" }

// Fetch implements Fetcher.
func (m *Merge) Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error) {
	if utils.NormalizeCompany(company) == "" {
		return nil, ErrEmptyCompany
	}

	results := make([][]models.Fragment, len(m.fetchers))
	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.fetchers {
		g.Go(func() error {
			frags, err := src.Fetch(gctx, company, n)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil // non-fatal
			}
			results[i] = frags
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	var merged []models.Fragment
	for _, frags := range results {
		for _, f := range frags {
			if seen[f.Link] {
				continue
			}
			seen[f.Link] = true
			merged = append(merged, f)
		}
	}
	if n > 0 && len(merged) > n {
		merged = merged[:n]
	}
	if len(merged) == 0 {
		return nil, unavailable(m.Name(), errors.Join(errs...))
	}
	return merged, nil
}

// Cached wraps a fetcher with a TTL cache and a rate limiter. Only successful
// results are cached; expired entries are swept on every miss.
type Cached struct {
	next    Fetcher
	cache   *infra.Cache[[]models.Fragment]
	limiter *infra.RateLimiter
}

// NewCached wraps next. A nil limiter disables rate limiting.
func NewCached(next Fetcher, cache *infra.Cache[[]models.Fragment], limiter *infra.RateLimiter) *Cached {
	return &Cached{next: next, cache: cache, limiter: limiter}
}

// Name returns the wrapped source name.
func (c *Cached) Name() string { return c.next.Name() }

// Fetch implements Fetcher.
func (c *Cached) Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error) {
	key := utils.CacheKey(company, n)
	if frags, ok := c.cache.Get(key); ok {
		return frags, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(c.Name(), err)
	}

	frags, err := c.next.Fetch(ctx, company, n)
	if err != nil {
		return nil, err
	}
	c.cache.Cleanup()
	c.cache.Set(key, frags)
	return frags, nil
}

func names(fetchers []Fetcher) string {
	parts := make([]string, len(fetchers))
	for i, f := range fetchers {
		parts[i] = f.Name()
	}
	return strings.Join(parts, ", ")
}

// New builds the fetcher named by provider: "bing", "rss", "merge", or
// "auto" (HTML first, RSS as fallback).
func New(provider string, opts Options) (Fetcher, error) {
	switch strings.ToLower(provider) {
	case "bing", "html":
		return NewBing(opts), nil
	case "rss":
		return NewBingRSS(opts), nil
	case "merge":
		return NewMerge(NewBing(opts), NewBingRSS(opts)), nil
	case "", "auto":
		return NewFallback(NewBing(opts), NewBingRSS(opts)), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", provider)
	}
}
