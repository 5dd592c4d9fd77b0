// Package pipeline is the top-level entry point for catalog acquisition: it
// consults the cache, drives the fetch strategy chain, normalizes results,
// and degrades to the embedded fallback catalog when everything fails.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/everstacklabs/modelfeed/internal/cache"
	"github.com/everstacklabs/modelfeed/internal/catalog"
	"github.com/everstacklabs/modelfeed/internal/config"
	"github.com/everstacklabs/modelfeed/internal/fetch"
	"github.com/everstacklabs/modelfeed/internal/normalize"
)

// Options controls one acquisition call.
type Options struct {
	// FreeOnly filters the result to free models.
	FreeOnly bool
	// APIKey overrides the configured key for this call.
	APIKey string
	// ForceRefresh skips the cache read; the result is still written through.
	ForceRefresh bool
}

// Runner fetches raw records. Satisfied by *fetch.Chain; injectable in tests.
type Runner interface {
	Run(ctx context.Context) ([]catalog.RawRecord, error)
}

// Pipeline orchestrates catalog acquisition.
type Pipeline struct {
	cfg      *config.Config
	store    *cache.Store
	newChain func(apiKey string) Runner
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithStore injects a cache store (e.g. one with a test clock).
func WithStore(s *cache.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithChainFactory injects the strategy-chain constructor.
func WithChainFactory(f func(apiKey string) Runner) Option {
	return func(p *Pipeline) { p.newChain = f }
}

// New creates a Pipeline from config.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:   cfg,
		store: cache.New(),
	}
	p.newChain = func(apiKey string) Runner {
		return fetch.NewChain(fetch.Config{
			BaseURL:     cfg.BaseURL,
			APIKey:      apiKey,
			MinViable:   cfg.MinViable,
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
			Pacing:      cfg.Pacing,
			Timeout:     cfg.Timeout,
			RateLimit:   cfg.RateLimit,
			PageParams:  cfg.PageParams,
			PageSize:    cfg.PageSize,
			Proxies:     cfg.Proxies,
		})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchModels acquires the catalog. It never returns an error and never
// returns an empty list: total failure degrades to the embedded fallback.
// Results are sorted free-first, then by descending compatibility score, then
// by display name.
func (p *Pipeline) FetchModels(ctx context.Context, opts Options) []catalog.Model {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = p.cfg.APIKey
	}

	key := cache.Key(opts.FreeOnly, apiKey != "")
	if !opts.ForceRefresh {
		if entry, ok := p.store.Get(key); ok {
			slog.Debug("catalog served from cache", "key", key, "models", len(entry.Models))
			return entry.Models
		}
	}

	models, ttl := p.acquire(ctx, apiKey)

	if opts.FreeOnly {
		models = catalog.FilterFree(models)
		if len(models) == 0 {
			// A live catalog with no free models would otherwise break the
			// never-empty guarantee for the free partition.
			models = catalog.FilterFree(catalog.Fallback())
			ttl = fallbackTTL(p.cfg)
		}
	}

	catalog.Sort(models)
	p.store.Put(key, models, ttl)
	return models
}

// acquire runs the strategy chain and normalizes the outcome, falling back to
// the embedded catalog on exhaustion or when nothing survives normalization.
func (p *Pipeline) acquire(ctx context.Context, apiKey string) ([]catalog.Model, time.Duration) {
	raw, err := p.newChain(apiKey).Run(ctx)
	if err != nil {
		slog.Warn("serving fallback catalog", "error", err)
		return catalog.Fallback(), fallbackTTL(p.cfg)
	}

	models := normalize.Records(raw)
	if len(models) == 0 {
		slog.Warn("no records survived normalization, serving fallback catalog",
			"raw_records", len(raw))
		return catalog.Fallback(), fallbackTTL(p.cfg)
	}

	slog.Info("catalog normalized", "raw_records", len(raw), "models", len(models))
	return models, liveTTL(p.cfg)
}

// RefreshModels force-refreshes the unfiltered catalog.
func (p *Pipeline) RefreshModels(ctx context.Context, apiKey string) []catalog.Model {
	return p.FetchModels(ctx, Options{APIKey: apiKey, ForceRefresh: true})
}

// FreeModels returns only free models.
func (p *Pipeline) FreeModels(ctx context.Context, apiKey string) []catalog.Model {
	return p.FetchModels(ctx, Options{APIKey: apiKey, FreeOnly: true})
}

// ClearCache removes every cached partition and returns the prior count.
func (p *Pipeline) ClearCache() int {
	return p.store.InvalidateAll()
}

// Statistics reports cache contents.
func (p *Pipeline) Statistics() cache.Stats {
	return p.store.Stats()
}

func liveTTL(cfg *config.Config) time.Duration {
	if cfg.CacheTTL > 0 {
		return cfg.CacheTTL
	}
	return cache.DefaultTTL
}

func fallbackTTL(cfg *config.Config) time.Duration {
	if cfg.FallbackTTL > 0 {
		return cfg.FallbackTTL
	}
	return cache.FallbackTTL
}
