package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/everstacklabs/modelfeed/internal/catalog"
	"github.com/everstacklabs/modelfeed/internal/httpclient"
)

// Config tunes the strategy chain. Divergences between historical
// implementations (thresholds, proxy lists) are configuration, not behavior.
type Config struct {
	// BaseURL is the catalog API root, e.g. https://openrouter.ai/api/v1.
	BaseURL string
	// APIKey enables the authenticated strategy when non-empty.
	APIKey string
	// MinViable is the record count a response must exceed to be accepted.
	MinViable int
	// MaxAttempts bounds retries of one strategy, including the first try.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff between retries.
	BaseDelay time.Duration
	// Pacing is the fixed delay between a failed strategy and the next one.
	Pacing time.Duration
	// Timeout aborts a single in-flight request.
	Timeout time.Duration
	// RateLimit is requests per second against the upstream.
	RateLimit float64
	// PageParams are the page-size query parameter spellings to try.
	PageParams []string
	// PageSize is the requested page size for the paginated strategy.
	PageSize int
	// Proxies are CORS-relay URL prefixes the target URL is appended to.
	Proxies []string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://openrouter.ai/api/v1",
		MinViable:   10,
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Pacing:      time.Second,
		Timeout:     httpclient.DefaultTimeout,
		RateLimit:   10,
		PageParams:  []string{"per_page", "limit", "page_size", "count"},
		PageSize:    500,
		Proxies: []string{
			"https://api.allorigins.win/raw?url=",
			"https://corsproxy.io/?",
		},
	}
}

// Chain tries strategies in a fixed order until one yields a viable catalog.
type Chain struct {
	cfg        Config
	strategies []Strategy
}

// NewChain builds the canonical strategy order: authenticated, public,
// paginated, proxied.
func NewChain(cfg Config) *Chain {
	if cfg.MinViable <= 0 {
		cfg.MinViable = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	client := httpclient.New(
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithRateLimit(cfg.RateLimit),
	)

	return &Chain{
		cfg: cfg,
		strategies: []Strategy{
			newAuthenticated(cfg),
			newPublic(cfg, client),
			newPaginated(cfg, client),
			newProxied(cfg, client),
		},
	}
}

// newChainWith is a test seam for injecting stub strategies.
func newChainWith(cfg Config, strategies ...Strategy) *Chain {
	return &Chain{cfg: cfg, strategies: strategies}
}

// Run iterates the chain. A strategy succeeds only when it returns more than
// MinViable records; the chain stops at the first success. Between a failed
// strategy and the next there is a fixed pacing delay, distinct from the
// per-strategy retry backoff.
func (c *Chain) Run(ctx context.Context) ([]catalog.RawRecord, error) {
	var lastErr error

	for i, s := range c.strategies {
		records, err := c.tryStrategy(ctx, s)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%s strategy: %w", s.Name(), err)
			slog.Warn("fetch strategy failed", "strategy", s.Name(), "error", err)
		case len(records) <= c.cfg.MinViable:
			lastErr = fmt.Errorf("%s strategy: %d records below viability threshold %d",
				s.Name(), len(records), c.cfg.MinViable)
			slog.Warn("fetch strategy below viability threshold",
				"strategy", s.Name(), "records", len(records), "min_viable", c.cfg.MinViable)
		default:
			slog.Info("catalog fetched", "strategy", s.Name(), "records", len(records))
			return records, nil
		}

		if i < len(c.strategies)-1 && c.cfg.Pacing > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.Pacing):
			}
		}
	}

	return nil, fmt.Errorf("all fetch strategies exhausted: %w", lastErr)
}

// tryStrategy wraps one strategy with bounded exponential-backoff retries.
// The backoff adds delay and attempt-count semantics only; the strategy's
// last error propagates unchanged.
func (c *Chain) tryStrategy(ctx context.Context, s Strategy) ([]catalog.RawRecord, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.BaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2

	attempt := 0
	operation := func() ([]catalog.RawRecord, error) {
		attempt++
		records, err := s.Fetch(ctx)
		if err != nil {
			if errors.Is(err, ErrNoAPIKey) {
				return nil, backoff.Permanent(err)
			}
			if attempt < c.cfg.MaxAttempts {
				slog.Debug("strategy attempt failed, retrying",
					"strategy", s.Name(), "attempt", attempt, "error", err)
			}
			return nil, err
		}
		return records, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
	)
}
