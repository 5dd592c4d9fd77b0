package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/everstacklabs/modelfeed/internal/catalog"
	"github.com/everstacklabs/modelfeed/internal/httpclient"
)

// ErrNoAPIKey marks the authenticated strategy as unusable for this call.
// It fails before any network traffic and is never retried.
var ErrNoAPIKey = errors.New("no API key available")

// Strategy is one single-shot method of retrieving the raw catalog.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Fetch performs one retrieval attempt.
	Fetch(ctx context.Context) ([]catalog.RawRecord, error)
}

// authenticated sends a bearer-authorized request via an oauth2 static token
// transport. Authenticated catalogs may include account-gated models.
type authenticated struct {
	client *httpclient.Client
	url    string
	hasKey bool
}

func newAuthenticated(cfg Config) *authenticated {
	a := &authenticated{
		url:    cfg.BaseURL + "/models",
		hasKey: cfg.APIKey != "",
	}
	if a.hasKey {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
		a.client = httpclient.New(
			httpclient.WithBaseClient(oauth2.NewClient(context.Background(), src)),
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithRateLimit(cfg.RateLimit),
		)
	}
	return a
}

func (a *authenticated) Name() string { return "authenticated" }

func (a *authenticated) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	if !a.hasKey {
		return nil, ErrNoAPIKey
	}
	body, err := a.client.GetJSON(ctx, a.url, nil)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(body)
}

// public hits the same endpoint without credentials.
type public struct {
	client *httpclient.Client
	url    string
}

func newPublic(cfg Config, client *httpclient.Client) *public {
	return &public{client: client, url: cfg.BaseURL + "/models"}
}

func (p *public) Name() string { return "public" }

func (p *public) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	body, err := p.client.GetJSON(ctx, p.url, nil)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(body)
}

// paginated tries alternate page-size parameter spellings. The upstream's
// pagination parameter name is not contractually stable, so the first
// spelling whose response clears the viability threshold wins.
type paginated struct {
	client    *httpclient.Client
	baseURL   string
	params    []string
	pageSize  int
	minViable int
}

func newPaginated(cfg Config, client *httpclient.Client) *paginated {
	return &paginated{
		client:    client,
		baseURL:   cfg.BaseURL + "/models",
		params:    cfg.PageParams,
		pageSize:  cfg.PageSize,
		minViable: cfg.MinViable,
	}
}

func (p *paginated) Name() string { return "paginated" }

func (p *paginated) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	var lastErr error
	for _, param := range p.params {
		u := fmt.Sprintf("%s?%s=%d", p.baseURL, param, p.pageSize)
		body, err := p.client.GetJSON(ctx, u, nil)
		if err != nil {
			lastErr = err
			continue
		}
		records, err := DecodeRecords(body)
		if err != nil {
			lastErr = err
			continue
		}
		if len(records) > p.minViable {
			return records, nil
		}
		lastErr = fmt.Errorf("parameter %q returned only %d records", param, len(records))
	}
	if lastErr == nil {
		lastErr = errors.New("no pagination parameters configured")
	}
	return nil, fmt.Errorf("paginated fetch: %w", lastErr)
}

// proxied routes the public request through third-party CORS relays, in
// order. Last resort for callers running where direct requests are blocked
// by cross-origin policy.
type proxied struct {
	client  *httpclient.Client
	target  string
	proxies []string
}

func newProxied(cfg Config, client *httpclient.Client) *proxied {
	return &proxied{
		client:  client,
		target:  cfg.BaseURL + "/models",
		proxies: cfg.Proxies,
	}
}

func (p *proxied) Name() string { return "proxied" }

func (p *proxied) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	var lastErr error
	for _, proxy := range p.proxies {
		body, err := p.client.GetJSON(ctx, proxy+url.QueryEscape(p.target), nil)
		if err != nil {
			lastErr = err
			continue
		}
		records, err := DecodeRecords(body)
		if err != nil {
			lastErr = err
			continue
		}
		return records, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no proxies configured")
	}
	return nil, fmt.Errorf("proxied fetch: %w", lastErr)
}
