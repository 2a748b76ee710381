package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/webclient"
)

// Module: fetcher
// Fetches the page under check and probes its assets, one request at a time.
type Fetcher struct {
	cfg    Config
	page   webclient.WebClient
	assets webclient.WebClient
	logger logging.Logger
}

// Page is a fetched document.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Headers     http.Header
	Body        string
	FetchedAt   time.Time
}

// Size is the body length in bytes.
func (p *Page) Size() int { return len(p.Body) }

// OK reports whether the page was served with status 200.
func (p *Page) OK() bool { return p.StatusCode == http.StatusOK }

// New creates a Fetcher. assets may be nil, in which case HEAD requests go
// through the page client as well.
func New(cfg Config, page, assets webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if page == nil {
		return nil, errors.New("fetcher: page webclient is nil")
	}
	if assets == nil {
		assets = page
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultConfig().PageTimeout
	}
	if cfg.AssetTimeout <= 0 {
		cfg.AssetTimeout = DefaultConfig().AssetTimeout
	}
	return &Fetcher{
		cfg:    cfg,
		page:   page,
		assets: assets,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Page GETs url within the configured page timeout. A non-200 status is not
// an error; callers decide what it means.
func (f *Fetcher) Page(ctx context.Context, url string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.PageTimeout)
	defer cancel()

	resp, err := f.page.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error GETting %s: %w", url, err)
	}

	f.logger.Debug("fetched page",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "bytes", Value: len(resp.Body)})

	return &Page{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType(),
		Headers:     resp.Headers,
		Body:        string(resp.Body),
		FetchedAt:   resp.FetchedAt,
	}, nil
}

// Head probes url within the configured asset timeout and returns its status.
func (f *Fetcher) Head(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.AssetTimeout)
	defer cancel()

	resp, err := f.assets.Head(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("error HEADing %s: %w", url, err)
	}

	f.logger.Debug("probed asset",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode})

	return resp.StatusCode, nil
}

// JoinURL appends path to base verbatim. The checks address assets as
// base+"/assets/..." so a trailing slash on base is not collapsed.
func JoinURL(base, path string) string {
	return base + path
}
