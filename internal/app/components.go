package app

import (
	"fmt"

	"github.com/raysh454/stereocheck/internal/fetcher"
	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/tracker"
	"github.com/raysh454/stereocheck/internal/webclient"
)

// Components are the long-lived pieces a suite run needs.
type Components struct {
	Fetcher *fetcher.Fetcher
	Tracker tracker.Tracker

	page   webclient.WebClient
	assets webclient.WebClient
}

// NewComponents builds web clients, fetcher and tracker from cfg. Assets are
// probed with HEAD, which the chromedp backend cannot send, so that backend
// gets a net/http client for assets. Without a history path the tracker keeps
// runs in memory.
func NewComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	pageCfg, assetCfg, split := clientConfigs(cfg.WebClientCfg)

	page, err := webclient.NewWebClient(pageCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	assets := page
	if split {
		assets, err = webclient.NewWebClient(assetCfg, logger)
		if err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("new asset webclient: %w", err)
		}
	}

	f, err := fetcher.New(cfg.FetcherCfg, page, assets, logger)
	if err != nil {
		closeClients(page, assets)
		return nil, fmt.Errorf("new fetcher: %w", err)
	}

	var tr tracker.Tracker
	if cfg.TrackerCfg.StoragePath != "" {
		tr, err = tracker.NewSQLiteTracker(logger, cfg.TrackerCfg)
	} else {
		tr, err = tracker.NewInMemoryTracker(&cfg.TrackerCfg, logger)
	}
	if err != nil {
		closeClients(page, assets)
		return nil, fmt.Errorf("new tracker: %w", err)
	}

	return &Components{Fetcher: f, Tracker: tr, page: page, assets: assets}, nil
}

// clientConfigs returns the page and asset client configs and whether they
// need separate clients. Separate clients share one rate limiter so -rps
// bounds their combined traffic.
func clientConfigs(cfg webclient.Config) (page, assets webclient.Config, split bool) {
	if cfg.Client != webclient.ClientChromedp {
		return cfg, cfg, false
	}
	if cfg.RequestsPerSecond > 0 && cfg.Limiter == nil {
		cfg.Limiter = webclient.NewLimiter(cfg.RequestsPerSecond)
	}
	assets = cfg
	assets.Client = webclient.ClientNetHTTP
	return cfg, assets, true
}

func closeClients(page, assets webclient.WebClient) {
	_ = page.Close()
	if assets != page {
		_ = assets.Close()
	}
}

// Close releases the clients and the tracker.
func (c *Components) Close() error {
	var firstErr error
	if err := c.page.Close(); err != nil {
		firstErr = fmt.Errorf("close webclient: %w", err)
	}
	if c.assets != c.page {
		if err := c.assets.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close asset webclient: %w", err)
		}
	}
	if err := c.Tracker.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close tracker: %w", err)
	}
	return firstErr
}
