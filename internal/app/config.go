package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raysh454/stereocheck/internal/cli"
	"github.com/raysh454/stereocheck/internal/fetcher"
	"github.com/raysh454/stereocheck/internal/tracker"
	"github.com/raysh454/stereocheck/internal/webclient"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL  = "STEREOCHECK_BASE_URL"
	EnvLogLevel = "STEREOCHECK_LOG_LEVEL"
)

// Config gathers the settings of every component.
type Config struct {
	// BaseURL is where the car stereo page is served.
	BaseURL string

	// AppRoot is the local directory the page is served from.
	AppRoot string

	// DiscoverAssets widens the backend asset checks to every referenced asset.
	DiscoverAssets bool

	// ServerAddr is the listen address of the API server.
	ServerAddr string

	// LogLevel is parsed by logging.ParseLevel.
	LogLevel string

	// MaxJobs caps how many finished background jobs stay listed.
	MaxJobs int

	FetcherCfg   fetcher.Config
	WebClientCfg webclient.Config

	// TrackerCfg.StoragePath empty disables persistent history.
	TrackerCfg tracker.Config
}

// DefaultConfig returns a Config populated with the defaults the checks were
// written against.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "http://localhost:8080",
		AppRoot:    "/app",
		ServerAddr: ":8090",
		LogLevel:   "info",
		MaxJobs:    100,
		FetcherCfg: fetcher.DefaultConfig(),
		WebClientCfg: webclient.Config{
			Client: webclient.ClientNetHTTP,
		},
		TrackerCfg: tracker.Config{
			MaxHistory: 500,
		},
	}
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// ApplyArgs overrides fields with the flags that were set on the command line.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	if args.BaseURL != "" {
		c.BaseURL = args.BaseURL
	}
	if args.Backend != "" {
		c.WebClientCfg.Client = webclient.Client(strings.ToLower(args.Backend))
	}
	if args.AppRoot != "" {
		c.AppRoot = args.AppRoot
	}
	if args.PageTimeout > 0 {
		c.FetcherCfg.PageTimeout = args.PageTimeout
	}
	if args.AssetTimeout > 0 {
		c.FetcherCfg.AssetTimeout = args.AssetTimeout
	}
	if args.RPS > 0 {
		c.WebClientCfg.RequestsPerSecond = args.RPS
	}
	if args.ShowBrowser {
		c.WebClientCfg.ShowBrowser = true
	}
	if args.DiscoverAssets {
		c.DiscoverAssets = true
	}
	if args.HistoryPath != "" {
		c.TrackerCfg.StoragePath = args.HistoryPath
	}
	if args.Addr != "" {
		c.ServerAddr = args.Addr
	}
	if args.LogLevel != "" {
		c.LogLevel = args.LogLevel
	}
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base url %q must start with http:// or https://", c.BaseURL)
	}
	if c.FetcherCfg.PageTimeout <= 0 || c.FetcherCfg.AssetTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if backend := strings.ToLower(strings.TrimSpace(string(c.WebClientCfg.Client))); backend != "" &&
		!slices.Contains(webclient.ListBackends(), backend) {
		return fmt.Errorf("unknown backend %q, want one of %s", c.WebClientCfg.Client, strings.Join(webclient.ListBackends(), "|"))
	}
	return nil
}
