package webclient

import (
	"time"

	"golang.org/x/time/rate"
)

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientFastHTTP Client = "fasthttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client

	// Timeout bounds a whole request for the nethttp and fasthttp backends.
	// Per-call deadlines on the context still apply. Zero means 30s.
	Timeout time.Duration

	// IdleAfter is how long the chromedp backend waits for the network to go
	// quiet after navigation. Zero means 2s.
	IdleAfter time.Duration

	// ShowBrowser disables headless mode for the chromedp backend.
	ShowBrowser bool

	// RequestsPerSecond throttles every request when > 0.
	RequestsPerSecond float64

	// Limiter, when set, replaces the limiter built from RequestsPerSecond so
	// several clients can share one request budget.
	Limiter *rate.Limiter

	// UserAgent is sent with every request when set.
	UserAgent string
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfter <= 0 {
		return 2 * time.Second
	}
	return c.IdleAfter
}
