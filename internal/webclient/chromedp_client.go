package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/stereocheck/internal/logging"
)

// maxIdleWaits bounds the idle wait for pages that keep polling.
const maxIdleWaits = 10

// ChromedpClient renders pages in headless Chrome and returns the DOM after
// scripts ran. Only GET is supported.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      logging.Logger
}

// NewChromedpClient prepares a browser allocator. Chrome itself is started
// lazily on the first request.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: cfg.idleAfter().String()})

	return &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		idleAfter:   cfg.idleAfter(),
		logger:      componentLogger,
	}, nil
}

// pageListener counts in-flight requests and captures the main document
// response. idle fires once the counter has stayed at zero for idleAfter.
type pageListener struct {
	activeReqs int32
	idle       chan struct{}
	once       sync.Once

	timerMu sync.Mutex
	timer   *time.Timer

	docMu      sync.Mutex
	docStatus  int
	docHeaders http.Header
}

func listenPage(ctx context.Context, idleAfter time.Duration) *pageListener {
	pl := &pageListener{idle: make(chan struct{})}

	startTimer := func() {
		pl.timerMu.Lock()
		defer pl.timerMu.Unlock()

		if pl.timer != nil {
			pl.timer.Stop()
		}
		pl.timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&pl.activeReqs) == 0 {
				pl.once.Do(func() { close(pl.idle) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&pl.activeReqs, 1)
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument && e.Response != nil {
				pl.docMu.Lock()
				if pl.docStatus == 0 {
					pl.docStatus = int(e.Response.Status)
					pl.docHeaders = http.Header{}
					for k, v := range e.Response.Headers {
						pl.docHeaders.Set(k, fmt.Sprint(v))
					}
				}
				pl.docMu.Unlock()
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&pl.activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return pl
}

func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("method %s not supported by chromedp backend", method)
	}

	idleAfter := cdc.idleAfter
	if v, ok := req.Options["idle_after"]; ok {
		if d, err := time.ParseDuration(v); err == nil {
			idleAfter = d
		}
	}

	tabCtx, cancelTab := chromedp.NewContext(cdc.allocCtx)
	defer cancelTab()
	// Tie the tab to the caller's deadline and cancellation.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})

	pl := listenPage(tabCtx, idleAfter)
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		cdc.logger.Warn("chromedp navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	select {
	case <-pl.idle:
	case <-time.After(maxIdleWaits * idleAfter):
		cdc.logger.Debug("network never went idle", logging.Field{Key: "url", Value: req.URL})
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("chromedp outer html: %w", err)
	}

	pl.docMu.Lock()
	status, headers := pl.docStatus, pl.docHeaders
	pl.docMu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}

	return &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    headers,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Head is not available in a browser; it always fails.
func (cdc *ChromedpClient) Head(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodHead, URL: url})
}

func (cdc *ChromedpClient) Close() error {
	cdc.logger.Debug("closing chromedp webclient")
	cdc.allocCancel()
	return nil
}
