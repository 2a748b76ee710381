package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/valyala/fasthttp"
)

// FastHTTPClient is a WebClient backed by valyala/fasthttp.
type FastHTTPClient struct {
	client    *fasthttp.Client
	timeout   time.Duration
	userAgent string
	logger    logging.Logger
}

func NewFastHTTPClient(cfg Config, logger logging.Logger) (*FastHTTPClient, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "fasthttp"})

	client := &fasthttp.Client{
		ReadTimeout:         cfg.timeout(),
		WriteTimeout:        cfg.timeout(),
		MaxIdleConnDuration: 2 * time.Second,
	}

	componentLogger.Debug("created fasthttp webclient",
		logging.Field{Key: "timeout", Value: cfg.timeout().String()})

	return &FastHTTPClient{
		client:    client,
		timeout:   cfg.timeout(),
		userAgent: cfg.UserAgent,
		logger:    componentLogger,
	}, nil
}

func (fc *FastHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	fc.logger.Debug("sending fasthttp request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(method)
	if fc.userAgent != "" {
		freq.Header.SetUserAgent(fc.userAgent)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			freq.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 {
		freq.SetBody(req.Body)
	}
	if method == http.MethodHead {
		fresp.SkipBody = true
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(fc.timeout)
	}
	if err := fc.client.DoDeadline(freq, fresp, deadline); err != nil {
		fc.logger.Warn("fasthttp request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("fasthttp do: %w", err)
	}

	headers := http.Header{}
	fresp.Header.VisitAll(func(k, v []byte) {
		headers.Add(string(k), string(v))
	})

	// fresp is released on return; the body must be copied out first.
	body := append([]byte(nil), fresp.Body()...)

	return &Response{
		Request:    req,
		Body:       body,
		Headers:    headers,
		StatusCode: fresp.StatusCode(),
		FetchedAt:  time.Now(),
	}, nil
}

func (fc *FastHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return fc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (fc *FastHTTPClient) Head(ctx context.Context, url string) (*Response, error) {
	return fc.Do(ctx, &Request{Method: http.MethodHead, URL: url})
}

func (fc *FastHTTPClient) Close() error {
	fc.logger.Debug("closing fasthttp webclient")
	fc.client.CloseIdleConnections()
	return nil
}
