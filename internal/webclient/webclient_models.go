package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options like "idle_after": "3s" for chromedp
	Options map[string]string
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// ContentType returns the response Content-Type header, or "Unknown".
func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return "Unknown"
	}
	if ct := r.Headers.Get("Content-Type"); ct != "" {
		return ct
	}
	return "Unknown"
}
