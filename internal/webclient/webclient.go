package webclient

import (
	"context"
	"errors"
)

// ErrNilRequest is returned by every backend when Do receives a nil request.
var ErrNilRequest = errors.New("nil request")

// WebClient performs HTTP requests against the page under check.
// Implementations must honor ctx cancellation and deadlines.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	// Head is a convenience method for HEAD requests; the response body is empty.
	Head(ctx context.Context, url string) (*Response, error)

	Close() error
}
