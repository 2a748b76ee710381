// Package suites holds the car stereo smoke-test suites: backend, frontend
// and the comprehensive report. Suites are independent; each fetches what it
// needs and shares nothing with the others.
package suites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/fetcher"
	"github.com/raysh454/stereocheck/internal/logging"
)

// ErrUnknownSuite is returned by Lookup for names that are not registered.
var ErrUnknownSuite = errors.New("unknown suite")

// Env carries what a suite needs for one run.
type Env struct {
	BaseURL string
	Fetcher *fetcher.Fetcher

	// AppRoot is the directory the page is served from, inspected by the
	// report's file checks.
	AppRoot string

	// DiscoverAssets adds every asset referenced by the page to the fixed
	// asset list of the backend suite.
	DiscoverAssets bool

	Out    io.Writer
	Sink   check.Sink
	Logger logging.Logger

	// Now stamps the report; defaults to time.Now.
	Now func() time.Time
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) logger() logging.Logger {
	if e.Logger == nil {
		return logging.Nop()
	}
	return e.Logger
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.out(), format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.out(), args...)
}

// Outcome is the result of a suite run.
type Outcome struct {
	Summary check.Summary
	// OK decides the exit code.
	OK bool
	// Page is the last copy of the main page fetched, nil if none was.
	Page *fetcher.Page
}

// Suite runs one checklist against env.BaseURL.
type Suite func(ctx context.Context, env *Env) Outcome

var registry = map[string]Suite{
	"backend":  Backend,
	"frontend": Frontend,
	"report":   Report,
}

// Names lists the suites in the order "all" runs them.
func Names() []string {
	return []string{"backend", "frontend", "report"}
}

// Lookup returns the suite registered under name.
func Lookup(name string) (Suite, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q: choose one of %s", ErrUnknownSuite, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// listRepr renders items as ['a', 'b'].
func listRepr(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
