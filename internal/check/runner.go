// Package check runs named smoke tests and keeps pass/fail counts.
package check

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raysh454/stereocheck/internal/logging"
)

// TestFunc is one smoke test. false means a checked condition did not hold;
// an error means the test could not finish. Both count as a failure.
type TestFunc func(ctx context.Context) (bool, error)

// Result is the outcome of a single test.
type Result struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary aggregates the results of one suite run.
type Summary struct {
	Suite   string   `json:"suite"`
	BaseURL string   `json:"base_url"`
	Run     int      `json:"tests_run"`
	Passed  int      `json:"tests_passed"`
	Results []Result `json:"results"`
}

// AllPassed reports whether every test that ran passed.
func (s Summary) AllPassed() bool { return s.Passed == s.Run }

// EventKind distinguishes start and finish events.
type EventKind string

const (
	EventTestStarted  EventKind = "test_started"
	EventTestFinished EventKind = "test_finished"
)

// Event is emitted to a Sink around every test.
type Event struct {
	Kind   EventKind `json:"kind"`
	Suite  string    `json:"suite"`
	Test   string    `json:"test"`
	Result *Result   `json:"result,omitempty"`
	At     time.Time `json:"at"`
}

// Sink receives runner events. It is called synchronously.
type Sink func(Event)

// Runner runs tests one after another, printing progress to its writer.
type Runner struct {
	suite  string
	out    io.Writer
	sink   Sink
	logger logging.Logger

	run     int
	passed  int
	results []Result
}

// NewRunner creates a Runner for the named suite. sink and logger may be nil.
func NewRunner(suite string, out io.Writer, sink Sink, logger logging.Logger) *Runner {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		suite:  suite,
		out:    out,
		sink:   sink,
		logger: logger.With(logging.Field{Key: "suite", Value: suite}),
	}
}

// Out is the writer tests print their detail lines to.
func (r *Runner) Out() io.Writer { return r.out }

// Printf writes a formatted line fragment to the report.
func (r *Runner) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Println writes a line to the report.
func (r *Runner) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Run executes fn as the test called name. Errors and panics are captured,
// printed and counted as a failure; they never escape.
func (r *Runner) Run(ctx context.Context, name string, fn TestFunc) bool {
	r.run++
	r.Printf("\n🔍 Testing %s...\n", name)
	r.emit(Event{Kind: EventTestStarted, Suite: r.suite, Test: name, At: time.Now()})

	start := time.Now()
	ok, err := invoke(ctx, fn)
	res := Result{Name: name, Passed: ok && err == nil, Duration: time.Since(start)}

	switch {
	case err != nil:
		res.Error = err.Error()
		r.Printf("❌ Failed - Error: %s\n", err)
		r.logger.Warn("test errored", logging.Field{Key: "test", Value: name}, logging.Field{Key: "error", Value: err})
	case ok:
		r.passed++
		r.Println("✅ Passed")
	default:
		r.Println("❌ Failed")
	}

	r.results = append(r.results, res)
	r.emit(Event{Kind: EventTestFinished, Suite: r.suite, Test: name, Result: &res, At: time.Now()})
	return res.Passed
}

func invoke(ctx context.Context, fn TestFunc) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok, err = false, fmt.Errorf("panic: %v", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return fn(ctx)
}

func (r *Runner) emit(ev Event) {
	if r.sink != nil {
		r.sink(ev)
	}
}

// TestsRun is the number of tests started so far.
func (r *Runner) TestsRun() int { return r.run }

// TestsPassed is the number of tests that passed so far.
func (r *Runner) TestsPassed() int { return r.passed }

// AllPassed reports whether every test so far passed.
func (r *Runner) AllPassed() bool { return r.passed == r.run }

// Summary snapshots the counters and results.
func (r *Runner) Summary(baseURL string) Summary {
	return Summary{
		Suite:   r.suite,
		BaseURL: baseURL,
		Run:     r.run,
		Passed:  r.passed,
		Results: append([]Result(nil), r.results...),
	}
}
