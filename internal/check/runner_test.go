package check_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/testutil"
)

func TestRunner_CountsAndOutput(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	var events []check.Event
	r := check.NewRunner("backend", &out, func(ev check.Event) { events = append(events, ev) }, nil)

	ctx := context.Background()
	r.Run(ctx, "Main Page Load", func(context.Context) (bool, error) { return true, nil })
	r.Run(ctx, "Assets Availability", func(context.Context) (bool, error) { return false, nil })
	r.Run(ctx, "HTML Structure", func(context.Context) (bool, error) { return false, errors.New("connection refused") })

	if r.TestsRun() != 3 || r.TestsPassed() != 1 {
		t.Fatalf("expected 1/3, got %d/%d", r.TestsPassed(), r.TestsRun())
	}
	if r.AllPassed() {
		t.Error("AllPassed should be false")
	}

	want := "\n🔍 Testing Main Page Load...\n✅ Passed\n" +
		"\n🔍 Testing Assets Availability...\n❌ Failed\n" +
		"\n🔍 Testing HTML Structure...\n❌ Failed - Error: connection refused\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}

	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	if events[0].Kind != check.EventTestStarted || events[5].Kind != check.EventTestFinished {
		t.Errorf("unexpected event order: %v, %v", events[0].Kind, events[5].Kind)
	}
	if events[5].Result == nil || events[5].Result.Error != "connection refused" {
		t.Errorf("expected error recorded on last result, got %+v", events[5].Result)
	}
}

func TestRunner_RecoversPanics(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	logger := &testutil.DummyLogger{}
	r := check.NewRunner("frontend", &out, nil, logger)

	passed := r.Run(context.Background(), "Debug Mode", func(context.Context) (bool, error) {
		var m map[string]int
		m["boom"] = 1
		return true, nil
	})

	if passed {
		t.Fatal("panicking test must not pass")
	}
	if !strings.Contains(out.String(), "❌ Failed - Error: panic:") {
		t.Errorf("expected panic reported, got %q", out.String())
	}
	if r.TestsRun() != 1 || r.TestsPassed() != 0 {
		t.Errorf("unexpected counters %d/%d", r.TestsPassed(), r.TestsRun())
	}
	if len(logger.Warns) != 1 {
		t.Errorf("expected one warning logged, got %v", logger.Warns)
	}
}

func TestRunner_CanceledContextFailsTest(t *testing.T) {
	t.Parallel()
	r := check.NewRunner("report", nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	r.Run(ctx, "Audio Functionality", func(context.Context) (bool, error) {
		called = true
		return true, nil
	})
	if called {
		t.Error("test body should not run after cancellation")
	}
	if r.AllPassed() {
		t.Error("canceled test must count as failed")
	}
}

func TestRunner_Summary(t *testing.T) {
	t.Parallel()
	r := check.NewRunner("backend", nil, nil, nil)
	r.Run(context.Background(), "A", func(context.Context) (bool, error) { return true, nil })
	r.Run(context.Background(), "B", func(context.Context) (bool, error) { return true, nil })

	s := r.Summary("http://localhost:8080")
	if s.Suite != "backend" || s.BaseURL != "http://localhost:8080" || s.Run != 2 || s.Passed != 2 || !s.AllPassed() {
		t.Errorf("unexpected summary %+v", s)
	}
	if len(s.Results) != 2 || s.Results[1].Name != "B" {
		t.Errorf("unexpected results %+v", s.Results)
	}
}

func TestSummary_EmptyRunPasses(t *testing.T) {
	t.Parallel()
	if !(check.Summary{}).AllPassed() {
		t.Error("zero tests run counts as all passed")
	}
}
