package tracker_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/testutil"
	"github.com/raysh454/stereocheck/internal/tracker"
)

type factory func(t *testing.T, cfg tracker.Config) tracker.Tracker

func trackers() map[string]factory {
	return map[string]factory{
		"sqlite": func(t *testing.T, cfg tracker.Config) tracker.Tracker {
			cfg.StoragePath = filepath.Join(t.TempDir(), "history", "runs.db")
			tr, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, cfg)
			if err != nil {
				t.Fatalf("NewSQLiteTracker: %v", err)
			}
			t.Cleanup(func() { _ = tr.Close() })
			return tr
		},
		"memory": func(t *testing.T, cfg tracker.Config) tracker.Tracker {
			tr, err := tracker.NewInMemoryTracker(&cfg, &testutil.DummyLogger{})
			if err != nil {
				t.Fatalf("NewInMemoryTracker: %v", err)
			}
			return tr
		},
	}
}

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(suite, base string, minute int, passed bool, body string) tracker.RunRecord {
	assets := check.Result{Name: "Assets Availability", Passed: passed, Duration: 3 * time.Millisecond}
	if !passed {
		assets.Error = "error HEADing"
	}
	res := []check.Result{
		{Name: "Main Page Load", Passed: true, Duration: 12 * time.Millisecond},
		assets,
	}
	sum := check.Summary{Suite: suite, BaseURL: base, Run: 2, Passed: 1, Results: res}
	if passed {
		sum.Passed = 2
	}
	start := epoch.Add(time.Duration(minute) * time.Minute)
	return tracker.RunRecord{
		Suite:      suite,
		BaseURL:    base,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Summary:    sum,
		OK:         passed,
		PageBody:   body,
	}
}

func TestTracker_RecordAndGet(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{})
			ctx := context.Background()

			run, err := tr.RecordRun(ctx, record("backend", "http://a", 0, false, "<html>v1</html>"))
			if err != nil {
				t.Fatalf("RecordRun: %v", err)
			}
			if run.ID == "" || run.PageHash == "" {
				t.Fatalf("expected id and page hash, got %+v", run)
			}

			got, err := tr.GetRun(ctx, run.ID)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if got.Suite != "backend" || got.BaseURL != "http://a" || got.OK || got.TestsRun != 2 || got.TestsPassed != 1 {
				t.Errorf("unexpected run: %+v", got)
			}
			if !got.StartedAt.Equal(epoch) {
				t.Errorf("StartedAt = %v, want %v", got.StartedAt, epoch)
			}
			if len(got.Results) != 2 || got.Results[1].Name != "Assets Availability" || got.Results[1].Passed || got.Results[1].Error != "error HEADing" {
				t.Errorf("unexpected results: %+v", got.Results)
			}
			if got.Results[0].Duration != 12*time.Millisecond {
				t.Errorf("duration = %v", got.Results[0].Duration)
			}
		})
	}
}

func TestTracker_GetUnknownRun(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{})
			if _, err := tr.GetRun(context.Background(), "nope"); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Fatalf("expected ErrRunNotFound, got %v", err)
			}
			if _, err := tr.PageDrift(context.Background(), "nope"); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Fatalf("expected ErrRunNotFound from PageDrift, got %v", err)
			}
		})
	}
}

func TestTracker_ListNewestFirst(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{})
			ctx := context.Background()

			for i, suite := range []string{"backend", "frontend", "report"} {
				if _, err := tr.RecordRun(ctx, record(suite, "http://a", i, true, "")); err != nil {
					t.Fatalf("RecordRun: %v", err)
				}
			}

			runs, err := tr.ListRuns(ctx, 2)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != 2 || runs[0].Suite != "report" || runs[1].Suite != "frontend" {
				t.Fatalf("unexpected order: %v", suitesOf(runs))
			}
			if runs[0].Results != nil {
				t.Error("ListRuns should not load results")
			}

			all, _ := tr.ListRuns(ctx, 0)
			if len(all) != 3 {
				t.Errorf("ListRuns(0) = %d runs, want 3", len(all))
			}
		})
	}
}

func TestTracker_MaxHistory(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{MaxHistory: 2})
			ctx := context.Background()

			first, err := tr.RecordRun(ctx, record("backend", "http://a", 0, true, "one"))
			if err != nil {
				t.Fatalf("RecordRun: %v", err)
			}
			for i := 1; i <= 2; i++ {
				if _, err := tr.RecordRun(ctx, record("backend", "http://a", i, true, "two")); err != nil {
					t.Fatalf("RecordRun: %v", err)
				}
			}

			runs, _ := tr.ListRuns(ctx, 0)
			if len(runs) != 2 {
				t.Fatalf("kept %d runs, want 2", len(runs))
			}
			if _, err := tr.GetRun(ctx, first.ID); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("oldest run should be pruned, got %v", err)
			}
		})
	}
}

func TestTracker_PageDrift(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{})
			ctx := context.Background()

			v1 := `<div class="ticker" id="ticker">99 CENTS STEREO - PRESS PLAY</div>`
			v2 := `<div class="ticker" id="ticker">99 CENTS STEREO - NOW WITH MORE BASS</div>`

			first, _ := tr.RecordRun(ctx, record("frontend", "http://a", 0, true, v1))
			// Other base URLs never serve as the baseline.
			if _, err := tr.RecordRun(ctx, record("frontend", "http://b", 1, true, "unrelated")); err != nil {
				t.Fatalf("RecordRun: %v", err)
			}
			second, _ := tr.RecordRun(ctx, record("frontend", "http://a", 2, true, v2))

			initial, err := tr.PageDrift(ctx, first.ID)
			if err != nil {
				t.Fatalf("PageDrift: %v", err)
			}
			if initial.Changed() || initial.BaseRunID != "" {
				t.Errorf("first run should have no drift: %+v", initial)
			}

			drift, err := tr.PageDrift(ctx, second.ID)
			if err != nil {
				t.Fatalf("PageDrift: %v", err)
			}
			if drift.BaseRunID != first.ID || drift.HeadRunID != second.ID {
				t.Errorf("drift ids = %s..%s", drift.BaseRunID, drift.HeadRunID)
			}
			if !drift.Changed() {
				t.Fatal("expected drift")
			}
			var added, removed []string
			for _, c := range drift.Chunks {
				switch c.Type {
				case "added":
					added = append(added, c.Content)
				case "removed":
					removed = append(removed, c.Content)
				}
			}
			if !strings.Contains(strings.Join(added, ""), "BASS") {
				t.Errorf("added chunks = %q", added)
			}
			if !strings.Contains(strings.Join(removed, ""), "PLAY") {
				t.Errorf("removed chunks = %q", removed)
			}
		})
	}
}

func TestTracker_PageDriftWithoutPage(t *testing.T) {
	t.Parallel()
	for name, mk := range trackers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := mk(t, tracker.Config{})
			run, _ := tr.RecordRun(context.Background(), record("report", "http://a", 0, false, ""))

			drift, err := tr.PageDrift(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("PageDrift: %v", err)
			}
			if drift.Changed() || len(drift.Chunks) != 0 {
				t.Errorf("expected empty drift, got %+v", drift)
			}
		})
	}
}

func TestNewSQLiteTracker_Validation(t *testing.T) {
	t.Parallel()
	if _, err := tracker.NewSQLiteTracker(nil, tracker.Config{StoragePath: "x.db"}); err == nil {
		t.Error("expected error for nil logger")
	}
	if _, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, tracker.Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSQLiteTracker_Reopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	tr, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, tracker.Config{StoragePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	run, err := tr.RecordRun(ctx, record("backend", "http://a", 0, true, "page"))
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	_ = tr.Close()

	again, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, tracker.Config{StoragePath: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()

	got, err := again.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
	if !got.OK || got.PageHash != run.PageHash {
		t.Errorf("unexpected run after reopen: %+v", got)
	}
}

func suitesOf(runs []*tracker.Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Suite
	}
	return out
}
