package tracker

import (
	"time"

	"github.com/raysh454/stereocheck/internal/check"
)

// RunRecord is what a finished suite run hands to the tracker.
type RunRecord struct {
	Suite      string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    check.Summary
	OK         bool
	// PageBody is the main page as fetched during the run, empty if it never loaded.
	PageBody string
}

// Run is a stored suite run.
type Run struct {
	ID          string         `json:"id"`
	Suite       string         `json:"suite"`
	BaseURL     string         `json:"base_url"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	TestsRun    int            `json:"tests_run"`
	TestsPassed int            `json:"tests_passed"`
	OK          bool           `json:"ok"`
	PageHash    string         `json:"page_hash,omitempty"`
	Results     []check.Result `json:"results,omitempty"`
}

// Drift is how the main page changed between two runs against the same base URL.
type Drift struct {
	BaseRunID string  `json:"base_run_id,omitempty"`
	HeadRunID string  `json:"head_run_id"`
	Added     int     `json:"added"`
	Removed   int     `json:"removed"`
	Chunks    []Chunk `json:"chunks"`
}

// Changed reports whether any text was added or removed.
func (d *Drift) Changed() bool { return d.Added > 0 || d.Removed > 0 }

// Chunk is a single change in a drift.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}
