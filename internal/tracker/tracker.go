package tracker

import (
	"context"
	"errors"
)

// ErrRunNotFound is returned for run IDs the tracker does not know.
var ErrRunNotFound = errors.New("run not found")

// Tracker records suite runs and compares the pages they fetched.
// Implementations are safe for concurrent use.
type Tracker interface {
	// RecordRun stores a finished run and returns it with its new ID.
	RecordRun(ctx context.Context, rec RunRecord) (*Run, error)

	// ListRuns returns the most recent runs, newest first, without results.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// GetRun returns a run with its per-test results.
	GetRun(ctx context.Context, id string) (*Run, error)

	// PageDrift compares the page of run id with the page of the previous run
	// against the same base URL. With no earlier page the drift is empty.
	PageDrift(ctx context.Context, id string) (*Drift, error)

	Close() error
}
