package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/logging"
)

// NewInMemoryTracker keeps history for the life of the process, used when no
// history file is configured.
func NewInMemoryTracker(cfg *Config, logger logging.Logger) (Tracker, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		return nil, errors.New("tracker: nil logger provided")
	}
	return &inMemoryTracker{
		cfg:    cfg,
		logger: logger,
		pages:  make(map[string]string),
	}, nil
}

type inMemoryTracker struct {
	cfg    *Config
	logger logging.Logger

	mu    sync.RWMutex
	runs  []*Run // oldest first
	pages map[string]string
}

var _ Tracker = (*inMemoryTracker)(nil)

func (t *inMemoryTracker) RecordRun(ctx context.Context, rec RunRecord) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		Suite:       rec.Suite,
		BaseURL:     rec.BaseURL,
		StartedAt:   rec.StartedAt,
		FinishedAt:  rec.FinishedAt,
		TestsRun:    rec.Summary.Run,
		TestsPassed: rec.Summary.Passed,
		OK:          rec.OK,
		Results:     append([]check.Result(nil), rec.Summary.Results...),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.PageBody != "" {
		run.PageHash = pageHash(rec.PageBody)
		t.pages[run.PageHash] = rec.PageBody
	}
	t.runs = append(t.runs, run)
	sort.SliceStable(t.runs, func(i, j int) bool { return t.runs[i].StartedAt.Before(t.runs[j].StartedAt) })

	if keep := t.cfg.MaxHistory; keep > 0 && len(t.runs) > keep {
		t.runs = append([]*Run(nil), t.runs[len(t.runs)-keep:]...)
		t.dropOrphanPages()
	}

	t.logger.Debug("run recorded", logging.Field{Key: "run_id", Value: run.ID}, logging.Field{Key: "suite", Value: run.Suite})
	return copyRun(run, true), nil
}

func (t *inMemoryTracker) dropOrphanPages() {
	used := make(map[string]bool, len(t.runs))
	for _, r := range t.runs {
		used[r.PageHash] = true
	}
	for h := range t.pages {
		if !used[h] {
			delete(t.pages, h)
		}
	}
}

func (t *inMemoryTracker) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Run, 0, len(t.runs))
	for i := len(t.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, copyRun(t.runs[i], false))
	}
	return out, nil
}

func (t *inMemoryTracker) GetRun(ctx context.Context, id string) (*Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, run := t.find(id); run != nil {
		return copyRun(run, true), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}

func (t *inMemoryTracker) PageDrift(ctx context.Context, id string) (*Drift, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, head := t.find(id)
	if head == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if head.PageHash == "" {
		return computeDrift("", head.ID, "", ""), nil
	}
	headBody := t.pages[head.PageHash]

	for i := idx - 1; i >= 0; i-- {
		prev := t.runs[i]
		if prev.BaseURL != head.BaseURL || prev.PageHash == "" || !prev.StartedAt.Before(head.StartedAt) {
			continue
		}
		return computeDrift(prev.ID, head.ID, t.pages[prev.PageHash], headBody), nil
	}
	return computeDrift("", head.ID, headBody, headBody), nil
}

func (t *inMemoryTracker) find(id string) (int, *Run) {
	for i, r := range t.runs {
		if r.ID == id {
			return i, r
		}
	}
	return -1, nil
}

func (t *inMemoryTracker) Close() error {
	return nil
}

func copyRun(r *Run, withResults bool) *Run {
	c := *r
	c.Results = nil
	if withResults {
		c.Results = append([]check.Result(nil), r.Results...)
	}
	return &c
}
