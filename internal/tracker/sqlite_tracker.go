package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/stereocheck/internal/check"
	"github.com/raysh454/stereocheck/internal/logging"
)

// SQLiteTracker implements Tracker on a single SQLite file. Page bodies are
// content-addressed so identical pages are stored once.
type SQLiteTracker struct {
	db     *sql.DB
	logger logging.Logger
	config Config
}

var _ Tracker = (*SQLiteTracker)(nil)

// NewSQLiteTracker opens (or creates) the history database at config.StoragePath.
func NewSQLiteTracker(logger logging.Logger, config Config) (*SQLiteTracker, error) {
	if logger == nil {
		return nil, errors.New("tracker: nil logger provided")
	}
	if config.StoragePath == "" {
		return nil, errors.New("tracker: empty storage path")
	}

	if dir := filepath.Dir(config.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps the pragmas in effect for every statement.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("SQLiteTracker initialized", logging.Field{Key: "path", Value: config.StoragePath})

	return &SQLiteTracker{db: db, logger: logger, config: config}, nil
}

// RecordRun stores rec, its results and its page in one transaction.
func (t *SQLiteTracker) RecordRun(ctx context.Context, rec RunRecord) (*Run, error) {
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

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var hash sql.NullString
	if rec.PageBody != "" {
		run.PageHash = pageHash(rec.PageBody)
		hash = sql.NullString{String: run.PageHash, Valid: true}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pages (hash, body) VALUES (?, ?)`,
			run.PageHash, rec.PageBody); err != nil {
			return nil, fmt.Errorf("insert page: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, base_url, started_at, finished_at, tests_run, tests_passed, ok, page_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Suite, run.BaseURL,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
		run.TestsRun, run.TestsPassed, boolToInt(run.OK), hash); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, r := range run.Results {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO results (run_id, position, name, passed, error, duration_ns)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Name, boolToInt(r.Passed), r.Error, int64(r.Duration)); err != nil {
			return nil, fmt.Errorf("insert result %q: %w", r.Name, err)
		}
	}

	if t.config.MaxHistory > 0 {
		if err := prune(ctx, tx, t.config.MaxHistory); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	t.logger.Debug("run recorded",
		logging.Field{Key: "run_id", Value: run.ID},
		logging.Field{Key: "suite", Value: run.Suite},
		logging.Field{Key: "passed", Value: run.TestsPassed},
		logging.Field{Key: "run", Value: run.TestsRun})
	return run, nil
}

// prune drops runs beyond the newest keep and pages no run references anymore.
func prune(ctx context.Context, tx *sql.Tx, keep int) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, keep); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM pages WHERE hash NOT IN (
			SELECT page_hash FROM runs WHERE page_hash IS NOT NULL
		)`); err != nil {
		return fmt.Errorf("prune pages: %w", err)
	}
	return nil
}

const runColumns = `id, suite, base_url, started_at, finished_at, tests_run, tests_passed, ok, page_hash`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run               Run
		started, finished int64
		ok                int
		hash              sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Suite, &run.BaseURL, &started, &finished,
		&run.TestsRun, &run.TestsPassed, &ok, &hash); err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, started)
	run.FinishedAt = time.Unix(0, finished)
	run.OK = ok != 0
	run.PageHash = hash.String
	return &run, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (t *SQLiteTracker) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with its results in execution order.
func (t *SQLiteTracker) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(t.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := t.db.QueryContext(ctx,
		`SELECT name, passed, error, duration_ns FROM results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r      check.Result
			passed int
			dur    int64
		)
		if err := rows.Scan(&r.Name, &passed, &r.Error, &dur); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Passed = passed != 0
		r.Duration = time.Duration(dur)
		run.Results = append(run.Results, r)
	}
	return run, rows.Err()
}

// PageDrift diffs the page of run id against the latest earlier page for the
// same base URL.
func (t *SQLiteTracker) PageDrift(ctx context.Context, id string) (*Drift, error) {
	head, err := t.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if head.PageHash == "" {
		return computeDrift("", head.ID, "", ""), nil
	}

	headBody, err := t.pageBody(ctx, head.PageHash)
	if err != nil {
		return nil, err
	}

	var (
		baseID   string
		baseHash string
	)
	err = t.db.QueryRowContext(ctx, `
		SELECT id, page_hash FROM runs
		WHERE base_url = ? AND page_hash IS NOT NULL AND started_at < ?
		ORDER BY started_at DESC LIMIT 1`,
		head.BaseURL, head.StartedAt.UnixNano()).Scan(&baseID, &baseHash)
	if errors.Is(err, sql.ErrNoRows) {
		return computeDrift("", head.ID, headBody, headBody), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find previous run: %w", err)
	}

	baseBody, err := t.pageBody(ctx, baseHash)
	if err != nil {
		return nil, err
	}
	return computeDrift(baseID, head.ID, baseBody, headBody), nil
}

func (t *SQLiteTracker) pageBody(ctx context.Context, hash string) (string, error) {
	var body string
	if err := t.db.QueryRowContext(ctx, `SELECT body FROM pages WHERE hash = ?`, hash).Scan(&body); err != nil {
		return "", fmt.Errorf("load page %s: %w", hash, err)
	}
	return body, nil
}

// Close closes the database.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
