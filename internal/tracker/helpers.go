package tracker

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

//go:embed schema.sql
var schemaFS embed.FS

// applySchema applies the SQLite schema to the database and sets appropriate pragmas.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000", // ms
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}

	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// pageHash is the content address of a page body.
func pageHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// computeDrift diffs two page bodies at character level and keeps only the
// non-blank insertions and deletions.
func computeDrift(baseID, headID, base, head string) *Drift {
	drift := &Drift{BaseRunID: baseID, HeadRunID: headID, Chunks: []Chunk{}}
	if base == head {
		return drift
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
			drift.Added += len(d.Text)
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
			drift.Removed += len(d.Text)
		case diffmatchpatch.DiffEqual:
			continue
		}

		if strings.TrimSpace(d.Text) != "" {
			drift.Chunks = append(drift.Chunks, Chunk{Type: chunkType, Content: d.Text})
		}
	}
	return drift
}
