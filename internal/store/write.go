package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/reprec/reprec/internal/rewrite"
)

// Run is a persisted rewrite run: one fragment, one target, one result.
type Run struct {
	ID           string
	FragmentHash string
	Target       string
	Source       string
	Result       string
	CreatedAt    string
}

// FragmentHash returns the content hash of a fragment's source text,
// SHA-256 over the NFC normalization so that visually identical sources
// with different Unicode compositions hash alike.
func FragmentHash(source string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(source)))
	return hex.EncodeToString(sum[:])
}

// WriteRun inserts a run and its decisions in one transaction and returns
// the generated run ID. Decisions keep their dispatch order via seq.
func (s *Store) WriteRun(ctx context.Context, targetName, source, result string, decisions []rewrite.Decision) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, fragment_hash, target, source, result)
		VALUES (?, ?, ?, ?, ?)
	`, id, FragmentHash(source), targetName, source, result)
	if err != nil {
		return "", fmt.Errorf("write run: insert run: %w", err)
	}

	for i, d := range decisions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO decisions (run_id, seq, rule, op, before, after)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, d.Rule, d.Op, d.Before, d.After)
		if err != nil {
			return "", fmt.Errorf("write run: insert decision %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}

	return id, nil
}
