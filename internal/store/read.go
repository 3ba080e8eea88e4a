package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reprec/reprec/internal/rewrite"
)

// ErrNotFound indicates the requested run does not exist.
var ErrNotFound = errors.New("run not found")

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit of 0 or less returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, fragment_hash, target, source, result, created_at
		FROM runs ORDER BY created_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.FragmentHash, &r.Target, &r.Source, &r.Result, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fragment_hash, target, source, result, created_at
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.FragmentHash, &r.Target, &r.Source, &r.Result, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// GetDecisions returns a run's decisions in dispatch order.
func (s *Store) GetDecisions(ctx context.Context, runID string) ([]rewrite.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, op, before, after
		FROM decisions WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get decisions: %w", err)
	}
	defer rows.Close()

	var ds []rewrite.Decision
	for rows.Next() {
		var d rewrite.Decision
		if err := rows.Scan(&d.Rule, &d.Op, &d.Before, &d.After); err != nil {
			return nil, fmt.Errorf("get decisions: scan: %w", err)
		}
		ds = append(ds, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get decisions: %w", err)
	}
	return ds, nil
}

// FindByFragment returns runs whose source hashes to the same fragment
// hash, newest first.
func (s *Store) FindByFragment(ctx context.Context, source string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fragment_hash, target, source, result, created_at
		FROM runs WHERE fragment_hash = ? ORDER BY created_at DESC, id DESC
	`, FragmentHash(source))
	if err != nil {
		return nil, fmt.Errorf("find by fragment: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.FragmentHash, &r.Target, &r.Source, &r.Result, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("find by fragment: scan: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by fragment: %w", err)
	}
	return runs, nil
}
