// Package store persists rewrite runs and their per-node decisions to
// SQLite, so a fragment's retargeting history can be inspected after the
// fact. Runs are keyed by a content hash of the normalized source text,
// which makes it cheap to ask "has this exact fragment been rewritten
// under this target before, and what did the rewriter do".
package store
