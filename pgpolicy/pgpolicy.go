// Package pgpolicy provides a programmatic API for storing access-control
// policy rules in PostgreSQL. A policy engine hands the adapter its
// in-memory model; the adapter persists rules as fixed-shape records and
// loads them back, with a transactional full replace and exact or filtered
// removal.
package pgpolicy

import (
	"context"
	"database/sql"

	"github.com/pgpolicy/pgpolicy/internal/adapter"
)

// Open connects to PostgreSQL, creates the rule table if it does not
// exist, and returns an open adapter that owns the connection.
func Open(ctx context.Context, cfg Config) (*Adapter, error) {
	return adapter.Open(ctx, cfg)
}

// NewWithDB wraps a caller-supplied connection pool. The adapter borrows
// the pool: Close marks the adapter closed but the pool stays open and its
// lifecycle remains the caller's. An empty tableName selects
// DefaultTableName. The rule table is not created; call EnsureTable if
// needed.
func NewWithDB(ctx context.Context, db *sql.DB, tableName string) (*Adapter, error) {
	return adapter.NewWithDB(ctx, db, tableName)
}
