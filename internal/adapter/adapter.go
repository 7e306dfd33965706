// Package adapter persists policy rules in a PostgreSQL table and loads
// them back into an in-memory policy model. One row represents one rule:
// the rule-set name plus six nullable value columns. Mutations are always
// delete+insert, never in-place updates, and the full replace runs in a
// single transaction.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/pgpolicy/pgpolicy/internal/logger"
	"github.com/pgpolicy/pgpolicy/internal/model"
)

// DefaultTableName is the rule table used when Config.TableName is empty.
const DefaultTableName = "policy_rules"

// Config holds connection parameters for an adapter-owned database
// connection.
type Config struct {
	Host      string
	Port      int
	Database  string
	User      string
	Password  string
	SSLMode   string // defaults to "prefer"
	TableName string // defaults to DefaultTableName
}

type lifecycle int

const (
	stateUnopened lifecycle = iota
	stateOpen
	stateClosed
)

// Adapter stores and retrieves policy rules. It is stateless across calls
// apart from its connection lifecycle; correctness under concurrent callers
// comes from the database's transaction isolation, not adapter-level
// locking. The mutex below guards only the lifecycle state and the
// filtered flag.
type Adapter struct {
	db     *sql.DB
	table  string
	ownsDB bool

	mu       sync.Mutex
	state    lifecycle
	filtered bool
}

// Interface is the operation surface a policy engine consumes.
type Interface interface {
	LoadPolicy(ctx context.Context, m *model.Model) error
	LoadFilteredPolicy(ctx context.Context, m *model.Model, filters ...Filter) error
	SavePolicy(ctx context.Context, m *model.Model) error
	AddPolicy(ctx context.Context, sec, ptype string, params []string) error
	AddPolicies(ctx context.Context, sec, ptype string, rules [][]string) error
	RemovePolicy(ctx context.Context, sec, ptype string, params []string) error
	RemovePolicies(ctx context.Context, sec, ptype string, rules [][]string) error
	RemoveFilteredPolicy(ctx context.Context, sec, ptype string, fieldIndex int, fieldValues ...string) error
	Close() error
}

var _ Interface = (*Adapter)(nil)

// Open connects to PostgreSQL, creates the rule table if it does not exist,
// and returns an open adapter that owns the connection. Close will close it.
func Open(ctx context.Context, cfg Config) (*Adapter, error) {
	log := logger.Get()
	log.Debug("opening policy store",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"table", tableOrDefault(cfg.TableName),
	)

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	a := &Adapter{
		db:     db,
		table:  tableOrDefault(cfg.TableName),
		ownsDB: true,
		state:  stateOpen,
	}
	if err := a.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB wraps a caller-supplied open connection pool. The adapter does
// not own it: Close marks the adapter closed but leaves the pool open. The
// rule table is not created; call EnsureTable if needed.
func NewWithDB(ctx context.Context, db *sql.DB, tableName string) (*Adapter, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &Adapter{
		db:     db,
		table:  tableOrDefault(tableName),
		ownsDB: false,
		state:  stateOpen,
	}, nil
}

// EnsureTable creates the rule table if it does not already exist.
func (a *Adapter) EnsureTable(ctx context.Context) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    ptype TEXT NOT NULL,
    v0 TEXT, v1 TEXT, v2 TEXT, v3 TEXT, v4 TEXT, v5 TEXT
)`, a.quotedTable())
	if _, err := a.execContext(ctx, ddl, nil, "create rule table"); err != nil {
		return fmt.Errorf("%w: create table %s: %w", ErrSaveFailed, a.table, err)
	}
	return nil
}

// TableName returns the rule table the adapter operates on.
func (a *Adapter) TableName() string {
	return a.table
}

// IsFiltered reports whether the adapter last loaded a partial rule set via
// LoadFilteredPolicy. SavePolicy refuses to run in that state so a partial
// load can never overwrite the full stored set.
func (a *Adapter) IsFiltered() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filtered
}

// Close releases the connection if the adapter owns it. Closed is terminal:
// the adapter cannot be reopened and every later operation fails with
// ErrNotOpen. Closing a borrowed pool is the caller's job, not ours.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateClosed {
		return nil
	}
	a.state = stateClosed
	if a.ownsDB {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) requireOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != stateOpen {
		return ErrNotOpen
	}
	return nil
}

func (a *Adapter) setFiltered(v bool) {
	a.mu.Lock()
	a.filtered = v
	a.mu.Unlock()
}

func (a *Adapter) quotedTable() string {
	return pq.QuoteIdentifier(a.table)
}

func tableOrDefault(name string) string {
	if name == "" {
		return DefaultTableName
	}
	return name
}

// buildDSN constructs a PostgreSQL connection string from the config.
func buildDSN(cfg Config) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", cfg.Host))
	parts = append(parts, fmt.Sprintf("port=%d", cfg.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", cfg.Database))
	parts = append(parts, fmt.Sprintf("user=%s", cfg.User))

	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslMode))

	return strings.Join(parts, " ")
}
