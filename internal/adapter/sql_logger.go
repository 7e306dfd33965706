package adapter

import (
	"context"
	"database/sql"

	"github.com/pgpolicy/pgpolicy/internal/logger"
)

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execOn executes SQL with debug logging when debug mode is enabled. It
// logs the statement before execution and the result or error after.
func execOn(ctx context.Context, e execer, query string, args []any, description string) (sql.Result, error) {
	isDebug := logger.IsDebug()
	if isDebug {
		logger.Get().Debug("Executing SQL", "description", description, "sql", query, "args", len(args))
	}

	result, err := e.ExecContext(ctx, query, args...)

	if isDebug {
		if err != nil {
			logger.Get().Debug("SQL execution failed", "description", description, "error", err)
		} else {
			logger.Get().Debug("SQL execution succeeded", "description", description)
		}
	}

	return result, err
}

func (a *Adapter) execContext(ctx context.Context, query string, args []any, description string) (sql.Result, error) {
	return execOn(ctx, a.db, query, args, description)
}

// queryContext runs a query with the same debug logging as execContext.
func (a *Adapter) queryContext(ctx context.Context, query string, args []any, description string) (*sql.Rows, error) {
	isDebug := logger.IsDebug()
	if isDebug {
		logger.Get().Debug("Executing query", "description", description, "sql", query, "args", len(args))
	}

	rows, err := a.db.QueryContext(ctx, query, args...)

	if isDebug && err != nil {
		logger.Get().Debug("Query failed", "description", description, "error", err)
	}

	return rows, err
}
