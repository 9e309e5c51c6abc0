package queue

import (
	"context"
	"database/sql"
	"fmt"

	"gearqueue/internal/logging"
)

// prepare compiles query on the adapter's connection. The caller owns the
// returned statement and must Close it on every path.
func (a *Adapter) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if a.conn == nil {
		return nil, errClosed
	}
	a.logger.Debug("sqlite query", logging.String("query", query))
	stmt, err := a.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite prepare: %w", err)
	}
	return stmt, nil
}

// exec prepares query, runs it once with args, and finalizes the statement.
// A finalize failure is reported only when execution itself succeeded.
func (a *Adapter) exec(ctx context.Context, query string, args ...any) (res sql.Result, err error) {
	stmt, err := a.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("sqlite finalize: %w", cerr)
		}
	}()

	res, err = stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite step: %w", err)
	}
	return res, nil
}
