package queue

import (
	"context"
	"fmt"
	"strconv"

	"gearqueue/internal/logging"
)

var _ Persistence = (*Adapter)(nil)

// Add persists one queue item inside its own transaction. All values are
// bound as statement parameters; data is stored as a BLOB so arbitrary bytes
// round-trip. A duplicate unique key surfaces as the store's constraint error.
func (a *Adapter) Add(ctx context.Context, unique, functionName string, data []byte, priority Priority) error {
	ctx = ensureContext(ctx)
	a.logger.Debug("sqlite add", logging.String("unique", strconv.Quote(unique)))

	if !priority.Valid() {
		return configError("add", "invalid priority %d", int(priority))
	}

	buf, err := a.query.ensure("add", querySize(len(unique), len(functionName), len(data)))
	if err != nil {
		return err
	}
	query := fmt.Appendf(buf[:0], "INSERT INTO %s (priority,unique_key,function_name,data) VALUES (?,?,?,?)", a.ident)

	if err := a.Lock(ctx); err != nil {
		return err
	}

	res, err := a.exec(ctx, string(query), int64(priority), unique, functionName, data)
	if err != nil {
		return a.abort(ctx, newError(KindStatement, "add", fmt.Errorf("insert error: %w", err)))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return a.abort(ctx, newError(KindStatement, "add", fmt.Errorf("rows affected: %w", err)))
	}
	if affected != 1 {
		return a.abort(ctx, newError(KindStatement, "add", fmt.Errorf("insert affected %d rows, expected 1", affected)))
	}

	return a.Commit(ctx)
}

// Done removes the item with the given unique key. functionName is accepted
// for symmetry with Add and is not part of the predicate. Removing a key that
// is not stored succeeds.
func (a *Adapter) Done(ctx context.Context, unique, functionName string) error {
	ctx = ensureContext(ctx)
	a.logger.Debug("sqlite done", logging.String("unique", strconv.Quote(unique)))

	buf, err := a.query.ensure("done", querySize(len(unique)))
	if err != nil {
		return err
	}
	query := fmt.Appendf(buf[:0], "DELETE FROM %s WHERE unique_key=?", a.ident)

	if err := a.Lock(ctx); err != nil {
		return err
	}
	if _, err := a.exec(ctx, string(query), unique); err != nil {
		return a.abort(ctx, newError(KindStatement, "done", fmt.Errorf("delete error: %w", err)))
	}
	return a.Commit(ctx)
}

// Flush always succeeds: every Add and Done is already committed.
func (a *Adapter) Flush(ctx context.Context) error {
	a.logger.Debug("sqlite flush")
	return nil
}

// Replay reads every stored row outside of a transaction and hands each to
// restore. Each Item.Data is a fresh copy owned by restore. Rows arrive in
// whatever order SQLite returns them. The first restore error stops the
// replay and is returned with kind callback.
func (a *Adapter) Replay(ctx context.Context, restore RestoreFunc) (err error) {
	ctx = ensureContext(ctx)
	a.logger.Info("sqlite replay start")

	if restore == nil {
		return configError("replay", "restore callback is required")
	}

	buf, err := a.query.ensure("replay", queryBufferMargin)
	if err != nil {
		return err
	}
	query := fmt.Appendf(buf[:0], "SELECT unique_key,function_name,priority,data,data IS NULL FROM %s", a.ident)

	stmt, err := a.prepare(ctx, string(query))
	if err != nil {
		return newError(KindStatement, "replay", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = newError(KindStatement, "replay", fmt.Errorf("sqlite finalize: %w", cerr))
		}
	}()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return newError(KindStatement, "replay", fmt.Errorf("sqlite step: %w", err))
	}
	defer rows.Close()

	restored := 0
	for rows.Next() {
		var (
			item     Item
			stored   int64
			nullData bool
		)
		// Scanning into a []byte copies the column value, so item.Data
		// outlives the statement.
		if err := rows.Scan(&item.Unique, &item.FunctionName, &stored, &item.Data, &nullData); err != nil {
			return newError(KindStatement, "replay", fmt.Errorf("scan row: %w", err))
		}
		if item.Data == nil && !nullData {
			item.Data = []byte{}
		}

		priority, exact := priorityFromStored(stored)
		if !exact {
			logging.WarnWithContext(a.logger, "stored priority out of range; clamped", "priority_clamped",
				logging.String("unique", strconv.Quote(item.Unique)),
				logging.Int64("stored", stored),
				logging.String("priority", priority.String()),
				logging.String(logging.FieldImpact, "job restored with clamped priority"),
			)
		}
		item.Priority = priority

		a.logger.Debug("sqlite replay", logging.String("function", strconv.Quote(item.FunctionName)))
		if err := restore(ctx, item); err != nil {
			return newError(KindCallback, "replay", err)
		}
		restored++
	}
	if err := rows.Err(); err != nil {
		return newError(KindStatement, "replay", fmt.Errorf("sqlite step: %w", err))
	}

	a.logger.Info("sqlite replay complete", logging.Int("items", restored))
	return nil
}
