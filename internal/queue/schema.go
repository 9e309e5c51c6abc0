package queue

import (
	"context"
	"fmt"

	"gearqueue/internal/logging"
)

const createTableSQL = "CREATE TABLE %s (unique_key TEXT PRIMARY KEY, function_name TEXT, priority INTEGER, data BLOB)"

// bootstrap reuses an existing table matching the configured name or creates
// one. Existing tables are never migrated.
func (a *Adapter) bootstrap(ctx context.Context) error {
	found, err := a.findTable(ctx)
	if err != nil {
		return newError(KindBackendSchema, "init", fmt.Errorf("list tables: %w", err))
	}
	if found != "" {
		a.logger.Info("sqlite module using table", logging.String("table", found))
		return nil
	}

	a.logger.Info("sqlite module creating table", logging.String("table", a.table))
	if _, err := a.exec(ctx, fmt.Sprintf(createTableSQL, a.ident)); err != nil {
		return newError(KindBackendSchema, "init", fmt.Errorf("create table %s: %w", a.table, err))
	}
	return nil
}

func (a *Adapter) findTable(ctx context.Context) (found string, err error) {
	stmt, err := a.prepare(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sqlite finalize: %w", cerr)
		}
	}()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return "", fmt.Errorf("sqlite step: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("scan table name: %w", err)
		}
		if sameIdentifier(name, a.table) {
			return name, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("sqlite step: %w", err)
	}
	return "", nil
}

// sameIdentifier compares names the way SQLite resolves identifiers:
// case-insensitively for ASCII letters only.
func sameIdentifier(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
