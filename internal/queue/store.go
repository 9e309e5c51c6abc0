package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"gearqueue/internal/logging"
)

// Adapter is the SQLite persistence backend for one owning queue system. It
// exclusively owns its connection, table name, and query buffer.
type Adapter struct {
	db        *sql.DB
	conn      *sql.Conn
	lock      *flock.Flock
	path      string
	table     string
	ident     string
	query     queryBuffer
	inTx      bool
	registrar Registrar
	logger    *slog.Logger
}

var errClosed = errors.New("adapter is closed")

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Open parses module options, opens or creates the backing store, discovers
// or creates the queue table, and registers the adapter with reg. reg may be
// nil when the caller drives the adapter directly. Any failure releases what
// was acquired before returning.
func Open(ctx context.Context, opts Options, reg Registrar, logger *slog.Logger) (*Adapter, error) {
	ctx = ensureContext(ctx)
	logger = logging.NewComponentLogger(logger, ModuleName)
	logger.Info("initializing libsqlite3 module")

	settings, err := ParseOptions(opts)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		path:   settings.DB,
		table:  settings.Table,
		ident:  quoteIdentifier(settings.Table),
		logger: logger,
	}
	if err := a.openStore(ctx); err != nil {
		_ = a.releaseStore()
		return nil, err
	}
	if err := a.bootstrap(ctx); err != nil {
		_ = a.releaseStore()
		return nil, err
	}

	if reg != nil {
		reg.SetPersistence(a)
		a.registrar = reg
	}
	return a, nil
}

func (a *Adapter) openStore(ctx context.Context) error {
	if lockPath, ok := storeLockPath(a.path); ok {
		a.lock = flock.New(lockPath)
		locked, err := a.lock.TryLock()
		if err != nil {
			return newError(KindBackendOpen, "init", fmt.Errorf("lock %s: %w", a.path, err))
		}
		if !locked {
			a.lock = nil
			return newError(KindBackendOpen, "init", fmt.Errorf("database %s is in use by another process", a.path))
		}
	}

	db, err := sql.Open("sqlite", a.path)
	if err != nil {
		return newError(KindBackendOpen, "init", fmt.Errorf("can't open database: %w", err))
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	a.db = db

	conn, err := db.Conn(ctx)
	if err != nil {
		return newError(KindBackendOpen, "init", fmt.Errorf("can't open database: %w", err))
	}
	a.conn = conn
	if err := conn.PingContext(ctx); err != nil {
		return newError(KindBackendOpen, "init", fmt.Errorf("can't open database: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return newError(KindBackendOpen, "init", fmt.Errorf("apply pragma %q: %w", pragma, err))
		}
	}
	return nil
}

// Close unregisters the adapter and releases the connection, the store lock,
// and the query buffer. An open transaction is discarded by SQLite when the
// connection closes. Operations after Close fail with a statement error.
func (a *Adapter) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	a.logger.Info("shutting down libsqlite3 module")
	if a.registrar != nil {
		a.registrar.SetPersistence(nil)
		a.registrar = nil
	}
	a.query.release()
	a.inTx = false
	return a.releaseStore()
}

// storeLockPath returns the lock file guarding db. In-memory databases are
// private to their connection and get no lock. For file: URIs the lock sits
// next to the file the URI names.
func storeLockPath(db string) (string, bool) {
	if db == ":memory:" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(db, "file:"); ok {
		path, query, _ := strings.Cut(rest, "?")
		if path == "" || path == ":memory:" || strings.Contains("&"+query+"&", "&mode=memory&") {
			return "", false
		}
		return path + ".lock", true
	}
	return db + ".lock", true
}

func (a *Adapter) releaseStore() error {
	var errs []error
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
		a.conn = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
		a.lock = nil
	}
	return errors.Join(errs...)
}

// Path returns the backing store path.
func (a *Adapter) Path() string { return a.path }

// Table returns the configured table name.
func (a *Adapter) Table() string { return a.table }

// InTransaction reports whether a transaction is open on the connection.
func (a *Adapter) InTransaction() bool { return a.inTx }
