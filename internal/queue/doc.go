// Package queue persists gearman job queue items in SQLite so pending work
// survives a server restart.
//
// An Adapter owns one database connection, one backing table, and a reusable
// query buffer. Open bootstraps the table (reusing an existing one matched by
// case-insensitive name) and registers the adapter with the owning queue
// system through a Registrar. Every mutation runs in its own explicit
// BEGIN/COMMIT pair driven by Lock and Commit; Replay streams every persisted
// row back through a RestoreFunc at startup.
//
// The adapter assumes a single logical caller. Callers that share an Adapter
// across goroutines must serialise whole operations themselves; the jobqueue
// package does this with a mutex.
package queue
