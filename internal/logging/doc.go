// Package logging assembles the slog loggers used by gearqueue.
//
// It owns the console and JSON handlers, level parsing, output routing, and a
// handful of attribute helpers so every component logs with the same keys.
// A no-op logger is provided for tests and for wiring code that has no
// logger to pass.
package logging
