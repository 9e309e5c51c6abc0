// Package main hosts the gearqueue CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the libsqlite3 persistence adapter
// directly: bootstrapping the table, adding and completing jobs, listing the
// persisted rows, restoring them into an in-memory job server for stats, and
// scaffolding configuration. Configuration resolution, module option flags,
// and logger setup live in the command context so subcommands only deal with
// the adapter.
package main
