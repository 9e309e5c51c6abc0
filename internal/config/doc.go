// Package config loads, normalizes, and validates gearqueue configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts) and
// reads TOML files. Queue module options are passed through verbatim so the
// persistence module that owns them can reject names it does not know.
package config
