package preflight

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"gearqueue/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the configured queue store. The
// store check only runs when the filesystem checks passed.
func RunAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) []Result {
	if cfg == nil {
		return nil
	}

	db := strings.TrimSpace(cfg.Queue.Options["db"])
	if db == "" {
		return []Result{{Name: "Queue database", Detail: "db option is not set"}}
	}

	results := []Result{
		CheckDirectoryAccess("Queue directory", filepath.Dir(db)),
		CheckDatabaseFile("Queue database", db),
	}
	for _, r := range results {
		if !r.Passed {
			return results
		}
	}
	return append(results, CheckQueueStore(ctx, "Queue store", cfg.ModuleOptions(), logger))
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
