package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"gearqueue/internal/queue"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabaseFile verifies that an existing database file is a readable and
// writable regular file. A missing file passes since Open creates it.
func CheckDatabaseFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckQueueStore opens the adapter, counts persisted items, and closes it.
func CheckQueueStore(ctx context.Context, name string, opts queue.Options, logger *slog.Logger) Result {
	adapter, err := queue.Open(ctx, opts, nil, logger)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%s: %v)", queue.KindOf(err), err)}
	}
	defer adapter.Close()

	items := 0
	err = adapter.Replay(ctx, func(context.Context, queue.Item) error {
		items++
		return nil
	})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("replay failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("table %s (%d items)", adapter.Table(), items)}
}
