package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearqueue/internal/config"
	"gearqueue/internal/queue"
)

func testConfig(t *testing.T, db string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Queue.Options = map[string]string{"db": db}
	return &cfg
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDatabaseFile_Missing(t *testing.T) {
	result := CheckDatabaseFile("db", filepath.Join(t.TempDir(), "queue.db"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected missing db to pass, got %#v", result)
	}
}

func TestCheckDatabaseFile_Directory(t *testing.T) {
	result := CheckDatabaseFile("db", t.TempDir())
	if result.Passed {
		t.Fatal("expected directory to fail")
	}
}

func TestCheckQueueStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	adapter, err := queue.Open(ctx, queue.Options{"db": db}, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := adapter.Add(ctx, "u", "fn", nil, queue.PriorityNormal); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	result := CheckQueueStore(ctx, "store", queue.Options{"db": db}, nil)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result.Detail != "table gearman_queue (1 items)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckQueueStore_BadOption(t *testing.T) {
	result := CheckQueueStore(context.Background(), "store", queue.Options{"db": filepath.Join(t.TempDir(), "q.db"), "bogus": "1"}, nil)
	if result.Passed || !strings.Contains(result.Detail, "configuration") {
		t.Fatalf("expected configuration failure, got %#v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "queue.db"))
	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %#v", results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass, got %#v", results)
	}
}

func TestRunAll_MissingDirectorySkipsStore(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing", "queue.db"))
	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 2 {
		t.Fatalf("expected store check skipped, got %#v", results)
	}
	if !Failed(results) {
		t.Fatal("expected failure")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatalf("expected nil, got %#v", results)
	}
}
