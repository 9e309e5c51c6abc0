package testsupport

import (
	"context"
	"testing"

	"gearqueue/internal/config"
	"gearqueue/internal/logging"
	"gearqueue/internal/queue"
)

// MustOpenAdapter opens a queue.Adapter for tests and registers cleanup.
// reg may be nil.
func MustOpenAdapter(t testing.TB, cfg *config.Config, reg queue.Registrar) *queue.Adapter {
	t.Helper()

	adapter, err := queue.Open(context.Background(), cfg.ModuleOptions(), reg, logging.NewNop())
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = adapter.Close()
	})
	return adapter
}

// ReplayAll collects every persisted item.
func ReplayAll(t testing.TB, adapter *queue.Adapter) []queue.Item {
	t.Helper()

	var items []queue.Item
	err := adapter.Replay(context.Background(), func(_ context.Context, item queue.Item) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	return items
}
