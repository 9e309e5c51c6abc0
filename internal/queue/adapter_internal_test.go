package queue

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func openTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := Open(context.Background(), Options{OptionDB: filepath.Join(t.TempDir(), "queue.db")}, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestQueryBufferOnlyGrows(t *testing.T) {
	var q queryBuffer
	if _, err := q.ensure("test", 300); err != nil {
		t.Fatalf("ensure 300: %v", err)
	}
	if q.capacity() != 300 {
		t.Fatalf("capacity = %d, want 300", q.capacity())
	}
	if _, err := q.ensure("test", 100); err != nil {
		t.Fatalf("ensure 100: %v", err)
	}
	if q.capacity() != 300 {
		t.Fatalf("buffer shrank to %d", q.capacity())
	}
	if _, err := q.ensure("test", 301); err != nil {
		t.Fatalf("ensure 301: %v", err)
	}
	if q.capacity() != 301 {
		t.Fatalf("capacity = %d, want 301", q.capacity())
	}
	q.release()
	if q.capacity() != 0 {
		t.Fatalf("capacity after release = %d", q.capacity())
	}
}

func TestQuerySize(t *testing.T) {
	if got := querySize(); got != queryBufferMargin {
		t.Fatalf("querySize() = %d", got)
	}
	if got := querySize(5, 7, 100); got != 2*112+queryBufferMargin {
		t.Fatalf("querySize(5,7,100) = %d", got)
	}
}

func TestAddSizesBufferFromInputs(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()

	sizes := []int{10, 100, 1000, 10000, 70000}
	payloads := map[string][]byte{}
	largest := int64(0)
	for i, size := range sizes {
		unique := strings.Repeat("u", i+1)
		data := make([]byte, size)
		for j := range data {
			data[j] = byte(i + j)
		}
		payloads[unique] = data
		if err := a.Add(ctx, unique, "fn", data, PriorityNormal); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
		want := querySize(len(unique), len("fn"), size)
		if want <= largest {
			t.Fatalf("sizes must grow: %d after %d", want, largest)
		}
		largest = want
		if int64(a.query.capacity()) != largest {
			t.Fatalf("after add %d capacity = %d, want %d", i, a.query.capacity(), largest)
		}
	}

	if err := a.Done(ctx, "missing", "fn"); err != nil {
		t.Fatalf("Done: %v", err)
	}
	if int64(a.query.capacity()) != largest {
		t.Fatalf("capacity shrank to %d after a smaller statement", a.query.capacity())
	}

	seen := 0
	err := a.Replay(ctx, func(_ context.Context, item Item) error {
		want, ok := payloads[item.Unique]
		if !ok {
			t.Fatalf("unexpected item %q", item.Unique)
		}
		if !bytes.Equal(item.Data, want) {
			t.Fatalf("item %q payload corrupted after buffer growth", item.Unique)
		}
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if seen != len(sizes) {
		t.Fatalf("replayed %d items, want %d", seen, len(sizes))
	}
}

func TestAddAllocationFailure(t *testing.T) {
	a := openTestAdapter(t)
	saved := maxQueryBuffer
	maxQueryBuffer = 1024
	t.Cleanup(func() { maxQueryBuffer = saved })

	err := a.Add(context.Background(), "big", "fn", make([]byte, 1024), PriorityNormal)
	if KindOf(err) != KindAllocation {
		t.Fatalf("expected allocation error, got %v", err)
	}
	if !errors.Is(err, errQueryBufferTooLarge) {
		t.Fatalf("expected errQueryBufferTooLarge, got %v", err)
	}
	if a.inTx {
		t.Fatal("allocation failure must not open a transaction")
	}

	err = a.Done(context.Background(), strings.Repeat("k", 1024), "fn")
	if KindOf(err) != KindAllocation {
		t.Fatalf("expected allocation error from Done, got %v", err)
	}
	if a.inTx {
		t.Fatal("allocation failure must not open a transaction")
	}
}

func TestLockFailureStaysIdle(t *testing.T) {
	a := openTestAdapter(t)
	if err := a.conn.Close(); err != nil {
		t.Fatalf("close conn: %v", err)
	}

	err := a.Lock(context.Background())
	if KindOf(err) != KindStatement {
		t.Fatalf("expected statement error, got %v", err)
	}
	if a.inTx {
		t.Fatal("failed Lock must leave the adapter idle")
	}
}

func TestCommitFailureKeepsTransactionFlag(t *testing.T) {
	a := openTestAdapter(t)
	ctx := context.Background()
	if err := a.Lock(ctx); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := a.conn.Close(); err != nil {
		t.Fatalf("close conn: %v", err)
	}

	err := a.Commit(ctx)
	if KindOf(err) != KindStatement {
		t.Fatalf("expected statement error, got %v", err)
	}
	if !a.inTx {
		t.Fatal("failed Commit must keep the transaction flag set")
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	a := openTestAdapter(t)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	ctx := context.Background()

	if err := a.Done(ctx, "u", "fn"); !errors.Is(err, errClosed) {
		t.Fatalf("Done after Close = %v, want errClosed", err)
	}
	err := a.Replay(ctx, func(context.Context, Item) error { return nil })
	if !errors.Is(err, errClosed) || KindOf(err) != KindStatement {
		t.Fatalf("Replay after Close = %v, want statement errClosed", err)
	}
}

func TestPriorityFromStored(t *testing.T) {
	cases := []struct {
		stored int64
		want   Priority
		exact  bool
	}{
		{0, PriorityHigh, true},
		{1, PriorityNormal, true},
		{2, PriorityLow, true},
		{-1, PriorityHigh, false},
		{3, PriorityLow, false},
		{1 << 40, PriorityLow, false},
	}
	for _, tc := range cases {
		got, exact := priorityFromStored(tc.stored)
		if got != tc.want || exact != tc.exact {
			t.Fatalf("priorityFromStored(%d) = %v,%v want %v,%v", tc.stored, got, exact, tc.want, tc.exact)
		}
	}
}

func TestParseOptions(t *testing.T) {
	settings, err := ParseOptions(Options{OptionDB: " /tmp/q.db ", OptionTable: "Jobs"})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if settings.DB != "/tmp/q.db" || settings.Table != "Jobs" {
		t.Fatalf("unexpected settings %#v", settings)
	}

	settings, err = ParseOptions(Options{OptionDB: "/tmp/q.db"})
	if err != nil {
		t.Fatalf("ParseOptions without table: %v", err)
	}
	if settings.Table != DefaultTable {
		t.Fatalf("table = %q, want default", settings.Table)
	}

	_, err = ParseOptions(Options{OptionDB: "/tmp/q.db", "zeta": "1", "alpha": "2"})
	if err == nil || !strings.Contains(err.Error(), "unknown argument: alpha") {
		t.Fatalf("expected first unknown option in sorted order, got %v", err)
	}

	_, err = ParseOptions(Options{})
	if err == nil || !strings.Contains(err.Error(), "--libsqlite3-db=<dbfile>") {
		t.Fatalf("expected missing db message, got %v", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	cases := map[string]string{
		"gearman_queue": `"gearman_queue"`,
		`a"b`:           `"a""b"`,
		"with space":    `"with space"`,
	}
	for in, want := range cases {
		if got := quoteIdentifier(in); got != want {
			t.Fatalf("quoteIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameIdentifier(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"gearman_queue", "GEARMAN_QUEUE", true},
		{"Jobs", "jobs", true},
		{"jobs", "jobs2", false},
		{"ÄBC", "äbc", false},
	}
	for _, tc := range cases {
		if got := sameIdentifier(tc.a, tc.b); got != tc.want {
			t.Fatalf("sameIdentifier(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("disk full")
	err := newError(KindStatement, "add", cause)
	if err.Error() != "libsqlite3 add: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected error to unwrap to cause")
	}
	if KindOf(errors.Join(errors.New("other"), err)) != KindStatement {
		t.Fatal("expected KindOf to find wrapped kind")
	}
	if KindOf(cause) != "" {
		t.Fatalf("unclassified error kind = %q", KindOf(cause))
	}
}

func TestStoreLockPath(t *testing.T) {
	cases := []struct {
		db     string
		want   string
		locked bool
	}{
		{"/var/lib/gearman/queue.db", "/var/lib/gearman/queue.db.lock", true},
		{":memory:", "", false},
		{"file::memory:?cache=shared", "", false},
		{"file:jobs?mode=memory&cache=shared", "", false},
		{"file:/data/queue.db?_pragma=busy_timeout(100)", "/data/queue.db.lock", true},
		{"file:queue.db", "queue.db.lock", true},
	}
	for _, tc := range cases {
		got, locked := storeLockPath(tc.db)
		if got != tc.want || locked != tc.locked {
			t.Fatalf("storeLockPath(%q) = %q,%v want %q,%v", tc.db, got, locked, tc.want, tc.locked)
		}
	}
}
