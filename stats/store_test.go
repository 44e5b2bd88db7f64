package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openAt opens a store over the given file with a fixed clock.
func openAt(t *testing.T, path string, now time.Time) *Store {
	t.Helper()
	store, err := Open(Options{
		Path: path,
		Now:  func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testClock() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(Options{Path: "  "}); err == nil {
		t.Fatal("Open should reject an empty path")
	}
}

func TestReopenPreservesRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stats.db")

	store := openAt(t, path, testClock())
	msg := Message{GroupID: -100, UserID: 42, Username: "alice", FirstName: "Alice"}
	for i := 0; i < 3; i++ {
		if err := store.RecordMessage(ctx, msg); err != nil {
			t.Fatalf("RecordMessage: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Opening again runs schema creation against existing tables and must
	// leave the counters alone.
	reopened := openAt(t, path, testClock())
	snap, err := reopened.Snapshot(ctx, -100)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.MessagesToday != 3 {
		t.Fatalf("MessagesToday = %d, want 3", snap.MessagesToday)
	}
	if snap.ActiveUsersToday != 1 {
		t.Fatalf("ActiveUsersToday = %d, want 1", snap.ActiveUsersToday)
	}
}

func TestClosedStoreIsSafe(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("nil store Close: %v", err)
	}
	if err := store.RecordMessage(context.Background(), Message{GroupID: 1, UserID: 1}); err == nil {
		t.Fatal("nil store RecordMessage should fail")
	}
}
