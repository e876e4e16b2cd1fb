package testsupport

import (
	"context"
	"testing"

	"reelpipe/internal/config"
	"reelpipe/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg.QueueDBPath())
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedItem inserts a queue item for tests using the provided store.
func SeedItem(t testing.TB, store *queue.Store, item queue.NewItem) int64 {
	t.Helper()

	id, err := store.Insert(context.Background(), item)
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return id
}
