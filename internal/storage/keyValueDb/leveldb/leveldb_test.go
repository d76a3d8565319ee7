package leveldb

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goswapd/internal/storage/keyValueDb"
)

func setupTestDB(t *testing.T) *Manager {
	manager := NewManager(t.TempDir())
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestLevelDB(t *testing.T) {
	manager := setupTestDB(t)
	ctx := context.Background()

	db, err := manager.OpenDB("test")
	if err != nil {
		t.Fatalf("Failed to open keyValueDb: %v", err)
	}

	t.Run("ReadWriteDelete", func(t *testing.T) {
		if err := db.Write(ctx, []byte("key"), []byte("value")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := db.Read(ctx, []byte("key"))
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(got) != "value" {
			t.Errorf("Wrong value read: got %s", got)
		}

		if _, err := db.Read(ctx, []byte("missing")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}

		if err := db.Delete(ctx, []byte("key")); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := db.Read(ctx, []byte("key")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		if err := db.Write(ctx, []byte("old"), []byte("x")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		ops := []keyValueDb.BatchOperation{
			{Type: keyValueDb.BatchPut, Key: []byte("n1"), Value: []byte("1")},
			{Type: keyValueDb.BatchDelete, Key: []byte("old")},
		}
		if err := db.Batch(ctx, ops); err != nil {
			t.Fatalf("Batch failed: %v", err)
		}

		if got, err := db.Read(ctx, []byte("n1")); err != nil || string(got) != "1" {
			t.Errorf("Batch put missing: got %s, err %v", got, err)
		}
		if _, err := db.Read(ctx, []byte("old")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
			t.Errorf("Batch delete did not apply, got %v", err)
		}
	})

	t.Run("IteratorOrderAndCopies", func(t *testing.T) {
		store, err := manager.OpenDB("iter")
		if err != nil {
			t.Fatalf("Failed to open keyValueDb: %v", err)
		}

		for _, k := range []string{"z", "a", "m"} {
			if err := store.Write(ctx, []byte(k), []byte("v-"+k)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		it, err := store.Iterator(ctx, nil, nil)
		if err != nil {
			t.Fatalf("Iterator failed: %v", err)
		}

		var keys [][]byte
		for it.Next() {
			// Retained across Next on purpose; the wrapper must copy
			// out of goleveldb's reused buffers.
			keys = append(keys, it.Key())
		}
		if err := it.Close(); err != nil {
			t.Fatalf("Iterator close failed: %v", err)
		}

		want := []string{"a", "m", "z"}
		if len(keys) != len(want) {
			t.Fatalf("Wrong key count: %d", len(keys))
		}
		for i := range want {
			if !bytes.Equal(keys[i], []byte(want[i])) {
				t.Errorf("Wrong key at %d: got %s, want %s", i, keys[i], want[i])
			}
		}
	})
}
