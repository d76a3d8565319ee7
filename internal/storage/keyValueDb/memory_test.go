package keyValueDb

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemoryDB(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadWriteDelete", func(t *testing.T) {
		db := NewMemory()

		key := []byte("alpha")
		value := []byte("one")

		if err := db.Write(ctx, key, value); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := db.Read(ctx, key)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("Wrong value read: got %s, want %s", got, value)
		}

		// The store keeps its own copies.
		value[0] = 'X'
		got[0] = 'Y'
		again, err := db.Read(ctx, key)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(again) != "one" {
			t.Errorf("Stored value was aliased: got %s", again)
		}

		if err := db.Delete(ctx, key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := db.Read(ctx, key); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		db := NewMemory()
		if _, err := db.Read(ctx, []byte("nothing")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Expected ErrKeyNotFound, got %v", err)
		}
		// Deleting a missing key is not an error.
		if err := db.Delete(ctx, []byte("nothing")); err != nil {
			t.Errorf("Delete of missing key failed: %v", err)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		db := NewMemory()

		if err := db.Write(ctx, []byte("drop"), []byte("x")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		ops := []BatchOperation{
			{Type: BatchPut, Key: []byte("a"), Value: []byte("1")},
			{Type: BatchPut, Key: []byte("b"), Value: []byte("2")},
			{Type: BatchDelete, Key: []byte("drop")},
		}
		if err := db.Batch(ctx, ops); err != nil {
			t.Fatalf("Batch failed: %v", err)
		}

		if got, err := db.Read(ctx, []byte("a")); err != nil || string(got) != "1" {
			t.Errorf("Batch put missing: got %s, err %v", got, err)
		}
		if _, err := db.Read(ctx, []byte("drop")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Batch delete did not apply, got %v", err)
		}
	})

	t.Run("IteratorRange", func(t *testing.T) {
		db := NewMemory()
		for _, k := range []string{"a", "b", "c", "d", "e"} {
			if err := db.Write(ctx, []byte(k), []byte("v-"+k)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		// Half-open range: start inclusive, end exclusive.
		it, err := db.Iterator(ctx, []byte("b"), []byte("d"))
		if err != nil {
			t.Fatalf("Iterator failed: %v", err)
		}
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		if err := it.Error(); err != nil {
			t.Fatalf("Iterator error: %v", err)
		}
		if len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
			t.Errorf("Wrong range result: %v", keys)
		}
	})

	t.Run("IteratorOrder", func(t *testing.T) {
		db := NewMemory()
		for _, k := range []string{"m", "a", "z", "k"} {
			if err := db.Write(ctx, []byte(k), []byte(k)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		it, err := db.Iterator(ctx, nil, nil)
		if err != nil {
			t.Fatalf("Iterator failed: %v", err)
		}
		defer it.Close()

		var prev []byte
		count := 0
		for it.Next() {
			if prev != nil && bytes.Compare(prev, it.Key()) >= 0 {
				t.Errorf("Keys out of order: %s before %s", prev, it.Key())
			}
			prev = append([]byte(nil), it.Key()...)
			count++
		}
		if count != 4 {
			t.Errorf("Expected 4 keys, got %d", count)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		db := NewMemory()
		if err := db.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if _, err := db.Read(ctx, []byte("k")); !errors.Is(err, ErrDBClosed) {
			t.Errorf("Read on closed store: got %v", err)
		}
		if err := db.Write(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrDBClosed) {
			t.Errorf("Write on closed store: got %v", err)
		}
		if _, err := db.Iterator(ctx, nil, nil); !errors.Is(err, ErrDBClosed) {
			t.Errorf("Iterator on closed store: got %v", err)
		}
	})
}

func TestMemoryManager(t *testing.T) {
	ctx := context.Background()
	manager := NewMemoryManager()

	a, err := manager.OpenDB("a")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	b, err := manager.OpenDB("b")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}

	// Stores are isolated by name.
	if err := a.Write(ctx, []byte("k"), []byte("from-a")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := b.Read(ctx, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Stores share state, got %v", err)
	}

	// Reopening a name returns the same store.
	again, err := manager.OpenDB("a")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	if got, err := again.Read(ctx, []byte("k")); err != nil || string(got) != "from-a" {
		t.Errorf("Reopened store lost data: got %s, err %v", got, err)
	}

	if err := manager.CloseDB("missing"); !errors.Is(err, ErrDBNotFound) {
		t.Errorf("CloseDB of unknown name: got %v", err)
	}

	if err := manager.CloseDB("a"); err != nil {
		t.Fatalf("CloseDB failed: %v", err)
	}
	if _, err := a.Read(ctx, []byte("k")); !errors.Is(err, ErrDBClosed) {
		t.Errorf("Closed store still readable: got %v", err)
	}

	if err := manager.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Write(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrDBClosed) {
		t.Errorf("Store survived manager close: got %v", err)
	}
}
