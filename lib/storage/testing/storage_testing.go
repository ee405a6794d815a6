// Package testing provides a reusable conformance suite for IStorage
// implementations. Every backend must pass the same suite.
package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/openshelf/shelfd/lib/storage"
)

// StorageFactory is a function that creates a fresh instance of an IStorage
// implementation. The suite calls it once per subtest.
type StorageFactory func() storage.IStorage

// RunStorageTests runs the conformance suite against a backend.
func RunStorageTests(t *testing.T, name string, factory StorageFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Save&Load", func(t *testing.T) {
			testSaveLoad(t, factory())
		})
		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory())
		})
		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})
		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})
		t.Run("ValueIsolation", func(t *testing.T) {
			testValueIsolation(t, factory())
		})
		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})
	})
}

// RunQuotaTests verifies quota enforcement for a backend constructed with a
// known MaxValueBytes limit.
func RunQuotaTests(t *testing.T, name string, limit int, factory StorageFactory) {
	t.Run(name+"/Quota", func(t *testing.T) {
		s := factory()
		defer s.Close()

		small := bytes.Repeat([]byte("a"), limit)
		if err := s.Save("snapshot", small); err != nil {
			t.Fatalf("expected value at the limit to be accepted, got %v", err)
		}

		big := bytes.Repeat([]byte("a"), limit+1)
		err := s.Save("snapshot", big)
		if err == nil {
			t.Fatal("expected ErrQuotaExceeded for oversized value")
		}
		if !bytes.Equal(mustLoad(t, s, "snapshot"), small) {
			t.Error("rejected write must leave the previous value intact")
		}
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustLoad(t testing.TB, s storage.IStorage, key string) []byte {
	t.Helper()
	value, loaded, err := s.Load(key)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", key, err)
	}
	if !loaded {
		t.Fatalf("expected key %q to exist", key)
	}
	return value
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSaveLoad(t *testing.T, s storage.IStorage) {
	defer s.Close()

	testValue := []byte(`[{"id":"1","title":"Computer Networks"}]`)
	if err := s.Save("books", testValue); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got := mustLoad(t, s, "books"); !bytes.Equal(got, testValue) {
		t.Errorf("expected value %s, got %s", testValue, got)
	}

	_, loaded, err := s.Load("nonexistent")
	if err != nil {
		t.Fatalf("Load of missing key failed: %v", err)
	}
	if loaded {
		t.Error("expected missing key to return loaded=false")
	}
}

func testOverwrite(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.Save("books", []byte("old")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save("books", []byte("new")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := mustLoad(t, s, "books"); !bytes.Equal(got, []byte("new")) {
		t.Errorf("expected overwritten value, got %s", got)
	}
}

func testDelete(t *testing.T, s storage.IStorage) {
	defer s.Close()

	if err := s.Save("users", []byte("[]")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("users"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, loaded, err := s.Load("users")
	if err != nil {
		t.Fatalf("Load after delete failed: %v", err)
	}
	if loaded {
		t.Error("expected key to be gone after Delete")
	}

	// Deleting a missing key is not an error.
	if err := s.Delete("users"); err != nil {
		t.Errorf("Delete of missing key returned error: %v", err)
	}
}

func testKeys(t *testing.T, s storage.IStorage) {
	defer s.Close()

	want := []string{"books", "notifications", "users"}
	for _, key := range want {
		if err := s.Save(key, []byte("[]")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d (%v)", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("expected key %q at position %d, got %q", want[i], i, keys[i])
		}
	}
}

func testValueIsolation(t *testing.T, s storage.IStorage) {
	defer s.Close()

	original := []byte("snapshot-data")
	if err := s.Save("books", original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutating the slice handed to Save must not affect the stored value.
	original[0] = 'X'
	if got := mustLoad(t, s, "books"); !bytes.Equal(got, []byte("snapshot-data")) {
		t.Errorf("stored value was mutated through the caller's slice: %s", got)
	}

	// Mutating a loaded slice must not affect a subsequent Load.
	first := mustLoad(t, s, "books")
	first[0] = 'Y'
	if got := mustLoad(t, s, "books"); !bytes.Equal(got, []byte("snapshot-data")) {
		t.Errorf("stored value was mutated through a loaded slice: %s", got)
	}
}

func testConcurrentWriters(t *testing.T, s storage.IStorage) {
	defer s.Close()

	const writers = 8
	const rounds = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			key := fmt.Sprintf("slot%d", w)
			for i := 0; i < rounds; i++ {
				if err := s.Save(key, []byte(fmt.Sprintf("value-%d", i))); err != nil {
					t.Errorf("concurrent Save failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < writers; w++ {
		key := fmt.Sprintf("slot%d", w)
		want := fmt.Sprintf("value-%d", rounds-1)
		if got := mustLoad(t, s, key); !bytes.Equal(got, []byte(want)) {
			t.Errorf("expected final value %q for %s, got %s", want, key, got)
		}
	}
}
