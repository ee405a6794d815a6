package store_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/storage"
	"github.com/openshelf/shelfd/lib/store"
)

type note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

func noteConfig(seed []note) store.Config[note] {
	return store.Config[note]{
		Name:   "notes",
		Seed:   seed,
		Order:  store.PrependNewest,
		IDOf:   func(n note) string { return n.ID },
		WithID: func(n note, id string) note { n.ID = id; return n },
	}
}

func newLoadedStore(t *testing.T, s storage.IStorage, b bus.IBus, seed []note) *store.Store[note] {
	t.Helper()
	st := store.New(noteConfig(seed), s, b)
	if err := st.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return st
}

// snapshotOf decodes the durable snapshot for comparison with the in-memory view.
func snapshotOf(t *testing.T, s storage.IStorage) []note {
	t.Helper()
	data, loaded, err := s.Load("notes")
	if err != nil {
		t.Fatalf("storage read failed: %v", err)
	}
	if !loaded {
		return nil
	}
	var notes []note
	if err := json.Unmarshal(data, &notes); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	return notes
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestCollectionMatchesSnapshotAfterMutations(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	first, err := st.Add(note{Title: "first"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	second, err := st.Add(note{Title: "second"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := st.Update(first.ID, func(n *note) { n.Body = "updated" }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := st.Delete(second.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got, want := snapshotOf(t, mem), st.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot %v diverged from collection %v", got, want)
	}
}

func TestAddAssignsFreshIdentifier(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		added, err := st.Add(note{Title: "n"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if added.ID == "" {
			t.Fatal("Add must assign an identifier")
		}
		if seen[added.ID] {
			t.Fatalf("identifier %s already present in the collection", added.ID)
		}
		seen[added.ID] = true
	}
}

func TestAddPrependsNewest(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	st.Add(note{Title: "older"})
	newest, _ := st.Add(note{Title: "newest"})

	list := st.List()
	if list[0].ID != newest.ID {
		t.Errorf("expected newest record first, got %q", list[0].Title)
	}
}

func TestEmptyUpdateIsNoop(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	st.Add(note{Title: "a"})
	added, _ := st.Add(note{Title: "b"})
	before := st.List()

	if _, err := st.Update(added.ID, func(*note) {}); err != nil {
		t.Fatalf("empty update failed: %v", err)
	}
	if got := st.List(); !reflect.DeepEqual(got, before) {
		t.Errorf("empty update changed the collection: %v != %v", got, before)
	}
}

func TestUpdateMissingIdentifier(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	st.Add(note{Title: "a"})
	before := st.List()

	_, err := st.Update("no-such-id", func(n *note) { n.Title = "x" })
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := st.List(); !reflect.DeepEqual(got, before) {
		t.Error("update of a missing identifier altered the collection")
	}
}

func TestDeleteIsIdempotentInEffect(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	added, _ := st.Add(note{Title: "a"})
	if err := st.Delete(added.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	after := st.List()

	// The second delete reports ErrNotFound but leaves the same state behind.
	if err := st.Delete(added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if got := st.List(); !reflect.DeepEqual(got, after) {
		t.Error("second delete changed the collection")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	st.Add(note{Title: "with body", Body: "text"})
	st.Add(note{Title: "without body"})
	want := st.List()

	// A second store over the same slot must decode the identical collection.
	st2 := newLoadedStore(t, mem, nil, nil)
	if got := st2.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("round-tripped collection %v != original %v", got, want)
	}
}

func TestMalformedSnapshotFallsBackToSeed(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	seed := []note{{ID: "seed-1", Title: "seeded"}}

	// Unknown fields mark the snapshot as malformed under strict decoding.
	mem.Save("notes", []byte(`[{"id":"1","title":"t","bogus_field":true}]`))

	st := newLoadedStore(t, mem, nil, seed)
	if got := st.List(); !reflect.DeepEqual(got, seed) {
		t.Errorf("expected seed fallback, got %v", got)
	}
}

func TestMutationBeforeLoad(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := store.New(noteConfig(nil), mem, nil)

	if _, err := st.Add(note{Title: "too early"}); !errors.Is(err, store.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if st.Ready() {
		t.Error("store must not report ready before Load")
	}
}

func TestQuotaFailureKeepsInMemoryChange(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{MaxValueBytes: 1})
	st := newLoadedStore(t, mem, nil, nil)

	added, err := st.Add(note{Title: "kept in memory"})
	if !errors.Is(err, store.ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected the quota cause to be wrapped, got %v", err)
	}
	if _, ok := st.Get(added.ID); !ok {
		t.Error("in-memory collection must keep the change after a quota failure")
	}
}

func TestSubscriberNotifiedOnMutation(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	st := newLoadedStore(t, mem, nil, nil)

	fired := 0
	unsubscribe := st.Subscribe(func() { fired++ })
	st.Add(note{Title: "a"})
	if fired != 1 {
		t.Fatalf("expected one notification, got %d", fired)
	}

	unsubscribe()
	st.Add(note{Title: "b"})
	if fired != 1 {
		t.Errorf("expected no notification after unsubscribe, got %d", fired)
	}
}

func TestCrossInstanceConvergence(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	b := bus.NewMemoryBus()
	defer b.Close()

	tabA := newLoadedStore(t, mem, b, nil)
	defer tabA.Close()
	tabB := newLoadedStore(t, mem, b, nil)
	defer tabB.Close()

	added, err := tabA.Add(note{Title: "shared", Body: "payload"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	waitFor(t, func() bool {
		got, ok := tabB.Get(added.ID)
		return ok && reflect.DeepEqual(got, added)
	}, "expected tab B to converge on tab A's record")
}

func TestOriginatingInstanceIgnoresOwnSignal(t *testing.T) {
	mem := storage.NewMemoryStorage(storage.Options{})
	b := bus.NewMemoryBus()
	defer b.Close()

	st := newLoadedStore(t, mem, b, nil)
	defer st.Close()

	notified := make(chan struct{}, 8)
	st.Subscribe(func() { notified <- struct{}{} })

	st.Add(note{Title: "a"})

	// Exactly one notification: the local mutation. The store's own broadcast
	// must not bounce back as a reload.
	<-notified
	select {
	case <-notified:
		t.Error("store reloaded on its own signal")
	case <-time.After(150 * time.Millisecond):
	}
}

// overlapGuardStorage delegates to a real backend and fails the test when two
// Save calls run at the same time.
type overlapGuardStorage struct {
	storage.IStorage
	t      *testing.T
	active atomic.Int32
}

func (s *overlapGuardStorage) Save(key string, value []byte) error {
	if s.active.Add(1) != 1 {
		s.t.Error("overlapping snapshot writes")
	}
	defer s.active.Add(-1)
	// widen the window so an ordering bug actually interleaves
	time.Sleep(time.Millisecond)
	return s.IStorage.Save(key, value)
}

func TestConcurrentMutationsKeepSnapshotCurrent(t *testing.T) {
	guard := &overlapGuardStorage{IStorage: storage.NewMemoryStorage(storage.Options{}), t: t}
	st := newLoadedStore(t, guard, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := st.Add(note{Title: fmt.Sprintf("note-%d", i)}); err != nil {
				t.Errorf("Add failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// snapshot writes happen in mutation order, so after the last mutation the
	// durable snapshot mirrors the full in-memory collection
	if got, want := snapshotOf(t, guard), st.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot diverged from memory:\n got %v\nwant %v", got, want)
	}
}
