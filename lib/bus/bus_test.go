package bus_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/openshelf/shelfd/lib/bus"
)

// waitFor polls cond until it returns true or the deadline passes.
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

func TestMemoryBusDeliversToAllSubscribers(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()

	var mu sync.Mutex
	received := make(map[int]int)

	for i := 0; i < 3; i++ {
		i := i
		b.Subscribe("BOOKS_CHANGE", func(sig bus.Signal) {
			mu.Lock()
			received[i]++
			mu.Unlock()
		})
	}

	if err := b.Publish(bus.Signal{Type: "BOOKS_CHANGE", Origin: "a"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received[0] == 1 && received[1] == 1 && received[2] == 1
	}, "expected all three subscribers to receive the signal")
}

func TestMemoryBusTypeIsolation(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()

	var mu sync.Mutex
	var got []string
	b.Subscribe("USERS_CHANGE", func(sig bus.Signal) {
		mu.Lock()
		got = append(got, sig.Type)
		mu.Unlock()
	})

	b.Publish(bus.Signal{Type: "BOOKS_CHANGE"})
	b.Publish(bus.Signal{Type: "USERS_CHANGE"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "expected exactly one signal")

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "USERS_CHANGE" {
		t.Errorf("expected USERS_CHANGE, got %s", got[0])
	}
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()

	var mu sync.Mutex
	count := 0
	unsubscribe := b.Subscribe("AUTH_CHANGE", func(bus.Signal) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	b.Publish(bus.Signal{Type: "AUTH_CHANGE"})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, "expected first signal to arrive")

	unsubscribe()
	b.Publish(bus.Signal{Type: "AUTH_CHANGE"})

	// Give the dispatcher a moment; the count must not move.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected no delivery after unsubscribe, got %d", count)
	}
}

func TestSignalTypeForKey(t *testing.T) {
	if got := bus.SignalTypeForKey("books"); got != "BOOKS_CHANGE" {
		t.Errorf("expected BOOKS_CHANGE, got %s", got)
	}
}

func TestFSBusSignalsOnSnapshotWrite(t *testing.T) {
	dir := t.TempDir()
	b, err := bus.NewFSBus(dir)
	if err != nil {
		t.Fatalf("failed to create fs bus: %v", err)
	}
	defer b.Close()

	var mu sync.Mutex
	var got []bus.Signal
	b.Subscribe("BOOKS_CHANGE", func(sig bus.Signal) {
		mu.Lock()
		got = append(got, sig)
		mu.Unlock()
	})

	// Simulate another process writing the books snapshot.
	if err := os.WriteFile(filepath.Join(dir, "books.json"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1
	}, "expected a BOOKS_CHANGE signal from the file write")

	mu.Lock()
	defer mu.Unlock()
	if got[0].Origin == "" {
		t.Error("fs-derived signals must carry a foreign origin")
	}
}

func TestFSBusIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := bus.NewFSBus(dir)
	if err != nil {
		t.Fatalf("failed to create fs bus: %v", err)
	}
	defer b.Close()

	var mu sync.Mutex
	count := 0
	b.Subscribe("NOTES_CHANGE", func(bus.Signal) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("expected non-snapshot files to be ignored, got %d signals", count)
	}
}

func TestMemoryBusPublishDuringClose(t *testing.T) {
	b := bus.NewMemoryBus()

	// Hammer Publish from many goroutines while Close runs concurrently. A
	// send racing the channel close would panic.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = b.Publish(bus.Signal{Type: "PING_CHANGE", Origin: "a"})
			}
		}()
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	wg.Wait()

	// after Close, Publish stays a silent no-op
	if err := b.Publish(bus.Signal{Type: "PING_CHANGE", Origin: "a"}); err != nil {
		t.Fatalf("Publish after Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
