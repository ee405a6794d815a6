package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/logging"
	"github.com/openshelf/shelfd/lib/storage"
)

var logger = logging.GetLogger("store")

// Store manages one ordered collection of records. It is the single source of
// truth for its collection: the durable snapshot is a passive mirror written
// after every mutation, and the bus signal tells other instances to re-read
// that mirror.
type Store[T any] struct {
	cfg     Config[T]
	origin  string // unique per instance, stamps outgoing signals
	sigType string

	storage storage.IStorage
	bus     bus.IBus

	mu      sync.RWMutex
	records []T
	ready   bool

	// persistMu serializes snapshot writes. It is acquired while mu is still
	// held, so snapshots reach storage in mutation order.
	persistMu sync.Mutex

	subMu       sync.Mutex
	nextSubID   uint64
	subscribers map[uint64]func()
	unsubscribe func()

	mutations          *metrics.Counter
	reloads            *metrics.Counter
	durabilityFailures *metrics.Counter
}

// New creates a store for one collection. Load must be called before any
// mutation.
func New[T any](cfg Config[T], s storage.IStorage, b bus.IBus) *Store[T] {
	if cfg.IDOf == nil || cfg.WithID == nil {
		panic("store: Config.IDOf and Config.WithID are required")
	}
	return &Store[T]{
		cfg:                cfg,
		origin:             uuid.NewString(),
		sigType:            bus.SignalTypeForKey(cfg.Name),
		storage:            s,
		bus:                b,
		subscribers:        make(map[uint64]func()),
		mutations:          metrics.GetOrCreateCounter(fmt.Sprintf(`store_mutations_total{collection=%q}`, cfg.Name)),
		reloads:            metrics.GetOrCreateCounter(fmt.Sprintf(`store_reloads_total{collection=%q}`, cfg.Name)),
		durabilityFailures: metrics.GetOrCreateCounter(fmt.Sprintf(`store_durability_failures_total{collection=%q}`, cfg.Name)),
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Load reads the durable snapshot and marks the store ready. A missing or
// undecodable snapshot falls back to the seed collection. Load also wires the
// store to the bus: signals from other instances trigger a re-read of the
// snapshot.
func (s *Store[T]) Load() error {
	records, err := s.readSnapshot()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.ready = true
	s.mu.Unlock()

	if s.bus != nil && s.unsubscribe == nil {
		s.unsubscribe = s.bus.Subscribe(s.sigType, func(sig bus.Signal) {
			if sig.Origin == s.origin {
				return
			}
			s.reload()
		})
	}
	return nil
}

// Ready reports whether Load has completed. Consumers must not trust the
// collection's contents before this returns true.
func (s *Store[T]) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Close detaches the store from the bus. The in-memory collection stays usable.
func (s *Store[T]) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// readSnapshot loads and strictly decodes the stored collection, falling back
// to a copy of the seed when the slot is empty or corrupt.
func (s *Store[T]) readSnapshot() ([]T, error) {
	data, loaded, err := s.storage.Load(s.cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", s.cfg.Name, err)
	}
	if !loaded {
		return s.seedCopy(), nil
	}

	records, err := decodeStrict[T](data)
	if err != nil {
		// A malformed snapshot is not adopted; the seed wins and the next
		// successful mutation overwrites the bad data.
		logger.Warnf("snapshot %q is malformed, falling back to seed: %v", s.cfg.Name, err)
		return s.seedCopy(), nil
	}
	return records, nil
}

// decodeStrict rejects snapshots containing fields the record type does not
// declare instead of silently adopting them.
func decodeStrict[T any](data []byte) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []T
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store[T]) seedCopy() []T {
	records := make([]T, len(s.cfg.Seed))
	copy(records, s.cfg.Seed)
	return records
}

// reload re-runs the load step after a foreign change signal.
func (s *Store[T]) reload() {
	records, err := s.readSnapshot()
	if err != nil {
		logger.Warnf("reload of %q failed: %v", s.cfg.Name, err)
		return
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.reloads.Inc()
	s.notify()
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// Add stamps the record with a fresh identifier, inserts it according to the
// store's order convention and persists the collection. The fully formed
// record is returned even when persistence fails; in that case the error is
// ErrNotPersisted and the change lives only in memory.
func (s *Store[T]) Add(record T) (T, error) {
	var zero T
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return zero, ErrNotReady
	}

	record = s.cfg.WithID(record, uuid.NewString())
	if s.cfg.Order == PrependNewest {
		s.records = append([]T{record}, s.records...)
	} else {
		s.records = append(s.records, record)
	}
	snapshot := s.snapshotLocked()

	return record, s.persistAndBroadcast(snapshot)
}

// Update applies mutate to the record with the given identifier. A missing
// identifier returns ErrNotFound and leaves the collection untouched. The
// mutate function must not change the record's identifier.
func (s *Store[T]) Update(id string, mutate func(record *T)) (T, error) {
	var zero T
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return zero, ErrNotReady
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return zero, ErrNotFound
	}

	record := s.records[idx]
	mutate(&record)
	s.records[idx] = record
	snapshot := s.snapshotLocked()

	return record, s.persistAndBroadcast(snapshot)
}

// Delete removes the record with the given identifier. A missing identifier
// returns ErrNotFound; deleting twice therefore has the same effect on the
// collection as deleting once.
func (s *Store[T]) Delete(id string) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	snapshot := s.snapshotLocked()

	return s.persistAndBroadcast(snapshot)
}

// --------------------------------------------------------------------------
// Queries (in-memory only, never touch durable storage)
// --------------------------------------------------------------------------

// Get returns the record with the given identifier.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOfLocked(id); idx >= 0 {
		return s.records[idx], true
	}
	var zero T
	return zero, false
}

// Find returns all records matching the predicate, in collection order.
func (s *Store[T]) Find(pred func(record T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, record := range s.records {
		if pred(record) {
			out = append(out, record)
		}
	}
	return out
}

// List returns a copy of the collection in order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// --------------------------------------------------------------------------
// Consumer interface
// --------------------------------------------------------------------------

// Subscribe registers a callback fired after every collection change, local
// or remote. It returns a function removing the subscription.
func (s *Store[T]) Subscribe(fn func()) func() {
	s.subMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store[T]) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// snapshotLocked serializes the current collection. Callers must hold mu.
func (s *Store[T]) snapshotLocked() []byte {
	data, err := json.Marshal(s.records)
	if err != nil {
		// Records are plain data structs; marshalling them cannot fail unless
		// a record type carries unmarshalable fields, which is a programming
		// error.
		panic(fmt.Sprintf("store: failed to marshal collection %q: %v", s.cfg.Name, err))
	}
	return data
}

// persistAndBroadcast writes the snapshot and, on success, publishes the
// change signal. Callers must hold mu; the write lock is swapped for
// persistMu before it is released, so concurrent mutations write their
// snapshots in mutation order and the durable snapshot never lags behind a
// newer one. A failed write keeps the in-memory change, counts the failure
// and reports ErrNotPersisted; no signal is sent because other instances
// would only re-read the stale snapshot.
func (s *Store[T]) persistAndBroadcast(snapshot []byte) error {
	s.persistMu.Lock()
	s.mu.Unlock()

	s.mutations.Inc()
	// subscribers run after persistMu is released so they may mutate the store
	defer s.notify()
	defer s.persistMu.Unlock()

	if err := s.storage.Save(s.cfg.Name, snapshot); err != nil {
		s.durabilityFailures.Inc()
		logger.Warnf("collection %q changed in memory but the snapshot write failed, the change will not survive a restart: %v", s.cfg.Name, err)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(bus.Signal{Type: s.sigType, Origin: s.origin}); err != nil {
			logger.Warnf("failed to broadcast %s: %v", s.sigType, err)
		}
	}
	return nil
}

func (s *Store[T]) indexOfLocked(id string) int {
	for i, record := range s.records {
		if s.cfg.IDOf(record) == id {
			return i
		}
	}
	return -1
}
