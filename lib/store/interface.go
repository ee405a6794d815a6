package store

import (
	"errors"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrNotReady is returned by mutating operations before Load has run.
	// Consumers must not trust the collection's contents before the store is
	// ready; route-guard style callers should poll Ready instead of assuming.
	ErrNotReady = errors.New("store: not loaded yet")

	// ErrNotFound is returned by Update and Delete when no record carries the
	// given identifier. The collection is left untouched. This is an explicit
	// contract: a mutation that hit nothing is reported, never silently absorbed.
	ErrNotFound = errors.New("store: record not found")

	// ErrNotPersisted reports that a mutation was applied in memory but could
	// not be written to the durable snapshot. The operation's result is still
	// valid; it just will not survive a restart. Callers surface this as a
	// warning, not a failure.
	ErrNotPersisted = errors.New("store: change not persisted")
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Order controls where Add places new records.
type Order int

const (
	// PrependNewest puts new records at the front (content entities: books,
	// papers, notifications).
	PrependNewest Order = iota
	// Append puts new records at the end (reference entities: categories,
	// branches, users).
	Append
)

// Config describes one collection store.
type Config[T any] struct {
	// Name is the storage key and the stem of the broadcast signal type
	// ("books" -> "BOOKS_CHANGE").
	Name string
	// Seed is the built-in collection used when no snapshot exists or the
	// stored snapshot cannot be decoded.
	Seed []T
	// Order is the insertion convention for Add.
	Order Order
	// IDOf extracts a record's identifier.
	IDOf func(record T) string
	// WithID returns a copy of the record carrying the given identifier.
	// Add uses it to stamp freshly created records.
	WithID func(record T, id string) T
}
