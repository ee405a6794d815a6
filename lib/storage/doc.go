// Package storage defines the persistence port for collection snapshots and
// provides three interchangeable backends. A storage slot is a flat key-value
// mapping from a collection name to its serialized snapshot; the store layer
// (lib/store) is the only writer and treats the slot as a passive mirror of
// its in-memory state.
//
// Backends:
//
//   - memory: a concurrent in-process map. Nothing survives a restart. Used
//     for tests and ephemeral runs.
//
//   - file: one file per key inside a data directory. Writes go through a
//     temporary file followed by an atomic rename, so a reader never observes
//     a torn snapshot. This backend pairs with the fsnotify bus (lib/bus) to
//     converge multiple processes sharing the same directory.
//
//   - sqlite: a single-table SQLite database. Useful when snapshots should
//     live in one portable artifact.
//
// All backends honor Options.MaxValueBytes and return ErrQuotaExceeded for
// oversized values instead of writing them. This mirrors the quota of the
// browser storage slot the design originates from: the caller decides whether
// to degrade gracefully or fail.
//
// Thread Safety:
//
//	All backends are safe for concurrent use by multiple goroutines.
package storage
