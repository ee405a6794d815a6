// Package store implements the generic reactive collection store: an ordered
// in-memory list of records that is mirrored to a durable snapshot after
// every mutation and kept in sync across instances through change signals.
//
// Key invariants:
//
//   - After any successful mutation the in-memory collection and the durable
//     snapshot are identical.
//
//   - Every mutation serializes the full collection. This is O(n) per write
//     and is a deliberate simplicity choice inherited from the design this
//     store models; it caps the practical collection size well below what a
//     row-oriented backend would allow.
//
//   - A snapshot write failure (typically storage.ErrQuotaExceeded when large
//     embedded documents blow the limit) does NOT roll back the in-memory
//     change. The mutation keeps its effect, ErrNotPersisted is returned and
//     the caller decides how loudly to warn. This degrade-gracefully policy
//     keeps the application usable when the quota is full.
//
//   - Snapshots are decoded strictly: unknown fields mark the snapshot as
//     malformed and the built-in seed takes over, instead of silently
//     adopting whatever the slot contains.
//
// Synchronization protocol: after a successful persist the store publishes a
// payloadless bus.Signal stamped with its own origin. Stores receiving a
// signal with a foreign origin re-run the load step against the shared
// snapshot. There is no ordering guarantee beyond eventual convergence;
// concurrent writers race and the last snapshot write wins.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Subscriber callbacks and bus
//	handlers run outside the store's lock.
package store
