// Package bus defines the broadcaster port that keeps every store instance
// eventually consistent with the shared durable snapshot, and provides two
// implementations.
//
// The protocol is intentionally minimal: after a successful snapshot write the
// mutating store publishes a Signal naming the changed collection. Every other
// subscriber re-runs its load step on receipt. Signals carry no payload.
//
// Implementations:
//
//   - membus: in-process fan-out for stores sharing one process. Dispatch is
//     asynchronous so a publisher is never blocked by a slow handler.
//
//   - fsbus: an fsnotify watcher over a file-storage directory. Snapshot
//     writes by other processes surface as signals here, converging separate
//     processes that share the directory the same way browser tabs converge
//     over a shared storage slot.
//
// Thread Safety:
//
//	All implementations are safe for concurrent use.
package bus
