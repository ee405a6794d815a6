package bus

// --------------------------------------------------------------------------
// Signal
// --------------------------------------------------------------------------

// Signal is the payloadless change notification broadcast after a successful
// snapshot write. Receivers must re-read the snapshot themselves rather than
// trust an inline payload; this keeps serialization logic in one place and
// avoids races where a signal outruns the write it announces.
type Signal struct {
	// Type identifies the changed collection, e.g. "BOOKS_CHANGE".
	Type string `json:"type"`
	// Origin identifies the publishing store instance. A store ignores its own
	// signals; it already holds the state it just wrote.
	Origin string `json:"origin,omitempty"`
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Handler is invoked for every received signal of a subscribed type.
// Handlers are called from the bus's dispatch goroutine and must not block
// for long; reload work should be quick or handed off.
type Handler func(sig Signal)

// IBus is the cross-instance broadcaster port. Ordering guarantees are
// deliberately weak: all connected subscribers eventually observe every
// published signal, nothing more. Conflict resolution stays last-writer-wins
// at the storage layer.
type IBus interface {
	// Publish broadcasts a signal to all subscribers of sig.Type.
	Publish(sig Signal) error
	// Subscribe registers a handler for a signal type and returns a function
	// that removes the subscription.
	Subscribe(sigType string, h Handler) (unsubscribe func())
	// Close shuts the bus down. Pending dispatches may be dropped.
	Close() error
}
