package bus

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// memoryBus fans signals out to in-process subscribers. Handlers run on a
// single dispatch goroutine per bus, fed by a buffered channel, so publishing
// never blocks on handler work.
type memoryBus struct {
	subscribers *xsync.MapOf[string, *subscriberSet]

	// closeMu keeps in-flight sends and the channel close mutually exclusive
	closeMu sync.RWMutex
	closed  bool
	signals chan Signal
	done    chan struct{}
}

// subscriberSet holds the handlers for one signal type.
type subscriberSet struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
}

const signalBuffer = 64

// NewMemoryBus creates a new in-process bus.
func NewMemoryBus() IBus {
	b := &memoryBus{
		subscribers: xsync.NewMapOf[string, *subscriberSet](),
		signals:     make(chan Signal, signalBuffer),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// dispatch delivers queued signals until the bus is closed.
func (b *memoryBus) dispatch() {
	defer close(b.done)
	for sig := range b.signals {
		set, ok := b.subscribers.Load(sig.Type)
		if !ok {
			continue
		}
		set.mu.RLock()
		handlers := make([]Handler, 0, len(set.handlers))
		for _, h := range set.handlers {
			handlers = append(handlers, h)
		}
		set.mu.RUnlock()

		for _, h := range handlers {
			h(sig)
		}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (b *memoryBus) Publish(sig Signal) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return nil
	}
	b.signals <- sig
	return nil
}

func (b *memoryBus) Subscribe(sigType string, h Handler) func() {
	set, _ := b.subscribers.LoadOrCompute(sigType, func() *subscriberSet {
		return &subscriberSet{handlers: make(map[uint64]Handler)}
	})

	set.mu.Lock()
	set.nextID++
	id := set.nextID
	set.handlers[id] = h
	set.mu.Unlock()

	return func() {
		set.mu.Lock()
		delete(set.handlers, id)
		set.mu.Unlock()
	}
}

func (b *memoryBus) Close() error {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return nil
	}
	b.closed = true
	close(b.signals)
	b.closeMu.Unlock()

	<-b.done
	return nil
}
