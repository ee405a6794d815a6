package storage

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// memoryStorage is the in-process backend. Values are copied on the way in and
// out so callers can never alias the stored slice.
type memoryStorage struct {
	opts  Options
	slots *xsync.MapOf[string, []byte]
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage(opts Options) IStorage {
	return &memoryStorage{
		opts:  opts,
		slots: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (s *memoryStorage) Load(key string) ([]byte, bool, error) {
	value, ok := s.slots.Load(key)
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

func (s *memoryStorage) Save(key string, value []byte) error {
	if err := s.opts.checkQuota(value); err != nil {
		return err
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.slots.Store(key, cp)
	return nil
}

func (s *memoryStorage) Delete(key string) error {
	s.slots.Delete(key)
	return nil
}

func (s *memoryStorage) Keys() ([]string, error) {
	var keys []string
	s.slots.Range(func(key string, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	return keys, nil
}

func (s *memoryStorage) Close() error {
	return nil
}
