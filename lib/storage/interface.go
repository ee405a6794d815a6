package storage

import (
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStorage is the generic interface for the durable snapshot slot.
// Each collection store owns exactly one key; the value under that key is the
// serialized form of the full collection. The interface is deliberately flat:
// implementations never interpret the stored bytes.
type IStorage interface {
	// Load returns the value for a key. The boolean return value indicates
	// whether a value for the key was found.
	Load(key string) (value []byte, loaded bool, err error)
	// Save inserts or replaces the value for a key. The write must be atomic:
	// a concurrent Load observes either the previous or the new value, never a
	// partial write. Save returns ErrQuotaExceeded if the value is larger than
	// the backend's configured limit.
	Save(key string, value []byte) (err error)
	// Delete removes a key and its value. Deleting a missing key is not an error.
	Delete(key string) (err error)
	// Keys returns all keys currently holding a value.
	Keys() (keys []string, err error)
	// Close releases any resources held by the backend.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrQuotaExceeded is returned by Save when the value exceeds the backend's
// configured MaxValueBytes. Callers are expected to treat this as a non-fatal
// condition: the in-memory state may advance even though the snapshot did not.
var ErrQuotaExceeded = errors.New("storage: value exceeds quota")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures limits shared by all backends.
type Options struct {
	// MaxValueBytes is the maximum size of a single value. Zero means no limit.
	// This models the quota of the per-browser storage slot the snapshot design
	// originates from.
	MaxValueBytes int
}

// checkQuota returns ErrQuotaExceeded if value is larger than the configured limit.
func (o Options) checkQuota(value []byte) error {
	if o.MaxValueBytes > 0 && len(value) > o.MaxValueBytes {
		return ErrQuotaExceeded
	}
	return nil
}
