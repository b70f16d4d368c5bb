// Package storage implements the durable local key-value store and the
// collection adapter layered on top of it.
package storage

// KV is the interface for durable string key-value access.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Put stores value under key, replacing any previous value atomically.
	Put(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases the underlying resources.
	Close() error
}
