package store

import "errors"

// ErrKeyNotFound is returned by a Backend when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// Backend is the key-value medium under the record store. Values are opaque
// JSON documents; each collection lives under its own key.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}
