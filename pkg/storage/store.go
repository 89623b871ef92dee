// Package storage is the persistent key-value store behind the session and
// cart containers.
//
// Four drivers are available:
//   - "memory": process memory (tests, throwaway runs)
//   - "local":  one file per key under a root directory (CLI default)
//   - "redis":  a Redis server (shared storefront state)
//   - "sql":    a gorm-managed table on sqlite, postgres, mysql or sqlserver
//
// Quick start:
//
//	store, err := storage.Open(config.StateDriver())
//	raw, err := store.Get(storage.KeyCart)
//	if errors.Is(err, storage.ErrNotFound) { ... }
package storage

import "errors"

// Well-known keys.
const (
	KeyUser    = "user"
	KeyCart    = "cart"
	KeyCookies = "cookies"
	KeyFlash   = "flash"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the driver interface. Values are opaque serialized bytes.
type Store interface {
	// Get returns the value under key or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the value under key.
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}
