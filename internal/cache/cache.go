// Package cache stores fetched filing documents so repeat runs and
// resumed downloads never re-hit EDGAR.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the memory, disk and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a document URL. The version tag
// invalidates everything when the storage format changes.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "tashare:v1:" + hex.EncodeToString(hash[:])
}
