// Package cache provides the freshness-windowed verdict cache. Entries are
// keyed by normalized URL and superseded, never merged, once the window
// elapses; expiry is checked at lookup time, not by a background sweep.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface for serialized verdicts
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a normalized URL
func Key(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return "phisheye:v1:" + hex.EncodeToString(sum[:])
}
