// Package cache stores rendered timeline fragments between runs.
//
// A run whose outline and options did not change since the previous run
// can reuse the fragments without laying out and rendering again. Keys are
// derived from the outline content and every option that influences the
// markup, so a change to any of them is a miss.
package cache

import (
	"context"
	"time"
)

// TTLFragments bounds how long rendered fragments are reused.
const TTLFragments = 7 * 24 * time.Hour

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// FragmentKey returns the key for fragments rendered from an outline
	// with the given content hash.
	FragmentKey(outlineHash string, opts any) string
}

// DefaultKeyer hashes the outline hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FragmentKey implements Keyer. opts must be JSON-serializable.
func (DefaultKeyer) FragmentKey(outlineHash string, opts any) string {
	return hashKey("fragments", outlineHash, opts)
}
