package dgtagcache

import (
	"context"
	"time"
)

// Store defines the interface for cache operations.
// All cache drivers must implement this interface.
type Store interface {
	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) (interface{}, error)

	// GetMultiple retrieves multiple values from the cache.
	// Returns a map of key-value pairs. Missing keys are not included in the result.
	GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error)

	// Put stores a value in the cache with the given TTL.
	// If ttl is 0, the item never expires (same as Forever).
	Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// PutMultiple stores multiple values in the cache with the same TTL.
	PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error

	// Add stores a value only if the key is currently absent.
	// Returns true iff the key was newly inserted.
	Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Increment increments the value of a key by the given amount.
	// Returns the new value after incrementing.
	// If the key doesn't exist, it's created with the increment value.
	Increment(ctx context.Context, key string, value int64) (int64, error)

	// Decrement decrements the value of a key by the given amount.
	// Returns the new value after decrementing.
	// If the key doesn't exist, it's created with the negative of the decrement value.
	Decrement(ctx context.Context, key string, value int64) (int64, error)

	// Forever stores a value in the cache indefinitely (no expiration).
	Forever(ctx context.Context, key string, value interface{}) error

	// Forget removes a value from the cache.
	// Returns true iff a key was actually removed (§9 "forget return values").
	Forget(ctx context.Context, key string) (bool, error)

	// Flush removes all items from the cache.
	Flush(ctx context.Context) error

	// Has checks if a key exists in the cache.
	Has(ctx context.Context, key string) (bool, error)

	// Missing checks if a key does not exist in the cache.
	// This is the inverse of Has.
	Missing(ctx context.Context, key string) (bool, error)

	// GetPrefix returns the cache key prefix.
	GetPrefix() string

	// SetPrefix sets the cache key prefix.
	SetPrefix(prefix string)
}

// TaggedStore extends Store with tagging capabilities.
// Tagged caches allow grouping related cache items and flushing them together.
//
// The two modes an implementation may pick (§3, §4.4-4.5) change the meaning
// of nearly every method here:
//   - mode "all" (intersection): reads are scoped to the exact tag set used
//     to write; Flush(T) removes entries whose tag set equals T.
//   - mode "any" (union): tags are write/flush-only metadata — Get/
//     GetMultiple/Has/Missing/Forget return ErrUnsupportedOperation; Flush(T)
//     removes entries sharing any tag with T.
type TaggedStore interface {
	Store

	// Tags returns a new TaggedStore instance with the given tags.
	// Multiple calls to Tags are cumulative.
	Tags(tags ...string) TaggedStore

	// FlushTags removes all items associated with the given tags, or with
	// this store's own tag set if tags is empty.
	FlushTags(ctx context.Context, tags ...string) error

	// Remember retrieves a tagged value or computes and stores it via
	// callback. In mode "any" this bypasses the (unsupported) scoped read
	// and consults the store directly by the item's untagged key.
	Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error)

	// RememberForever is Remember with no expiration.
	RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error)
}

// Driver is the interface that cache drivers must implement.
// It extends Store with driver-specific functionality.
type Driver interface {
	Store

	// Name returns the driver name (e.g., "redis", "memory").
	Name() string

	// Close closes the driver and releases any resources.
	Close() error
}
