package memory

import (
	"context"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
)

// taggedCache implements the TaggedStore interface for the memory driver.
type taggedCache struct {
	*Driver
	tags []string
}

// Tags returns a new TaggedStore instance with the given tags.
func (d *Driver) Tags(tags ...string) cache.TaggedStore {
	return &taggedCache{
		Driver: d,
		tags:   tags,
	}
}

// Tags extends the current tags with new ones.
func (t *taggedCache) Tags(tags ...string) cache.TaggedStore {
	return &taggedCache{
		Driver: t.Driver,
		tags:   append(t.tags, tags...),
	}
}

// Put stores a value in the cache with tags.
func (t *taggedCache) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.Driver.put(key, value, ttl); err != nil {
		return err
	}

	t.Driver.addKeyTags(t.Driver.prefixKey(key), t.tags)
	return nil
}

// PutMultiple stores multiple values in the cache with tags.
func (t *taggedCache) PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, value := range items {
		if err := t.Driver.put(key, value, ttl); err != nil {
			return err
		}
		t.Driver.addKeyTags(t.Driver.prefixKey(key), t.tags)
	}

	return nil
}

// Add stores a value only if the key is currently absent, tagging it on insert.
func (t *taggedCache) Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefixedKey := t.Driver.prefixKey(key)
	if item, ok := t.Driver.items[prefixedKey]; ok && !item.IsExpired() {
		return false, nil
	}
	if err := t.Driver.put(key, value, ttl); err != nil {
		return false, err
	}
	t.Driver.addKeyTags(prefixedKey, t.tags)
	return true, nil
}

// Forever stores a value in the cache indefinitely with tags.
func (t *taggedCache) Forever(ctx context.Context, key string, value interface{}) error {
	return t.Put(ctx, key, value, 0)
}

// Remember retrieves a tagged value or computes and stores it via callback.
func (t *taggedCache) Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error) {
	if value, err := t.Get(ctx, key); err == nil && value != nil {
		return value, nil
	}
	value, err := callback()
	if err != nil {
		return nil, err
	}
	if err := t.Put(ctx, key, value, ttl); err != nil {
		return value, nil
	}
	return value, nil
}

// RememberForever is Remember with no expiration.
func (t *taggedCache) RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error) {
	return t.Remember(ctx, key, 0, callback)
}

// Flush removes all items associated with the current tags (or any of them).
func (t *taggedCache) Flush(ctx context.Context) error {
	return t.Driver.FlushTags(ctx, t.tags...)
}

// FlushTags removes all items associated with the given tags.
func (d *Driver) FlushTags(ctx context.Context, tags ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Collect all keys to remove to avoid mutating d.tags while iterating it.
	keysToRemove := make(map[string]bool)

	for _, tag := range tags {
		if keys, ok := d.tags[tag]; ok {
			for key := range keys {
				keysToRemove[key] = true
			}
		}
	}

	// d.tags stores already-prefixed keys (see addKeyTags callers), so we
	// delete directly rather than going through forget, which would
	// re-apply the prefix.
	for key := range keysToRemove {
		d.removeKeyTags(key)
		delete(d.items, key)
		delete(d.nodes, key)
	}

	return nil
}
