package redis

import (
	"context"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
)

// tagOps is the mode-specific half of TaggedCache: everything that differs
// between intersection ("all") and union ("any") semantics. TaggedCache
// itself only knows how to pick one and delegate.
type tagOps interface {
	Get(ctx context.Context, key string) (interface{}, error)
	GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error)
	Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error
	Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Increment(ctx context.Context, key string, value int64) (int64, error)
	Decrement(ctx context.Context, key string, value int64) (int64, error)
	Forever(ctx context.Context, key string, value interface{}) error
	Forget(ctx context.Context, key string) (bool, error)
	Has(ctx context.Context, key string) (bool, error)
	Missing(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
	FlushTags(ctx context.Context, tags ...string) error
	Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error)
	RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error)
}

// TaggedCache is the TaggedStore Redis drivers hand back from Tags(...). It
// picks intersection or union semantics once, at construction, based on the
// owning Driver's configured Mode, and forwards every call to that choice.
type TaggedCache struct {
	driver *Driver
	tags   []string
	ops    tagOps
}

func newTaggedCache(d *Driver, tags []string) *TaggedCache {
	tc := &TaggedCache{driver: d, tags: tags}
	switch d.mode {
	case ModeAny:
		tc.ops = &unionOps{d: d, tags: tags}
	default:
		tc.ops = &intersectionOps{d: d, tags: tags}
	}
	return tc
}

var _ cache.TaggedStore = (*TaggedCache)(nil)

// Tags extends the current tags with new ones. Multiple calls are cumulative.
func (t *TaggedCache) Tags(tags ...string) cache.TaggedStore {
	return newTaggedCache(t.driver, append(append([]string(nil), t.tags...), tags...))
}

func (t *TaggedCache) Get(ctx context.Context, key string) (interface{}, error) {
	return t.ops.Get(ctx, key)
}

func (t *TaggedCache) GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error) {
	return t.ops.GetMultiple(ctx, keys)
}

func (t *TaggedCache) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return t.ops.Put(ctx, key, value, ttl)
}

func (t *TaggedCache) PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	return t.ops.PutMultiple(ctx, items, ttl)
}

func (t *TaggedCache) Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return t.ops.Add(ctx, key, value, ttl)
}

func (t *TaggedCache) Increment(ctx context.Context, key string, value int64) (int64, error) {
	return t.ops.Increment(ctx, key, value)
}

func (t *TaggedCache) Decrement(ctx context.Context, key string, value int64) (int64, error) {
	return t.ops.Decrement(ctx, key, value)
}

func (t *TaggedCache) Forever(ctx context.Context, key string, value interface{}) error {
	return t.ops.Forever(ctx, key, value)
}

func (t *TaggedCache) Forget(ctx context.Context, key string) (bool, error) {
	return t.ops.Forget(ctx, key)
}

func (t *TaggedCache) Has(ctx context.Context, key string) (bool, error) {
	return t.ops.Has(ctx, key)
}

func (t *TaggedCache) Missing(ctx context.Context, key string) (bool, error) {
	return t.ops.Missing(ctx, key)
}

// Flush removes the entries reachable through this tag set: in mode "all"
// that means the exact set; in mode "any" it means anything sharing a tag.
func (t *TaggedCache) Flush(ctx context.Context) error {
	return t.ops.Flush(ctx)
}

func (t *TaggedCache) FlushTags(ctx context.Context, tags ...string) error {
	return t.ops.FlushTags(ctx, tags...)
}

func (t *TaggedCache) Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error) {
	return t.ops.Remember(ctx, key, ttl, callback)
}

func (t *TaggedCache) RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error) {
	return t.ops.RememberForever(ctx, key, callback)
}

func (t *TaggedCache) GetPrefix() string {
	return t.driver.GetPrefix()
}

func (t *TaggedCache) SetPrefix(prefix string) {
	t.driver.SetPrefix(prefix)
}
