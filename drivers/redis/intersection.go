package redis

import (
	"context"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
)

// intersectionOps implements mode "all": every write lands in a namespaced
// key scoped to sha1(sorted tags), and each tag's ZSET gets the bare cache
// key as a member. A read only ever touches the namespaced key for the exact
// tag set it was given, so two different tag sets never see each other's
// entries even if they share a tag.
type intersectionOps struct {
	d    *Driver
	tags []string
}

func (o *intersectionOps) entryKey(key string) string {
	return o.d.sc.namespacedEntryKey(key, o.tags)
}

// registerTagSet adds the bare cache key, scored by its absolute expiry (or
// entryForeverScore), to every one of o.tags' ZSETs — the score is what lets
// Prune evict stale members with ZREMRANGEBYSCORE instead of probing each
// one's liveness (I2).
func (o *intersectionOps) registerTagSet(ctx context.Context, key string, ttl time.Duration) error {
	if len(o.tags) == 0 {
		return nil
	}
	score := entryScore(ttl)

	pipe := o.d.client.Pipeline()
	for _, tag := range o.tags {
		pipe.ZAdd(ctx, o.d.sc.tagSetKey(tag), redisZMemberScored(key, score))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (o *intersectionOps) Get(ctx context.Context, key string) (interface{}, error) {
	data, err := o.d.client.Get(ctx, o.entryKey(key)).Bytes()
	if err != nil {
		return nil, translateNotFound(err)
	}
	return decodeValue(o.d.serializer, data), nil
}

func (o *intersectionOps) GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = o.entryKey(k)
	}
	vals, err := o.d.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{})
	for i, val := range vals {
		if val == nil {
			continue
		}
		if s, ok := val.(string); ok {
			result[keys[i]] = decodeValue(o.d.serializer, []byte(s))
		}
	}
	return result, nil
}

func (o *intersectionOps) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := serialize(o.d.serializer, value)
	if err != nil {
		return err
	}
	if err := o.d.client.Set(ctx, o.entryKey(key), data, ttl).Err(); err != nil {
		return err
	}
	return o.registerTagSet(ctx, key, ttl)
}

func (o *intersectionOps) PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	pipe := o.d.client.Pipeline()
	for key, value := range items {
		data, err := serialize(o.d.serializer, value)
		if err != nil {
			return err
		}
		pipe.Set(ctx, o.entryKey(key), data, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	score := entryScore(ttl)
	regPipe := o.d.client.Pipeline()
	for key := range items {
		for _, tag := range o.tags {
			regPipe.ZAdd(ctx, o.d.sc.tagSetKey(tag), redisZMemberScored(key, score))
		}
	}
	_, err := regPipe.Exec(ctx)
	return err
}

func (o *intersectionOps) Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := serializeForLua(o.d.serializer, value)
	if err != nil {
		return false, err
	}
	seconds := int64(ttl.Seconds())
	if ttl > 0 && seconds < 1 {
		seconds = 1
	}
	res, err := runScript(ctx, o.d.client, addScript, []string{o.entryKey(key)}, data, seconds)
	if err != nil {
		return false, err
	}
	added, _ := res.(int64)
	if added != 1 {
		return false, nil
	}
	return true, o.registerTagSet(ctx, key, ttl)
}

func (o *intersectionOps) Increment(ctx context.Context, key string, value int64) (int64, error) {
	n, err := o.d.client.IncrBy(ctx, o.entryKey(key), value).Result()
	if err != nil {
		return 0, err
	}
	return n, o.registerTagSet(ctx, key, 0)
}

func (o *intersectionOps) Decrement(ctx context.Context, key string, value int64) (int64, error) {
	n, err := o.d.client.DecrBy(ctx, o.entryKey(key), value).Result()
	if err != nil {
		return 0, err
	}
	return n, o.registerTagSet(ctx, key, 0)
}

func (o *intersectionOps) Forever(ctx context.Context, key string, value interface{}) error {
	return o.Put(ctx, key, value, 0)
}

func (o *intersectionOps) Forget(ctx context.Context, key string) (bool, error) {
	n, err := o.d.client.Del(ctx, o.entryKey(key)).Result()
	return n > 0, err
}

func (o *intersectionOps) Has(ctx context.Context, key string) (bool, error) {
	n, err := o.d.client.Exists(ctx, o.entryKey(key)).Result()
	return n > 0, err
}

func (o *intersectionOps) Missing(ctx context.Context, key string) (bool, error) {
	has, err := o.Has(ctx, key)
	return !has, err
}

// Flush removes every entry whose tag set is exactly o.tags.
func (o *intersectionOps) Flush(ctx context.Context) error {
	return o.FlushTags(ctx, o.tags...)
}

// FlushTags implements §4.4.3 literally: the given tags' own tag set T is
// the namespace the flush targets, not a predicate over each entry's
// original tag set. Every bare key ever registered against any tag in T is
// remapped through namespacedEntryKey(key, T) — i.e. through sha1(T), T
// being this call's own tag list — and that namespaced key is what gets
// deleted. An entry written under a strictly larger tag set than T lives at
// a different namespace id and is therefore left untouched: flushing one of
// an entry's tags is not sufficient to remove it unless T names the entry's
// complete tag set.
func (o *intersectionOps) FlushTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		tags = o.tags
	}
	if len(tags) == 0 {
		return nil
	}

	members := make(map[string]struct{})
	for _, tag := range tags {
		keys, err := o.d.client.ZRange(ctx, o.d.sc.tagSetKey(tag), 0, -1).Result()
		if err != nil {
			return err
		}
		for _, k := range keys {
			members[k] = struct{}{}
		}
	}

	if len(members) > 0 {
		namespaced := make([]string, 0, len(members))
		for k := range members {
			namespaced = append(namespaced, o.d.sc.namespacedEntryKey(k, tags))
		}
		for i := 0; i < len(namespaced); i += 1000 {
			end := i + 1000
			if end > len(namespaced) {
				end = len(namespaced)
			}
			if err := o.d.client.Unlink(ctx, namespaced[i:end]...).Err(); err != nil {
				return err
			}
		}
	}

	pipe := o.d.client.Pipeline()
	for _, tag := range tags {
		pipe.Del(ctx, o.d.sc.tagSetKey(tag))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (o *intersectionOps) Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error) {
	if value, err := o.Get(ctx, key); err == nil && value != nil {
		return value, nil
	}
	value, err := callback()
	if err != nil {
		return nil, err
	}
	if err := o.Put(ctx, key, value, ttl); err != nil {
		return value, nil
	}
	return value, nil
}

func (o *intersectionOps) RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error) {
	return o.Remember(ctx, key, 0, callback)
}

func translateNotFound(err error) error {
	if err == nil {
		return nil
	}
	if isRedisNil(err) {
		return cache.ErrKeyNotFound
	}
	return err
}
