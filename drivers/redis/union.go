package redis

import (
	"context"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
	"github.com/redis/go-redis/v9"
)

// unionWriteScript sets an entry and reconciles it against every given
// tag's hash (with a per-field TTL mirroring the entry's own expiration, via
// Redis 7.4+'s HEXPIRE), all atomically. "Reconciles" rather than just
// "records": it first reads the key's current reverse index — the tags it
// was written with last time — so that a tag dropped from this write's set
// gets its stale field removed from that tag's hash instead of lingering
// there forever (I3(a)/I4). When ARGV[1]=="1" the write only happens if the
// key does not already exist (the Add path).
//
// KEYS[1]        entry key
// KEYS[2]        reverse index set key (<key>:_erc:tags)
// KEYS[3..]      one tag hash key per new tag, same order as ARGV[5..]
// ARGV[1]        "1" for add-if-absent, "0" for unconditional write
// ARGV[2]        serialized value
// ARGV[3]        ttl in whole seconds, 0 meaning forever
// ARGV[4]        fully-qualified prefix, trailing ":" included (or "" if
//                there is none) — used to address an old tag's hash key
//                when that tag isn't among KEYS[3..] this time around
// ARGV[5..]      new tag names, same order/count as KEYS[3..]
const unionWriteScriptSrc = `
local entryKey = KEYS[1]
local reverseKey = KEYS[2]
local nx = ARGV[1]
local value = ARGV[2]
local ttl = tonumber(ARGV[3])
local prefix = ARGV[4]

if nx == "1" and redis.call('exists', entryKey) == 1 then
	return 0
end

-- step 1: read the key's tag set as of the previous write.
local oldTags = redis.call('smembers', reverseKey)

if ttl > 0 then
	redis.call('setex', entryKey, ttl, value)
else
	redis.call('set', entryKey, value)
end

local ntags = #KEYS - 2
local newTags = {}
for i = 1, ntags do
	newTags[ARGV[4 + i]] = true
end

-- step 3: drop the field from any tag this write no longer carries.
for _, oldTag in ipairs(oldTags) do
	if not newTags[oldTag] then
		redis.call('hdel', prefix .. '_erc:tag:' .. oldTag .. ':entries', entryKey)
	end
end

-- step 4/6: record the key against every tag it carries now.
for i = 1, ntags do
	local tagHashKey = KEYS[2 + i]
	redis.call('hset', tagHashKey, entryKey, '1')
	if ttl > 0 then
		redis.call('hexpire', tagHashKey, ttl, 'FIELDS', 1, entryKey)
	end
end

-- step 5: rebuild the reverse index to exactly the new tag set.
redis.call('del', reverseKey)
if ntags > 0 then
	local members = {}
	for i = 1, ntags do
		members[i] = ARGV[4 + i]
	end
	redis.call('sadd', reverseKey, unpack(members))
	if ttl > 0 then
		redis.call('expire', reverseKey, ttl)
	else
		redis.call('persist', reverseKey)
	end
end

return 1
`

var unionWriteScript = redis.NewScript(unionWriteScriptSrc)

// unionCounterScript runs INCRBY/DECRBY and then propagates the resulting
// TTL (INCRBY does not accept one) to the tag hashes and reverse index the
// same way unionWriteScript reconciles a direct write.
//
// KEYS[1]    entry key
// KEYS[2]    reverse index set key
// KEYS[3..]  tag hash keys
// ARGV[1]    delta (negative for decrement)
// ARGV[2]    fully-qualified prefix, trailing ":" included (or "")
// ARGV[3..]  tag names
const unionCounterScriptSrc = `
local entryKey = KEYS[1]
local reverseKey = KEYS[2]
local delta = tonumber(ARGV[1])
local prefix = ARGV[2]

local oldTags = redis.call('smembers', reverseKey)

local newVal = redis.call('incrby', entryKey, delta)
local ttl = redis.call('ttl', entryKey)
if ttl < 0 then ttl = 0 end

local ntags = #KEYS - 2
local newTags = {}
for i = 1, ntags do
	newTags[ARGV[2 + i]] = true
end

for _, oldTag in ipairs(oldTags) do
	if not newTags[oldTag] then
		redis.call('hdel', prefix .. '_erc:tag:' .. oldTag .. ':entries', entryKey)
	end
end

for i = 1, ntags do
	local tagHashKey = KEYS[2 + i]
	redis.call('hset', tagHashKey, entryKey, '1')
	if ttl > 0 then
		redis.call('hexpire', tagHashKey, ttl, 'FIELDS', 1, entryKey)
	end
end

redis.call('del', reverseKey)
if ntags > 0 then
	local members = {}
	for i = 1, ntags do
		members[i] = ARGV[2 + i]
	end
	redis.call('sadd', reverseKey, unpack(members))
	if ttl > 0 then
		redis.call('expire', reverseKey, ttl)
	end
end

return newVal
`

var unionCounterScript = redis.NewScript(unionCounterScriptSrc)

// unionOps implements mode "any": tags are write/flush-only metadata, so
// reads that would need to be scoped by tag set (Get/GetMultiple/Has/
// Missing/Forget) are rejected with ErrUnsupportedOperation rather than silently
// behaving like an untagged read.
type unionOps struct {
	d    *Driver
	tags []string
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	seconds := int64(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func (o *unionOps) scriptKeysArgs(bareKey string, nx bool, data string, ttl time.Duration) ([]string, []interface{}) {
	entryKey := o.d.prefixKey(bareKey)
	keys := make([]string, 0, 2+len(o.tags))
	keys = append(keys, entryKey, o.d.sc.reverseIndexKey(bareKey))
	for _, tag := range o.tags {
		keys = append(keys, o.d.sc.tagHashKey(tag))
	}

	nxFlag := "0"
	if nx {
		nxFlag = "1"
	}
	args := make([]interface{}, 0, 4+len(o.tags))
	args = append(args, nxFlag, data, ttlSeconds(ttl), o.d.sc.fullPrefixArg())
	for _, tag := range o.tags {
		args = append(args, tag)
	}
	return keys, args
}

func (o *unionOps) writeOne(ctx context.Context, bareKey string, value interface{}, ttl time.Duration, nx bool) (bool, error) {
	data, err := serializeForLua(o.d.serializer, value)
	if err != nil {
		return false, err
	}

	if err := o.registerTags(ctx, ttl); err != nil {
		return false, err
	}

	if o.d.cluster {
		return o.writeOneClustered(ctx, bareKey, data, ttl, nx)
	}

	keys, args := o.scriptKeysArgs(bareKey, nx, data, ttl)
	res, err := runScript(ctx, o.d.client, unionWriteScript, keys, args...)
	if err != nil {
		return false, err
	}
	written, _ := res.(int64)
	return written == 1, nil
}

// writeOneClustered replays unionWriteScript's steps as separate commands.
// The entry key and its tag hash keys almost never share a cluster slot, so
// EVAL would fail with CROSSSLOT; this sequence routes each command to
// whichever node owns its key instead. It is not atomic: a concurrent
// writer to the same key can interleave between the reverse-index read and
// the per-tag HSET/HDEL calls, leaving a stale tag-hash field that the
// pruner's sweep later reclaims as an orphan.
func (o *unionOps) writeOneClustered(ctx context.Context, bareKey, data string, ttl time.Duration, nx bool) (bool, error) {
	entryKey := o.d.prefixKey(bareKey)
	reverseKey := o.d.sc.reverseIndexKey(bareKey)

	if nx {
		n, err := o.d.client.Exists(ctx, entryKey).Result()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}
	}

	oldTags, err := o.d.client.SMembers(ctx, reverseKey).Result()
	if err != nil {
		return false, err
	}

	if ttl > 0 {
		if err := o.d.client.SetEx(ctx, entryKey, data, ttl).Err(); err != nil {
			return false, err
		}
	} else {
		if err := o.d.client.Set(ctx, entryKey, data, 0).Err(); err != nil {
			return false, err
		}
	}

	newTagSet := make(map[string]struct{}, len(o.tags))
	for _, tag := range o.tags {
		newTagSet[tag] = struct{}{}
	}
	for _, oldTag := range oldTags {
		if _, ok := newTagSet[oldTag]; !ok {
			if err := o.d.client.HDel(ctx, o.d.sc.tagHashKey(oldTag), entryKey).Err(); err != nil {
				return false, err
			}
		}
	}

	seconds := ttlSeconds(ttl)
	for _, tag := range o.tags {
		tagHashKey := o.d.sc.tagHashKey(tag)
		if err := o.d.client.HSet(ctx, tagHashKey, entryKey, "1").Err(); err != nil {
			return false, err
		}
		if seconds > 0 {
			if err := o.d.client.Do(ctx, "hexpire", tagHashKey, seconds, "FIELDS", 1, entryKey).Err(); err != nil {
				return false, err
			}
		}
	}

	if err := o.d.client.Del(ctx, reverseKey).Err(); err != nil {
		return false, err
	}
	if len(o.tags) > 0 {
		members := make([]interface{}, len(o.tags))
		for i, tag := range o.tags {
			members[i] = tag
		}
		if err := o.d.client.SAdd(ctx, reverseKey, members...).Err(); err != nil {
			return false, err
		}
		if seconds > 0 {
			if err := o.d.client.Expire(ctx, reverseKey, ttl).Err(); err != nil {
				return false, err
			}
		} else {
			if err := o.d.client.Persist(ctx, reverseKey).Err(); err != nil {
				return false, err
			}
		}
	}

	return true, nil
}

// registerTags keeps the tag registry ZSET current so pruning can find tags
// with nothing left alive. Score is the furthest-out expiration seen yet:
// ZADD GT adds a new tag at this write's horizon and only ever raises an
// existing tag's score.
func (o *unionOps) registerTags(ctx context.Context, ttl time.Duration) error {
	if len(o.tags) == 0 {
		return nil
	}
	horizon := pruneHorizon(ttl)
	pipe := o.d.client.Pipeline()
	for _, tag := range o.tags {
		pipe.ZAddGT(ctx, o.d.sc.registryKey(), redisZMemberScored(tag, horizon))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (o *unionOps) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	_, err := o.writeOne(ctx, key, value, ttl, false)
	return err
}

func (o *unionOps) PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	for key, value := range items {
		if err := o.Put(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (o *unionOps) Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return o.writeOne(ctx, key, value, ttl, true)
}

func (o *unionOps) Forever(ctx context.Context, key string, value interface{}) error {
	return o.Put(ctx, key, value, 0)
}

func (o *unionOps) counter(ctx context.Context, key string, delta int64) (int64, error) {
	if err := o.registerTags(ctx, 0); err != nil {
		return 0, err
	}

	if o.d.cluster {
		return o.counterClustered(ctx, key, delta)
	}

	entryKey := o.d.prefixKey(key)
	keys := make([]string, 0, 2+len(o.tags))
	keys = append(keys, entryKey, o.d.sc.reverseIndexKey(key))
	for _, tag := range o.tags {
		keys = append(keys, o.d.sc.tagHashKey(tag))
	}
	args := make([]interface{}, 0, 2+len(o.tags))
	args = append(args, delta, o.d.sc.fullPrefixArg())
	for _, tag := range o.tags {
		args = append(args, tag)
	}

	res, err := runScript(ctx, o.d.client, unionCounterScript, keys, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.(int64)
	return n, nil
}

// counterClustered replays unionCounterScript's steps as separate commands,
// for the same cross-slot reason writeOneClustered exists.
func (o *unionOps) counterClustered(ctx context.Context, bareKey string, delta int64) (int64, error) {
	entryKey := o.d.prefixKey(bareKey)
	reverseKey := o.d.sc.reverseIndexKey(bareKey)

	oldTags, err := o.d.client.SMembers(ctx, reverseKey).Result()
	if err != nil {
		return 0, err
	}

	newVal, err := o.d.client.IncrBy(ctx, entryKey, delta).Result()
	if err != nil {
		return 0, err
	}

	ttl, err := o.d.client.TTL(ctx, entryKey).Result()
	if err != nil {
		return 0, err
	}
	seconds := int64(ttl.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	newTagSet := make(map[string]struct{}, len(o.tags))
	for _, tag := range o.tags {
		newTagSet[tag] = struct{}{}
	}
	for _, oldTag := range oldTags {
		if _, ok := newTagSet[oldTag]; !ok {
			if err := o.d.client.HDel(ctx, o.d.sc.tagHashKey(oldTag), entryKey).Err(); err != nil {
				return 0, err
			}
		}
	}

	for _, tag := range o.tags {
		tagHashKey := o.d.sc.tagHashKey(tag)
		if err := o.d.client.HSet(ctx, tagHashKey, entryKey, "1").Err(); err != nil {
			return 0, err
		}
		if seconds > 0 {
			if err := o.d.client.Do(ctx, "hexpire", tagHashKey, seconds, "FIELDS", 1, entryKey).Err(); err != nil {
				return 0, err
			}
		}
	}

	if err := o.d.client.Del(ctx, reverseKey).Err(); err != nil {
		return 0, err
	}
	if len(o.tags) > 0 {
		members := make([]interface{}, len(o.tags))
		for i, tag := range o.tags {
			members[i] = tag
		}
		if err := o.d.client.SAdd(ctx, reverseKey, members...).Err(); err != nil {
			return 0, err
		}
		if seconds > 0 {
			if err := o.d.client.Expire(ctx, reverseKey, time.Duration(seconds)*time.Second).Err(); err != nil {
				return 0, err
			}
		}
	}

	return newVal, nil
}

func (o *unionOps) Increment(ctx context.Context, key string, value int64) (int64, error) {
	return o.counter(ctx, key, value)
}

func (o *unionOps) Decrement(ctx context.Context, key string, value int64) (int64, error) {
	return o.counter(ctx, key, -value)
}

// Get, GetMultiple, Has, Missing and Forget require scoping by tag set,
// which union mode never tracks — tags here are write/flush-only.
func (o *unionOps) Get(ctx context.Context, key string) (interface{}, error) {
	return nil, cache.ErrUnsupportedOperation
}

func (o *unionOps) GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error) {
	return nil, cache.ErrUnsupportedOperation
}

func (o *unionOps) Has(ctx context.Context, key string) (bool, error) {
	return false, cache.ErrUnsupportedOperation
}

func (o *unionOps) Missing(ctx context.Context, key string) (bool, error) {
	return false, cache.ErrUnsupportedOperation
}

func (o *unionOps) Forget(ctx context.Context, key string) (bool, error) {
	return false, cache.ErrUnsupportedOperation
}

// Remember skips the unsupported scoped read and checks the store directly
// by the untagged key; on a miss it runs callback and writes the result
// through the tagged Put.
func (o *unionOps) Remember(ctx context.Context, key string, ttl time.Duration, callback func() (interface{}, error)) (interface{}, error) {
	if value, err := o.d.Get(ctx, key); err == nil && value != nil {
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

func (o *unionOps) RememberForever(ctx context.Context, key string, callback func() (interface{}, error)) (interface{}, error) {
	return o.Remember(ctx, key, 0, callback)
}

// Flush removes every entry sharing any of o.tags, reading each tag's hash
// in pages once it grows past a small threshold to avoid a giant HGETALL.
func (o *unionOps) Flush(ctx context.Context) error {
	return o.FlushTags(ctx, o.tags...)
}

const unionHashPageThreshold = 1000

// FlushTags implements §4.5.4 step 3 literally: for every entry sharing any
// of the given tags, it doesn't just drop the flushed tags' own hashes — it
// reads each entry's reverse index to find every tag that still references
// it (including ones outside this flush's tag list), HDELs the field from
// every one of those hashes, and UNLINKs the reverse index itself. That
// full reconciliation is what keeps a partial flush from leaving any
// orphaned hash field behind for Prune to find later (I7).
func (o *unionOps) FlushTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		tags = o.tags
	}
	if len(tags) == 0 {
		return nil
	}

	entryKeys := make(map[string]struct{})
	for _, tag := range tags {
		fields, err := o.hashFields(ctx, o.d.sc.tagHashKey(tag))
		if err != nil {
			return err
		}
		for _, f := range fields {
			entryKeys[f] = struct{}{}
		}
	}

	for entryKey := range entryKeys {
		if err := o.d.client.Unlink(ctx, entryKey).Err(); err != nil {
			return err
		}

		reverseKey := o.d.sc.reverseIndexKey(o.d.sc.stripPrefix(entryKey))
		refTags, err := o.d.client.SMembers(ctx, reverseKey).Result()
		if err != nil {
			return err
		}
		for _, refTag := range refTags {
			if err := o.d.client.HDel(ctx, o.d.sc.tagHashKey(refTag), entryKey).Err(); err != nil {
				return err
			}
		}
		if err := o.d.client.Unlink(ctx, reverseKey).Err(); err != nil {
			return err
		}
	}

	pipe := o.d.client.Pipeline()
	for _, tag := range tags {
		pipe.Unlink(ctx, o.d.sc.tagHashKey(tag))
		pipe.ZRem(ctx, o.d.sc.registryKey(), tag)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// hashFields lists a hash's fields, using HSCAN instead of HKEYS once the
// hash is large enough that a single HKEYS could block the server for a
// noticeable stretch.
func (o *unionOps) hashFields(ctx context.Context, hashKey string) ([]string, error) {
	n, err := o.d.client.HLen(ctx, hashKey).Result()
	if err != nil {
		return nil, err
	}
	if n < unionHashPageThreshold {
		return o.d.client.HKeys(ctx, hashKey).Result()
	}

	var fields []string
	var cursor uint64
	for {
		keys, next, err := o.d.client.HScan(ctx, hashKey, cursor, "*", 1000).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(keys); i += 2 {
			fields = append(fields, keys[i])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return fields, nil
}
