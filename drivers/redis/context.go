package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// storeContext centralizes key construction so every key built from a tag
// name or entry key runs through the same prefixing rules, and so SCAN-style
// iteration can reliably strip back to the bare name it started from. All
// multi-key orchestration (intersection ZSETs, union hashes, the reverse
// index, the tag registry) is built on top of these helpers.
type storeContext struct {
	client    redis.UniversalClient
	cc        *redis.ClusterClient
	optPrefix string
	prefix    string
	cluster   bool
}

func newStoreContext(client redis.UniversalClient, optPrefix, prefix string, cluster bool) *storeContext {
	sc := &storeContext{client: client, optPrefix: optPrefix, prefix: prefix, cluster: cluster}
	if cc, ok := client.(*redis.ClusterClient); ok {
		sc.cc = cc
	}
	return sc
}

// fullPrefix is the complete prefix WE apply when constructing any key:
// opt_prefix first (tenant/application separation), then the store prefix.
func (s *storeContext) fullPrefix() string {
	if s.optPrefix == "" {
		return s.prefix
	}
	if s.prefix == "" {
		return s.optPrefix
	}
	return s.optPrefix + ":" + s.prefix
}

// prefixKey applies fullPrefix to a bare cache key.
func (s *storeContext) prefixKey(key string) string {
	fp := s.fullPrefix()
	if fp == "" {
		return key
	}
	return fp + ":" + key
}

// tagSetKey is the ZSET backing a single tag in intersection mode ("all").
// Members are the bare cache keys registered against this tag; the score is
// each member's absolute expiry (Unix seconds), or -1 for forever, per I2 —
// that score is what lets Prune drop stale members with ZREMRANGEBYSCORE
// instead of having to probe each one's liveness.
func (s *storeContext) tagSetKey(tag string) string {
	return s.prefixKey("tag:" + tag + ":entries")
}

// tagHashKey is the hash backing a single tag in union mode ("any"). Fields
// are entry keys with per-field TTLs mirroring the entry's own expiration.
func (s *storeContext) tagHashKey(tag string) string {
	return s.prefixKey("_erc:tag:" + tag + ":entries")
}

// reverseIndexKey is the set mapping a bare entry key back to the tags it
// was last written with (TTL mirroring the entry), so a union-mode write can
// HDEL its field from every tag hash it no longer belongs to, and flush can
// UNLINK it outright once the entry itself is gone. Takes the bare key, not
// the already-prefixed one, to match §6's literal P‖K‖':_erc:tags' layout.
func (s *storeContext) reverseIndexKey(bareKey string) string {
	return s.prefixKey(bareKey + ":_erc:tags")
}

// registryKey is the ZSET of every tag name ever created in union mode,
// scored by the furthest-out expiration among its members, so lazy pruning
// can cheaply find and drop tags with nothing left alive.
func (s *storeContext) registryKey() string {
	return s.prefixKey("_erc:tag:registry")
}

// fullPrefixArg returns fullPrefix with a trailing ":" (or "" when there is
// no prefix at all) — the form the union write/counter Lua scripts need to
// address an old tag's hash key from inside Lua, where they only have the
// bare tag name to work with.
func (s *storeContext) fullPrefixArg() string {
	fp := s.fullPrefix()
	if fp == "" {
		return ""
	}
	return fp + ":"
}

// tagSetID computes the intersection-mode entry namespace id for a set of
// tags: sha1 of the tags sorted and pipe-joined, so Tags("a","b") and
// Tags("b","a") resolve to the same namespaced key.
func tagSetID(tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}

// namespacedEntryKey is the key an intersection-mode write actually touches:
// the bare key scoped under its tag-set id, so the same logical key under
// two different tag sets never collides.
func (s *storeContext) namespacedEntryKey(key string, tags []string) string {
	return s.prefixKey("tagged:" + tagSetID(tags) + ":" + key)
}

// stripPrefix undoes prefixKey on a raw key returned by SCAN/HSCAN/ZSCAN.
// Those commands return full keys (including fullPrefix()); reusing a raw
// result directly in a key-builder call above would double-prefix it, so
// every iteration loop must stripPrefix before doing anything else with it.
func (s *storeContext) stripPrefix(rawKey string) string {
	fp := s.fullPrefix()
	if fp == "" {
		return rawKey
	}
	return strings.TrimPrefix(rawKey, fp+":")
}

// safeScan iterates SCAN results for a MATCH pattern built from fullPrefix,
// yielding already-stripped keys. It owns the cursor so callers never see
// the raw/full key unless they ask for it. In cluster mode it walks every
// master node (a key's cursor is only meaningful against the node that
// issued it), deduplicating across nodes with a seen set, since the same
// logical keyspace is sharded across them.
type safeScan struct {
	ctx     context.Context
	sc      *storeContext
	cursor  uint64
	pattern string
	count   int64
	buf     []string
	current string
	err     error
	done    bool

	seen     map[string]struct{}
	nodeKeys []string
}

func (s *storeContext) newSafeScan(ctx context.Context, matchSuffix string, count int64) *safeScan {
	pattern := s.fullPrefix()
	if pattern != "" {
		pattern += ":"
	}
	pattern += matchSuffix
	return &safeScan{ctx: ctx, sc: s, pattern: pattern, count: count}
}

// Next advances to the next raw key, fetching another SCAN page as needed.
// Returns false when iteration is exhausted or an error occurred; check Err.
func (it *safeScan) Next() bool {
	if it.sc.cluster && it.sc.cc != nil {
		return it.nextClustered()
	}
	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		keys, cursor, err := it.sc.client.Scan(it.ctx, it.cursor, it.pattern, it.count).Result()
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.cursor = cursor
		it.buf = keys
		if cursor == 0 {
			it.done = true
		}
	}
	it.current = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// nextClustered walks every master shard once, up front, collecting the
// deduplicated key set before yielding the first result. This trades the
// single-node version's true streaming for a simple, correct multi-shard
// sweep; prune and scan-flush are maintenance paths, not hot paths, so the
// up-front cost is acceptable.
func (it *safeScan) nextClustered() bool {
	if it.nodeKeys == nil && !it.done {
		it.seen = make(map[string]struct{})
		err := it.sc.cc.ForEachMaster(it.ctx, func(ctx context.Context, master *redis.Client) error {
			var cursor uint64
			for {
				keys, next, err := master.Scan(ctx, cursor, it.pattern, it.count).Result()
				if err != nil {
					return err
				}
				for _, k := range keys {
					if _, dup := it.seen[k]; !dup {
						it.seen[k] = struct{}{}
						it.nodeKeys = append(it.nodeKeys, k)
					}
				}
				cursor = next
				if cursor == 0 {
					return nil
				}
			}
		})
		it.done = true
		if err != nil {
			it.err = err
			return false
		}
	}
	if len(it.nodeKeys) == 0 {
		return false
	}
	it.current = it.nodeKeys[0]
	it.nodeKeys = it.nodeKeys[1:]
	return true
}

// Key returns the current stripped (bare) key.
func (it *safeScan) Key() string {
	return it.sc.stripPrefix(it.current)
}

// RawKey returns the current key exactly as SCAN returned it.
func (it *safeScan) RawKey() string {
	return it.current
}

func (it *safeScan) Err() error {
	return it.err
}
