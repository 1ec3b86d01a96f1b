package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// foreverScore is the union-mode registry score assigned to a tag whose
// furthest-out member never expires: 253402300799 is the Unix timestamp of
// 9999-12-31T23:59:59Z, the "effectively forever" sentinel predis-style
// registries use. Intersection-mode ZSETs use a different, smaller sentinel
// (entryForeverScore) since their members are live cache keys, not a
// registry's worst-case horizon.
const foreverScore float64 = 253402300799

// entryForeverScore is the intersection-mode tag ZSET score for a member
// written with ttl<=0 ("forever"): -1, so it always sorts below any real
// expiry and falls outside the [0, now] range ZREMRANGEBYSCORE uses to
// evict expired members during a prune sweep.
const entryForeverScore float64 = -1

func redisZMemberScored(member string, score float64) redis.Z {
	return redis.Z{Score: score, Member: member}
}

// entryScore converts a TTL into the intersection-mode ZSET score for the
// member being written: its absolute Unix-second expiry, or
// entryForeverScore for an indefinite entry.
func entryScore(ttl time.Duration) float64 {
	if ttl <= 0 {
		return entryForeverScore
	}
	return float64(time.Now().Add(ttl).Unix())
}

// pruneHorizon converts a TTL into the union-mode registry score tracking
// when a tag's furthest-out member expires: 0 (forever) maps to
// foreverScore so the pruner never mistakes an indefinite entry for stale.
func pruneHorizon(ttl time.Duration) float64 {
	if ttl <= 0 {
		return foreverScore
	}
	return float64(time.Now().Add(ttl).Unix())
}

func isRedisNil(err error) bool {
	return err == redis.Nil
}
