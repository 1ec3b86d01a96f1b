package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// addScript is a SET-if-absent with its own TTL clamp: Redis rejects a
// SETEX with a non-positive expiry, so a TTL <= 0 here means "forever".
const addScriptSrc = `
if redis.call('exists', KEYS[1]) == 1 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call('setex', KEYS[1], ARGV[2], ARGV[1])
else
	redis.call('set', KEYS[1], ARGV[1])
end
return 1
`

var addScript = redis.NewScript(addScriptSrc)

// runScript runs script against client. redis.Script.Run already computes
// the script's SHA once and transparently falls back from EVALSHA to a full
// EVAL on NOSCRIPT (e.g. after a server restart flushed the script cache),
// so every script in this package (intersection/union ops included) goes
// through this one call site instead of re-deriving that fallback.
func runScript(ctx context.Context, client redis.Scripter, script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	return script.Run(ctx, client, keys, args...).Result()
}
