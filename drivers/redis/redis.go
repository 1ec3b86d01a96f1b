package redis

import (
	"context"
	"sync/atomic"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
	"github.com/donnigundala/dg-tagcache/serializer"
	"github.com/redis/go-redis/v9"
)

// Driver is a Redis cache driver. It is the plain (untagged) Store; tagged
// access goes through TaggedCache, which wraps the same client and
// dispatches to intersection or union semantics depending on Config.Mode.
type Driver struct {
	client     redis.UniversalClient
	prefix     string
	optPrefix  string
	serializer serializer.Serializer
	metrics    driverMetrics
	mode       Mode
	cluster    bool
	flushMode  FlushMode
	sc         *storeContext
}

// NewDriver creates a new Redis cache driver.
func NewDriver(config cache.StoreConfig) (cache.Driver, error) {
	redisConfig := DefaultConfig()

	if val, ok := config.Options["host"].(string); ok {
		redisConfig.Host = val
	}
	if val, ok := config.Options["port"].(int); ok {
		redisConfig.Port = val
	}
	if val, ok := config.Options["password"].(string); ok {
		redisConfig.Password = val
	}
	if val, ok := config.Options["database"].(int); ok {
		redisConfig.Database = val
	}
	if val, ok := config.Options["pool_size"].(int); ok {
		redisConfig.PoolSize = val
	}
	if val, ok := config.Options["mode"].(string); ok {
		redisConfig.Mode = Mode(val)
	}
	if val, ok := config.Options["opt_prefix"].(string); ok {
		redisConfig.OptPrefix = val
	}
	if val, ok := config.Options["flush_mode"].(string); ok {
		redisConfig.FlushMode = FlushMode(val)
	}
	if val, ok := config.Options["cluster_addrs"].([]string); ok {
		redisConfig.ClusterAddrs = val
	}

	var client redis.UniversalClient
	cluster := len(redisConfig.ClusterAddrs) > 0
	if cluster {
		c, err := NewClusterClient(redisConfig)
		if err != nil {
			return nil, err
		}
		client = c
	} else {
		c, err := NewClient(redisConfig)
		if err != nil {
			return nil, err
		}
		client = c
	}

	var ser serializer.Serializer = serializer.NewJSONSerializer()
	if val, ok := config.Options["serializer"].(string); ok {
		switch val {
		case "msgpack":
			ser = serializer.NewMsgpackSerializer()
		case "json":
			ser = serializer.NewJSONSerializer()
		}
	}

	if redisConfig.Mode == "" {
		redisConfig.Mode = ModeAll
	}
	if redisConfig.FlushMode == "" {
		redisConfig.FlushMode = FlushModeFlushDB
	}

	d := &Driver{
		client:     client,
		prefix:     config.Prefix,
		optPrefix:  redisConfig.OptPrefix,
		serializer: ser,
		mode:       redisConfig.Mode,
		cluster:    cluster,
		flushMode:  redisConfig.FlushMode,
	}
	d.sc = newStoreContext(d.client, d.optPrefix, d.prefix, d.cluster)

	return d, nil
}

// NewDriverWithClient creates a new Redis cache driver with an existing client.
func NewDriverWithClient(client redis.UniversalClient, prefix string) *Driver {
	d := &Driver{
		client:     client,
		prefix:     prefix,
		serializer: serializer.NewJSONSerializer(),
		mode:       ModeAll,
		flushMode:  FlushModeFlushDB,
	}
	d.sc = newStoreContext(d.client, d.optPrefix, d.prefix, d.cluster)
	return d
}

// prefixKey adds the configured prefixes to the key.
func (d *Driver) prefixKey(key string) string {
	return d.sc.prefixKey(key)
}

// Get retrieves a value from the cache.
func (d *Driver) Get(ctx context.Context, key string) (interface{}, error) {
	data, err := d.client.Get(ctx, d.prefixKey(key)).Bytes()
	if err == redis.Nil {
		d.recordMiss()
		return nil, cache.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	d.recordHit()
	return decodeValue(d.serializer, data), nil
}

// GetMultiple retrieves multiple values from the cache.
func (d *Driver) GetMultiple(ctx context.Context, keys []string) (map[string]interface{}, error) {
	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		prefixedKeys[i] = d.prefixKey(key)
	}

	vals, err := d.client.MGet(ctx, prefixedKeys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{})
	for i, val := range vals {
		if val == nil {
			continue
		}
		var data []byte
		switch v := val.(type) {
		case string:
			data = []byte(v)
		case []byte:
			data = v
		default:
			continue
		}
		result[keys[i]] = decodeValue(d.serializer, data)
	}

	return result, nil
}

// Put stores a value in the cache with the given TTL.
func (d *Driver) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := serialize(d.serializer, value)
	if err != nil {
		return err
	}
	if err := d.client.Set(ctx, d.prefixKey(key), data, ttl).Err(); err != nil {
		return err
	}
	d.recordSet()
	return nil
}

// PutMultiple stores multiple values in the cache.
func (d *Driver) PutMultiple(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	pipe := d.client.Pipeline()
	for key, value := range items {
		data, err := serialize(d.serializer, value)
		if err != nil {
			return err
		}
		pipe.Set(ctx, d.prefixKey(key), data, ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return err
	}
	atomic.AddInt64(&d.metrics.Sets, int64(len(items)))
	return nil
}

// Add stores a value only if the key is currently absent. Implemented as a
// single EVAL so the existence check and the write are atomic.
func (d *Driver) Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := serializeForLua(d.serializer, value)
	if err != nil {
		return false, err
	}

	seconds := int64(ttl.Seconds())
	if ttl > 0 && seconds < 1 {
		seconds = 1
	}

	res, err := runScript(ctx, d.client, addScript, []string{d.prefixKey(key)}, data, seconds)
	if err != nil {
		return false, err
	}
	added, _ := res.(int64)
	if added == 1 {
		d.recordSet()
		return true, nil
	}
	return false, nil
}

// Increment increments the value of a key.
func (d *Driver) Increment(ctx context.Context, key string, value int64) (int64, error) {
	n, err := d.client.IncrBy(ctx, d.prefixKey(key), value).Result()
	if err == nil {
		d.recordSet()
	}
	return n, err
}

// Decrement decrements the value of a key.
func (d *Driver) Decrement(ctx context.Context, key string, value int64) (int64, error) {
	n, err := d.client.DecrBy(ctx, d.prefixKey(key), value).Result()
	if err == nil {
		d.recordSet()
	}
	return n, err
}

// Forever stores a value in the cache indefinitely.
func (d *Driver) Forever(ctx context.Context, key string, value interface{}) error {
	return d.Put(ctx, key, value, 0)
}

// Forget removes a value from the cache. Reports whether a key was removed.
func (d *Driver) Forget(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Del(ctx, d.prefixKey(key)).Result()
	if err != nil {
		return false, err
	}
	if n > 0 {
		d.recordDelete()
	}
	return n > 0, nil
}

// Flush removes all items from the cache.
func (d *Driver) Flush(ctx context.Context) error {
	if d.flushMode == FlushModeScan {
		return d.flushByScan(ctx)
	}
	return d.client.FlushDB(ctx).Err()
}

// flushByScan deletes only keys under this store's prefix, leaving the rest
// of the logical database alone. Used when FlushMode is "scan", e.g. when
// the database is shared with other applications via opt_prefix.
func (d *Driver) flushByScan(ctx context.Context) error {
	it := d.sc.newSafeScan(ctx, "*", 1000)
	var batch []string
	for it.Next() {
		batch = append(batch, it.RawKey())
		if len(batch) >= 1000 {
			if err := d.client.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if it.Err() != nil {
		return it.Err()
	}
	if len(batch) > 0 {
		return d.client.Unlink(ctx, batch...).Err()
	}
	return nil
}

// TTL reports the server-side time-to-live remaining on a key: -1 means the
// key exists with no expiration, -2 means it does not exist.
func (d *Driver) TTL(ctx context.Context, key string) (time.Duration, error) {
	return d.client.TTL(ctx, d.prefixKey(key)).Result()
}

// Has checks if a key exists in the cache.
func (d *Driver) Has(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefixKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Missing checks if a key does not exist in the cache.
func (d *Driver) Missing(ctx context.Context, key string) (bool, error) {
	has, err := d.Has(ctx, key)
	return !has, err
}

// GetPrefix returns the cache key prefix.
func (d *Driver) GetPrefix() string {
	return d.prefix
}

// SetPrefix sets the cache key prefix.
func (d *Driver) SetPrefix(prefix string) {
	d.prefix = prefix
	d.sc = newStoreContext(d.client, d.optPrefix, d.prefix, d.cluster)
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return "redis"
}

// Mode reports which tagging semantics this driver was configured with.
func (d *Driver) Mode() Mode {
	return d.mode
}

// Close closes the driver and releases resources.
func (d *Driver) Close() error {
	return d.client.Close()
}

// Tags returns a new TaggedStore scoped to the given tags, dispatching to
// intersection or union semantics per the driver's configured Mode.
func (d *Driver) Tags(tags ...string) cache.TaggedStore {
	return newTaggedCache(d, tags)
}

// decodeValue unmarshals data, falling back to the raw string for payloads
// the serializer can't parse (e.g. plain values a pre-existing deployment
// wrote with a different serializer).
func decodeValue(ser serializer.Serializer, data []byte) interface{} {
	var result interface{}
	if err := ser.Unmarshal(data, &result); err != nil {
		return string(data)
	}
	return result
}
