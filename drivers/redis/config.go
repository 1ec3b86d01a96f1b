package redis

import (
	"time"
)

// Mode selects how tag membership is tracked and how reads are scoped.
type Mode string

const (
	// ModeAll is intersection semantics: reads are scoped to the exact tag
	// set used on write; Flush(T) removes entries whose tag set equals T.
	ModeAll Mode = "all"

	// ModeAny is union semantics: tags are write/flush-only metadata and
	// scoped reads are unsupported; Flush(T) removes entries sharing any
	// tag with T.
	ModeAny Mode = "any"
)

// FlushMode controls how Flush(ctx) clears an entire store.
type FlushMode string

const (
	// FlushModeFlushDB issues FLUSHDB, clearing the whole logical database.
	FlushModeFlushDB FlushMode = "flushdb"

	// FlushModeScan walks keys under the store's prefix with SCAN and
	// deletes them individually, leaving the rest of the database intact.
	FlushModeScan FlushMode = "scan"
)

// Config represents the Redis configuration.
type Config struct {
	// Host is the Redis server host.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis server password.
	Password string

	// Database is the Redis database number.
	Database int

	// Prefix is the cache key prefix.
	Prefix string

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	// Timeout is the dial timeout.
	Timeout time.Duration

	// MinRetryBackoff is the minimum backoff between retries.
	MinRetryBackoff time.Duration

	// MaxRetryBackoff is the maximum backoff between retries.
	MaxRetryBackoff time.Duration

	// Mode selects intersection ("all") or union ("any") tag semantics.
	Mode Mode

	// ClusterAddrs, when non-empty, puts the driver in cluster mode against
	// the given "host:port" seed nodes instead of a single-node client.
	ClusterAddrs []string

	// OptPrefix is an additional key-prefix segment applied ahead of the
	// store prefix, mirroring predis's OPT_PREFIX. It exists so SCAN/HSCAN
	// results can be told apart from keys belonging to a co-tenant
	// application sharing the same Redis database.
	OptPrefix string

	// FlushMode controls Flush(ctx) on the default (untagged) store.
	FlushMode FlushMode

	// PruneInterval is carried in Config, but NewDriver neither reads it from
	// the store options nor starts any background sweep; pruning runs only
	// when Prune is called.
	PruneInterval time.Duration
}

// DefaultConfig returns a default Redis configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            6379,
		Database:        0,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		Timeout:         5 * time.Second,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		Mode:            ModeAll,
		FlushMode:       FlushModeFlushDB,
	}
}
