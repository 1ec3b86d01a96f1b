package redis

import (
	"sync/atomic"

	cache "github.com/donnigundala/dg-tagcache"
)

// Stats returns the current cache statistics.
func (d *Driver) Stats() cache.Stats {
	hits := atomic.LoadInt64(&d.metrics.Hits)
	misses := atomic.LoadInt64(&d.metrics.Misses)

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return cache.Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    atomic.LoadInt64(&d.metrics.Sets),
		Deletes: atomic.LoadInt64(&d.metrics.Deletes),
		HitRate: hitRate,
	}
}

// recordHit increments the hit counter.
func (d *Driver) recordHit() {
	atomic.AddInt64(&d.metrics.Hits, 1)
}

// recordMiss increments the miss counter.
func (d *Driver) recordMiss() {
	atomic.AddInt64(&d.metrics.Misses, 1)
}

// recordSet increments the set counter.
func (d *Driver) recordSet() {
	atomic.AddInt64(&d.metrics.Sets, 1)
}

// recordDelete increments the delete counter.
func (d *Driver) recordDelete() {
	atomic.AddInt64(&d.metrics.Deletes, 1)
}
