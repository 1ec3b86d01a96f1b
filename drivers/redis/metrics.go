package redis

// driverMetrics tracks cache statistics with lock-free atomic counters,
// since the Redis driver is hit from many goroutines and the counters
// themselves never gate correctness the way the memory driver's
// size-accounting does.
type driverMetrics struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
}
