package doctor

import (
	"fmt"
	"runtime"

	cache "github.com/donnigundala/dg-tagcache"
)

// MemoryBudget bounds how much of the process's reserved memory a benchmark
// scenario run is allowed to touch. This is a benchmark-harness-only guard
// (§7 "MemoryPressure"): the core driver paths never consult it.
type MemoryBudget struct {
	// MaxFraction is the HeapAlloc/Sys ratio at which Check starts failing.
	MaxFraction float64
}

// DefaultMemoryBudget aborts a scenario run once the heap has grown to 80%
// of the memory the runtime has reserved from the OS.
func DefaultMemoryBudget() MemoryBudget {
	return MemoryBudget{MaxFraction: 0.8}
}

// Check samples runtime.MemStats and returns ErrMemoryPressure once
// HeapAlloc crosses MaxFraction of Sys. Intended to be called between
// scenario iterations in a benchmark loop, not on every cache operation.
func (b MemoryBudget) Check() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Sys == 0 {
		return nil
	}
	fraction := float64(m.HeapAlloc) / float64(m.Sys)
	if fraction >= b.MaxFraction {
		return fmt.Errorf("%w: heap at %.1f%% of reserved memory (%d/%d bytes)",
			cache.ErrMemoryPressure, fraction*100, m.HeapAlloc, m.Sys)
	}
	return nil
}
