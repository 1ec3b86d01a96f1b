package doctor

import (
	"fmt"
	"sync/atomic"
	"time"
)

var scratchSeq int64

// scratchKey returns a key unique to this process run, so repeated Doctor.Run
// calls against the same store never collide with a prior sweep's leftovers
// (or with each other, since checks run sequentially but a caller may invoke
// Run concurrently from multiple goroutines against the same driver).
func scratchKey(name string) string {
	n := atomic.AddInt64(&scratchSeq, 1)
	return fmt.Sprintf("doctor:%s:%d:%d", name, time.Now().UnixNano(), n)
}
