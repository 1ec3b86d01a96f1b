package doctor

import (
	"context"
	"fmt"
	"time"

	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// memoryCheckInterval is how often a scenario loop samples the memory
// budget — every iteration would dominate the loop's own cost.
const memoryCheckInterval = 200

// RunWriteReadScenario exercises n write/read cycles against a single key,
// the "write/read ... under both modes" scenario named in spec item 9.
// Aborts early with ErrMemoryPressure if budget is crossed.
func RunWriteReadScenario(ctx context.Context, d *redisdriver.Driver, n int, budget MemoryBudget) error {
	key := scratchKey("bench-wr")
	defer d.Forget(ctx, key)

	for i := 0; i < n; i++ {
		if err := d.Put(ctx, key, i, time.Minute); err != nil {
			return err
		}
		if _, err := d.Get(ctx, key); err != nil {
			return err
		}
		if i%memoryCheckInterval == 0 {
			if err := budget.Check(); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunBulkScenario exercises n putMany/many round trips over a fixed-size
// batch, the "bulk" scenario named in spec item 9.
func RunBulkScenario(ctx context.Context, d *redisdriver.Driver, rounds, batchSize int, budget MemoryBudget) error {
	keys := make([]string, batchSize)
	items := make(map[string]interface{}, batchSize)
	prefix := scratchKey("bench-bulk")
	for i := range keys {
		keys[i] = fmt.Sprintf("%s:%d", prefix, i)
	}
	defer func() {
		for _, k := range keys {
			d.Forget(ctx, k)
		}
	}()

	for r := 0; r < rounds; r++ {
		for i, k := range keys {
			items[k] = r*1000 + i
		}
		if err := d.PutMultiple(ctx, items, time.Minute); err != nil {
			return err
		}
		if _, err := d.GetMultiple(ctx, keys); err != nil {
			return err
		}
		if r%memoryCheckInterval == 0 {
			if err := budget.Check(); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunTaggedFlushScenario exercises n tagged-write-then-flush cycles, the
// "flush ... under both modes" scenario named in spec item 9. Mode ("all"
// intersection or "any" union) is whatever the driver was constructed with;
// the flush semantics differ, the scenario shape doesn't need to know which.
func RunTaggedFlushScenario(ctx context.Context, d *redisdriver.Driver, rounds int, budget MemoryBudget) error {
	tag := scratchKey("bench-flush-tag")

	for r := 0; r < rounds; r++ {
		key := fmt.Sprintf("%s:%d", tag, r)
		tagged := d.Tags(tag)
		if err := tagged.Put(ctx, key, r, time.Minute); err != nil {
			return err
		}
		if r%memoryCheckInterval == 0 {
			if err := budget.Check(); err != nil {
				return err
			}
		}
	}
	return d.Tags(tag).FlushTags(ctx, tag)
}
