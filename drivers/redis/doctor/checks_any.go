package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// anyModeChecks only run against a driver configured for mode "any" (union
// semantics). They all require HEXPIRE; if the backing server doesn't
// support it the Doctor caller is expected to have already probed for that
// and skipped the whole suite, the same way union_test.go does.
var anyModeChecks = []Check{
	{Name: "I4 tagged writes are not scoped", Run: checkUnionNonScoping},
	{Name: "I3/P8 tagged reads are unsupported", Run: checkUnionReadsUnsupported},
	{Name: "I5/P6/S2 flush on any shared tag", Run: checkUnionFlushAnyOverlap},
	{Name: "§4.5.4/I7 shared-tag flush leaves no orphan", Run: checkUnionFlushReconcilesSharedTag},
}

// checkUnionNonScoping is I4: in mode "any" the cache entry lives at the
// bare key, not a tag-namespaced one, so the plain untagged Get sees it too.
func checkUnionNonScoping(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("entry")
	tagged := d.Tags("doctor-any-a")
	defer tagged.FlushTags(ctx, "doctor-any-a")

	if err := tagged.Put(ctx, key, "X", time.Minute); err != nil {
		return err
	}

	val, err := d.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("plain Get of a tagged write failed: %w", err)
	}
	if val != "X" {
		return fmt.Errorf("got %v, want %q", val, "X")
	}
	return nil
}

// checkUnionReadsUnsupported is P8: reading through the tagged facade in
// mode "any" always fails with ErrUnsupportedOperation, since tags are
// write/flush-only metadata there (I3).
func checkUnionReadsUnsupported(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("entry")
	tagged := d.Tags("doctor-any-b")
	defer tagged.FlushTags(ctx, "doctor-any-b")

	if err := tagged.Put(ctx, key, "v", time.Minute); err != nil {
		return err
	}

	if _, err := tagged.Get(ctx, key); !errors.Is(err, cache.ErrUnsupportedOperation) {
		return fmt.Errorf("Get: got err=%v, want ErrUnsupportedOperation", err)
	}
	if _, err := tagged.Has(ctx, key); !errors.Is(err, cache.ErrUnsupportedOperation) {
		return fmt.Errorf("Has: got err=%v, want ErrUnsupportedOperation", err)
	}
	return nil
}

// checkUnionFlushAnyOverlap is S2/P6: put("p1","X",60) tagged
// ["posts","featured"]; flush(["featured"]) must make get("p1") absent,
// since union flush removes anything sharing at least one of the given
// tags.
func checkUnionFlushAnyOverlap(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("p1")
	tagged := d.Tags("doctor-posts", "doctor-featured")

	if err := tagged.Put(ctx, key, "X", time.Minute); err != nil {
		return err
	}

	if err := d.Tags("doctor-featured").FlushTags(ctx, "doctor-featured"); err != nil {
		return err
	}

	_, err := d.Get(ctx, key)
	if !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("got err=%v, want ErrKeyNotFound after flushing one of two shared tags", err)
	}
	return nil
}

// checkUnionFlushReconcilesSharedTag is §4.5.4 step 3 taken literally:
// tags(["a","b"]).put("k","v",60); flush(["a"]) reads k's reverse index and
// HDELs its field from every tag it references, not just "a" — so "b"'s
// hash is left with no trace of k, and a subsequent Prune sweep finds
// nothing left to reclaim (I7: no orphan reference survives a flush).
func checkUnionFlushReconcilesSharedTag(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("k")
	a := fmt.Sprintf("doctor-s5-a-%s", key)
	b := fmt.Sprintf("doctor-s5-b-%s", key)
	tagged := d.Tags(a, b)

	if err := tagged.Put(ctx, key, "v", time.Minute); err != nil {
		return err
	}

	if err := d.Tags(a).FlushTags(ctx, a); err != nil {
		return err
	}

	if _, err := d.Get(ctx, key); !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("got err=%v, want ErrKeyNotFound after flushing tag %q", err, a)
	}

	counters, err := d.Prune(ctx)
	if err != nil {
		return err
	}
	if counters.OrphansRemoved != 0 {
		return fmt.Errorf("flushing tag %q should have already reconciled tag %q's hash; prune still found %d orphan(s)", a, b, counters.OrphansRemoved)
	}
	return nil
}
