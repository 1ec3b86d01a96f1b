package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	cache "github.com/donnigundala/dg-tagcache"
	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// allModeChecks only run against a driver configured for mode "all"
// (intersection semantics).
var allModeChecks = []Check{
	{Name: "I1/S3 namespace scoping", Run: checkNamespaceScoping},
	{Name: "I5/P7 flush requires the full tag set", Run: checkIntersectionFlushRequiresFullSet},
	{Name: "I2/I7/S4 stale reference cleanup", Run: checkStaleReferenceCleanup},
}

// checkNamespaceScoping is S3: tags(["a","b"]).put("x","1",60) is visible
// reading back through the same tag set, but not through a strict subset —
// the namespaced key depends on the exact, canonical tag set (I1).
func checkNamespaceScoping(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("x")
	ab := d.Tags("doctor-a", "doctor-b")
	defer ab.FlushTags(ctx, "doctor-a", "doctor-b")

	if err := ab.Put(ctx, key, "1", time.Minute); err != nil {
		return err
	}

	val, err := ab.Get(ctx, key)
	if err != nil {
		return err
	}
	if val != "1" {
		return fmt.Errorf("same tag set: got %v, want %q", val, "1")
	}

	_, err = d.Tags("doctor-a").Get(ctx, key)
	if !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("subset tag set: got err=%v, want ErrKeyNotFound", err)
	}
	return nil
}

// checkIntersectionFlushRequiresFullSet is I5/P7, taken literally (see
// DESIGN.md): FlushTags(T) targets the namespace keyed by T itself, via
// sha1(T), not a predicate over which tags an entry happens to carry. An
// entry written under a strictly larger tag set lives at a different
// namespace id and survives a flush of any strict subset of its tags;
// naming its exact tag set is what removes it.
func checkIntersectionFlushRequiresFullSet(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("scoped")
	tagged := d.Tags("doctor-one", "doctor-two")
	defer tagged.FlushTags(ctx, "doctor-one", "doctor-two")

	if err := tagged.Put(ctx, key, "v", time.Minute); err != nil {
		return err
	}

	// An unrelated tag must not touch it.
	if err := d.Tags("doctor-unrelated").FlushTags(ctx, "doctor-unrelated"); err != nil {
		return err
	}
	if _, err := tagged.Get(ctx, key); err != nil {
		return fmt.Errorf("flushing an unrelated tag removed the entry: %w", err)
	}

	// A strict subset of its own tags must not be enough either.
	if err := d.Tags("doctor-one").FlushTags(ctx, "doctor-one"); err != nil {
		return err
	}
	if _, err := tagged.Get(ctx, key); err != nil {
		return fmt.Errorf("flushing a strict subset of the entry's tag set removed it: %w", err)
	}

	// Naming its exact tag set removes it.
	if err := d.Tags("doctor-one", "doctor-two").FlushTags(ctx, "doctor-one", "doctor-two"); err != nil {
		return err
	}
	if _, err := tagged.Get(ctx, key); !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("flushing the entry's exact tag set left it readable: err=%v", err)
	}
	return nil
}

// checkStaleReferenceCleanup is S4 plus I2/I7: a tagged entry that expires
// naturally leaves a stale (but present) ZSET reference until a Prune sweep
// removes it — prune must account for it, and a second sweep must find the
// structure already clean (steady state, P9(i)).
func checkStaleReferenceCleanup(ctx context.Context, d *redisdriver.Driver) error {
	key := scratchKey("k")
	tag := fmt.Sprintf("doctor-t-%s", key)
	tagged := d.Tags(tag)

	if err := tagged.Put(ctx, key, "v", time.Second); err != nil {
		return err
	}

	time.Sleep(1200 * time.Millisecond)

	if _, err := tagged.Get(ctx, key); !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("expired tagged entry still readable: err=%v", err)
	}

	before, err := d.Prune(ctx)
	if err != nil {
		return err
	}
	if before.EntriesRemoved == 0 {
		return fmt.Errorf("prune removed no stale entries for a freshly expired tag (tags_scanned=%d)", before.TagsScanned)
	}

	after, err := d.Prune(ctx)
	if err != nil {
		return err
	}
	if after.EntriesRemoved != 0 || after.EmptySetsDeleted != 0 {
		return fmt.Errorf("second sweep after cleanup was not a no-op: %+v", after)
	}
	return nil
}
