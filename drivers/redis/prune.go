package redis

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// PruneCounters summarizes a single pruning sweep. The cmd/prune-stale-tags
// CLI renders this directly; the Prometheus collector in observability
// exports the same fields as counters.
type PruneCounters struct {
	TagsScanned         int64
	EntriesRemoved      int64
	EmptySetsDeleted    int64
	HashesScanned       int64
	FieldsChecked       int64
	OrphansRemoved      int64
	EmptyHashesDeleted  int64
	ExpiredTagsRemoved  int64
}

// Pruner is implemented by both tagging modes' ops types.
type Pruner interface {
	Prune(ctx context.Context) (PruneCounters, error)
}

var (
	_ Pruner = (*intersectionOps)(nil)
	_ Pruner = (*unionOps)(nil)
)

// Prune runs the lazy-pruning sweep appropriate to the driver's configured
// mode, reconciling orphaned ZSET members (mode "all") or hash fields/empty
// tag hashes (mode "any") that lazy per-read/write cleanup never reaches
// because nothing ever read or wrote them again after they went stale.
func (d *Driver) Prune(ctx context.Context) (PruneCounters, error) {
	if d.mode == ModeAny {
		return (&unionOps{d: d}).Prune(ctx)
	}
	return (&intersectionOps{d: d}).Prune(ctx)
}

// Prune walks every tag ZSET directly (mode "all" keeps no registry — see
// DESIGN.md) and evicts members scored inside [0, now]: those are entries
// whose absolute expiry has passed but whose key Redis itself already
// reclaimed, so nothing else will ever clean up the stale reference (I2).
// A forever member (entryForeverScore, -1) always sorts outside that range
// and is never touched. A tag ZSET left empty afterward is dropped.
func (o *intersectionOps) Prune(ctx context.Context) (PruneCounters, error) {
	var c PruneCounters

	now := strconv.FormatInt(time.Now().Unix(), 10)

	it := o.d.sc.newSafeScan(ctx, "tag:*:entries", 100)
	for it.Next() {
		c.TagsScanned++
		tagKey := it.RawKey()

		removed, err := o.d.client.ZRemRangeByScore(ctx, tagKey, "0", now).Result()
		if err != nil {
			return c, err
		}
		c.EntriesRemoved += removed

		remaining, err := o.d.client.ZCard(ctx, tagKey).Result()
		if err != nil {
			return c, err
		}
		if remaining == 0 {
			if err := o.d.client.Del(ctx, tagKey).Err(); err != nil {
				return c, err
			}
			c.EmptySetsDeleted++
			c.ExpiredTagsRemoved++
		}
	}
	if it.Err() != nil {
		return c, it.Err()
	}

	return c, nil
}

// Prune walks every tag hash matching "_erc:tag:*:entries", drops fields
// whose entry key no longer exists, and drops the hash itself (plus its
// registry entry) once it is left with nothing in it.
func (o *unionOps) Prune(ctx context.Context) (PruneCounters, error) {
	var c PruneCounters

	it := o.d.sc.newSafeScan(ctx, "_erc:tag:*:entries", 100)
	for it.Next() {
		c.HashesScanned++
		rawHashKey := it.RawKey()
		tag := tagNameFromHashKey(it.Key())

		fields, err := o.hashFields(ctx, rawHashKey)
		if err != nil {
			return c, err
		}

		var toRemove []string
		for _, field := range fields {
			c.FieldsChecked++
			n, err := o.d.client.Exists(ctx, field).Result()
			if err != nil {
				return c, err
			}
			if n == 0 {
				toRemove = append(toRemove, field)
			}
		}
		if len(toRemove) > 0 {
			if err := o.d.client.HDel(ctx, rawHashKey, toRemove...).Err(); err != nil {
				return c, err
			}
			c.OrphansRemoved += int64(len(toRemove))
		}

		remaining, err := o.d.client.HLen(ctx, rawHashKey).Result()
		if err != nil {
			return c, err
		}
		if remaining == 0 {
			if err := o.d.client.Unlink(ctx, rawHashKey).Err(); err != nil {
				return c, err
			}
			if tag != "" {
				if err := o.d.client.ZRem(ctx, o.d.sc.registryKey(), tag).Err(); err != nil {
					return c, err
				}
			}
			c.EmptyHashesDeleted++
			c.ExpiredTagsRemoved++
		}
	}
	if it.Err() != nil {
		return c, it.Err()
	}

	return c, nil
}

// tagNameFromHashKey recovers the bare tag name from a stripped
// "_erc:tag:<name>:entries" key.
func tagNameFromHashKey(bareKey string) string {
	if !strings.HasPrefix(bareKey, "_erc:tag:") || !strings.HasSuffix(bareKey, ":entries") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(bareKey, "_erc:tag:"), ":entries")
}
