package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// PrunerCollector exports lazy-pruning sweep counters to Prometheus. It
// reports the cumulative counters from the most recent sweep, not a running
// total across sweeps — callers that want a running total should add their
// own counter on top, incremented each time Prune runs.
type PrunerCollector struct {
	driver *redisdriver.Driver

	tagsScanned        *prometheus.Desc
	entriesRemoved     *prometheus.Desc
	emptySetsDeleted   *prometheus.Desc
	hashesScanned      *prometheus.Desc
	fieldsChecked      *prometheus.Desc
	orphansRemoved     *prometheus.Desc
	emptyHashesDeleted *prometheus.Desc
	expiredTagsRemoved *prometheus.Desc

	last redisdriver.PruneCounters
}

// NewPrunerCollector creates a new PrunerCollector over driver. The
// collector does not run sweeps itself; call Observe after each
// driver.Prune(ctx) call to update the counters it exports.
func NewPrunerCollector(driver *redisdriver.Driver, namespace, subsystem string) *PrunerCollector {
	return &PrunerCollector{
		driver: driver,
		tagsScanned: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_tags_scanned_total"),
			"Total number of intersection-mode tags scanned by the last prune sweep",
			nil, nil,
		),
		entriesRemoved: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_entries_removed_total"),
			"Total number of expired entry keys removed from tag sets by the last prune sweep",
			nil, nil,
		),
		emptySetsDeleted: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_empty_sets_deleted_total"),
			"Total number of empty intersection-mode tag sets deleted by the last prune sweep",
			nil, nil,
		),
		hashesScanned: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_hashes_scanned_total"),
			"Total number of union-mode tag hashes scanned by the last prune sweep",
			nil, nil,
		),
		fieldsChecked: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_fields_checked_total"),
			"Total number of union-mode tag hash fields checked by the last prune sweep",
			nil, nil,
		),
		orphansRemoved: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_orphans_removed_total"),
			"Total number of orphaned tag hash fields removed by the last prune sweep",
			nil, nil,
		),
		emptyHashesDeleted: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_empty_hashes_deleted_total"),
			"Total number of empty union-mode tag hashes deleted by the last prune sweep",
			nil, nil,
		),
		expiredTagsRemoved: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "prune_expired_tags_removed_total"),
			"Total number of tags removed from the registry by the last prune sweep",
			nil, nil,
		),
	}
}

// Observe records the counters from a completed sweep for the next Collect.
func (c *PrunerCollector) Observe(counters redisdriver.PruneCounters) {
	c.last = counters
}

// Describe implements prometheus.Collector.
func (c *PrunerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tagsScanned
	ch <- c.entriesRemoved
	ch <- c.emptySetsDeleted
	ch <- c.hashesScanned
	ch <- c.fieldsChecked
	ch <- c.orphansRemoved
	ch <- c.emptyHashesDeleted
	ch <- c.expiredTagsRemoved
}

// Collect implements prometheus.Collector.
func (c *PrunerCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.tagsScanned, prometheus.CounterValue, float64(c.last.TagsScanned))
	ch <- prometheus.MustNewConstMetric(c.entriesRemoved, prometheus.CounterValue, float64(c.last.EntriesRemoved))
	ch <- prometheus.MustNewConstMetric(c.emptySetsDeleted, prometheus.CounterValue, float64(c.last.EmptySetsDeleted))
	ch <- prometheus.MustNewConstMetric(c.hashesScanned, prometheus.CounterValue, float64(c.last.HashesScanned))
	ch <- prometheus.MustNewConstMetric(c.fieldsChecked, prometheus.CounterValue, float64(c.last.FieldsChecked))
	ch <- prometheus.MustNewConstMetric(c.orphansRemoved, prometheus.CounterValue, float64(c.last.OrphansRemoved))
	ch <- prometheus.MustNewConstMetric(c.emptyHashesDeleted, prometheus.CounterValue, float64(c.last.EmptyHashesDeleted))
	ch <- prometheus.MustNewConstMetric(c.expiredTagsRemoved, prometheus.CounterValue, float64(c.last.ExpiredTagsRemoved))
}
