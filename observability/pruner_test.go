package observability

import (
	"strings"
	"testing"

	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrunerCollector(t *testing.T) {
	collector := NewPrunerCollector(nil, "myapp", "cache")
	collector.Observe(redisdriver.PruneCounters{
		TagsScanned:      7,
		EntriesRemoved:   3,
		EmptySetsDeleted: 1,
	})

	reg := prometheus.NewPedanticRegistry()
	err := reg.Register(collector)
	assert.NoError(t, err)

	metrics, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, metrics)

	expected := `
		# HELP myapp_cache_prune_tags_scanned_total Total number of intersection-mode tags scanned by the last prune sweep
		# TYPE myapp_cache_prune_tags_scanned_total counter
		myapp_cache_prune_tags_scanned_total 7
	`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "myapp_cache_prune_tags_scanned_total")
	assert.NoError(t, err)
}
