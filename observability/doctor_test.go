package observability

import (
	"strings"
	"testing"

	"github.com/donnigundala/dg-tagcache/drivers/redis/doctor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDoctorCollector(t *testing.T) {
	collector := NewDoctorCollector("myapp", "cache")
	collector.Observe(doctor.Report{
		Results: []doctor.Result{
			{Name: "a"},
			{Name: "b", Err: assertError("boom")},
			{Name: "c"},
		},
	})

	reg := prometheus.NewPedanticRegistry()
	err := reg.Register(collector)
	assert.NoError(t, err)

	metrics, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, metrics)

	expected := `
		# HELP myapp_cache_doctor_checks_failed Number of functional-doctor checks that failed in the last sweep
		# TYPE myapp_cache_doctor_checks_failed gauge
		myapp_cache_doctor_checks_failed 1
	`
	err = testutil.CollectAndCompare(collector, strings.NewReader(expected), "myapp_cache_doctor_checks_failed")
	assert.NoError(t, err)
}

type assertError string

func (e assertError) Error() string { return string(e) }
