package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donnigundala/dg-tagcache/drivers/redis/doctor"
)

// DoctorCollector exports the outcome of the most recent functional-doctor
// sweep (§10.3: "pruner's and doctor's counters"). Like PrunerCollector, it
// reports the last Observe()'d report rather than a running total.
type DoctorCollector struct {
	checksTotal  *prometheus.Desc
	checksFailed *prometheus.Desc

	last doctor.Report
}

// NewDoctorCollector creates a new DoctorCollector. Call Observe after each
// doctor.Doctor.Run to update the gauges it exports.
func NewDoctorCollector(namespace, subsystem string) *DoctorCollector {
	return &DoctorCollector{
		checksTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "doctor_checks_total"),
			"Total number of functional-doctor checks run in the last sweep",
			nil, nil,
		),
		checksFailed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "doctor_checks_failed"),
			"Number of functional-doctor checks that failed in the last sweep",
			nil, nil,
		),
	}
}

// Observe records a completed Doctor.Run report for the next Collect.
func (c *DoctorCollector) Observe(report doctor.Report) {
	c.last = report
}

// Describe implements prometheus.Collector.
func (c *DoctorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.checksTotal
	ch <- c.checksFailed
}

// Collect implements prometheus.Collector.
func (c *DoctorCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.checksTotal, prometheus.GaugeValue, float64(len(c.last.Results)))
	ch <- prometheus.MustNewConstMetric(c.checksFailed, prometheus.GaugeValue, float64(len(c.last.Failures())))
}
