// Package doctor is the functional-assertion and scenario harness named in
// spec item 9: a mode-aware suite that drives a live redis.Driver through
// its public Store/TaggedStore surface and checks the invariants of §3.2
// and the testable properties of §8 end to end, rather than by introspecting
// Redis internals. Every check is black-box: it only calls exported driver
// methods, the same surface any application using this module would call.
package doctor

import (
	"context"

	redisdriver "github.com/donnigundala/dg-tagcache/drivers/redis"
)

// Check is a single functional assertion.
type Check struct {
	Name string
	Run  func(ctx context.Context, d *redisdriver.Driver) error
}

// Result is the outcome of running one Check.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the check's assertion held.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Report is the outcome of a full Doctor.Run.
type Report struct {
	Mode    redisdriver.Mode
	Results []Result
}

// OK reports whether every check in the report passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Failures returns only the results of checks that did not pass.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Doctor runs the functional assertion suite against a live driver.
type Doctor struct {
	driver *redisdriver.Driver
}

// New builds a Doctor bound to a driver. The driver's configured Mode
// decides which mode-specific checks run.
func New(driver *redisdriver.Driver) *Doctor {
	return &Doctor{driver: driver}
}

// Run executes every applicable check and returns a report. A failing check
// never aborts the sweep — the rest still run and are counted, the same
// best-effort rule the pruner applies to individual tag structures (§4.7).
func (doc *Doctor) Run(ctx context.Context) Report {
	report := Report{Mode: doc.driver.Mode()}

	checks := make([]Check, 0, len(universalChecks)+len(allModeChecks)+len(anyModeChecks))
	checks = append(checks, universalChecks...)
	if doc.driver.Mode() == redisdriver.ModeAny {
		checks = append(checks, anyModeChecks...)
	} else {
		checks = append(checks, allModeChecks...)
	}

	for _, c := range checks {
		err := c.Run(ctx, doc.driver)
		report.Results = append(report.Results, Result{Name: c.Name, Err: err})
	}
	return report
}
