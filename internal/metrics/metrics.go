// Package metrics records run-level measurements of validation runs
// behind a pluggable Backend. The default backend discards everything,
// so callers never need to check whether metrics are configured.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names shared by the backends.
const (
	StepTotal     = "prechecker_step_total"
	StepDuration  = "prechecker_step_duration_seconds"
	RowsTotal     = "prechecker_rows_total"
	FailuresTotal = "prechecker_failures_total"
	BatchesTotal  = "prechecker_batches_total"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b. Passing nil keeps the current backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() { backend = nopBackend{} }

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one pipeline step (schema, read, validate, report) and
// its duration, labelled by outcome.
func RecordStep(table, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"table": table, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds n validated rows for table.
func RecordRows(table string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{"table": table})
}

// RecordFailures adds n failures of the given reason tag for table.
func RecordFailures(table, reason string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(FailuresTotal, float64(n), Labels{"table": table, "reason": reason})
}

// RecordBatches adds n concurrently validated batches.
func RecordBatches(table string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(n), Labels{"table": table})
}
