// Package metrics records operational metrics of conversion runs behind a
// small, backend-agnostic interface.
//
// A global backend defaults to a no-op implementation, so the Record helpers
// are always safe to call. Concrete systems live in subpackages (prompush for
// a Prometheus Pushgateway, datadog for DogStatsD) and are installed with
// SetBackend.
package metrics

import "time"

// Metric names.
const (
	StepTotal       = "dplace2cldf_step_total"
	StepDuration    = "dplace2cldf_step_duration_seconds"
	RowsTotal       = "dplace2cldf_rows_total"
	DatasetsTotal   = "dplace2cldf_datasets_total"
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusValidated = "validated"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a conversion step (read, convert,
// write, validate, export) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds n written rows for the given CLDF table.
func RecordRows(job, table string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{"job": job, "table": table})
}

// RecordDatasets counts one dataset outcome, e.g. StatusValidated or
// StatusFailure.
func RecordDatasets(job, status string) {
	backend.IncCounter(DatasetsTotal, 1, Labels{"job": job, "status": status})
}
