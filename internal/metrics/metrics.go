// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a cleaning run.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// Record* helpers are always safe to call. Concrete metric systems live in
// subpackages (prompush, datadog) and are installed with SetBackend, the same
// way storage backends plug into storage.Repository.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal    = "layoffs_step_total"
	StepDuration = "layoffs_step_duration_seconds"
	RecordsTotal = "layoffs_records_total"
	BatchesTotal = "layoffs_batches_total"
)

// Record kinds counted per run.
const (
	KindLoaded            = "loaded"
	KindDuplicates        = "duplicates"
	KindDateErrors        = "date_errors"
	KindIntErrors         = "int_errors"
	KindBackfilled        = "backfilled"
	KindDroppedIncomplete = "dropped_incomplete"
	KindInvalid           = "invalid"
	KindStored            = "stored"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
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

// Run carries the labels shared by every metric of one pipeline run.
type Run struct {
	Job string
	ID  string
}

func (r Run) labels(extra ...string) Labels {
	l := Labels{"job": r.Job, "run_id": r.ID}
	for i := 0; i+1 < len(extra); i += 2 {
		l[extra[i]] = extra[i+1]
	}
	return l
}

// RecordStep measures latency and success/failure of one pipeline step.
func (r Run) RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := r.labels("step", step, "status", status)
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRecords increments the record counter for kind. Non-positive deltas
// are ignored.
func (r Run) RecordRecords(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), r.labels("kind", kind))
}

// RecordBatches increments the count of storage batches written.
func (r Run) RecordBatches(delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), r.labels())
}
