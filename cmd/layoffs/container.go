package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"layoffs/internal/config"
	"layoffs/internal/datasource"
	"layoffs/internal/layoff"
	"layoffs/internal/metrics"
	"layoffs/internal/metrics/datadog"
	"layoffs/internal/metrics/prompush"
	csvparser "layoffs/internal/parser/csv"
	"layoffs/internal/report"
	"layoffs/internal/storage"
	"layoffs/internal/transformer"
	"layoffs/pkg/records"
)

const (
	// errSamples is how many distinct messages an errAgg keeps for the log.
	errSamples = 5
	// reportRows caps the per-dimension tables of the text report.
	reportRows = 10
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = storage.New
	openSourceFn    = openSource
	newRunID        = uuid.NewString
	createReportFn  = func(path string) (io.WriteCloser, error) { return os.Create(path) }
)

// stats holds the record counts of one run. The pipeline is single-threaded,
// so plain integers suffice.
type stats struct {
	loaded            int64
	duplicates        int64
	dateErrors        int64
	intErrors         int64
	backfilled        int64
	droppedIncomplete int64
	canonical         int64
	invalid           int64
	stored            int64
	batches           int64

	// finalized is set once the chain has produced canonical events.
	finalized bool
}

// runner carries one run's configuration and counters through its stages.
type runner struct {
	p       config.Pipeline
	run     metrics.Run
	verbose bool
	stats   stats
}

func newRunner(p config.Pipeline, verbose bool) *runner {
	job := p.Job
	if job == "" {
		job = "layoffs"
	}
	return &runner{p: p, run: metrics.Run{Job: job, ID: newRunID()}, verbose: verbose}
}

// runPipeline executes load, clean, finalize and store, then renders the
// reports when enabled. Nothing is written when any stage before storage
// fails.
func runPipeline(ctx context.Context, p config.Pipeline, out io.Writer, verbose bool) error {
	r := newRunner(p, verbose)
	log.Printf("pipeline: run_id=%s job=%s source=%s storage=%s table=%s",
		r.run.ID, r.run.Job, p.Source.File.Path, p.Storage.Kind, p.Storage.DB.Table)

	unlock, err := acquireLock(p.Runtime.LockFile)
	if err != nil {
		return err
	}
	defer unlock()

	flush := setupMetrics(p.Runtime, r.run)
	defer flush()

	start := time.Now()
	events, err := r.clean(ctx)
	if err == nil {
		err = r.store(ctx, events)
	}
	r.recordStats()
	r.logSummary()
	if err != nil {
		return err
	}

	if p.Report.Enabled {
		if err := r.report(ctx, events, out); err != nil {
			return err
		}
	}
	log.Printf("pipeline: completed in %s", time.Since(start).Truncate(time.Millisecond))
	return nil
}

// reportOnly cleans the extract in memory and renders the reports.
func reportOnly(ctx context.Context, p config.Pipeline, out io.Writer, verbose bool) error {
	r := newRunner(p, verbose)
	events, err := r.clean(ctx)
	if err != nil {
		return err
	}
	r.logSummary()
	return r.report(ctx, events, out)
}

func openSource(ctx context.Context, s config.Source) (io.ReadCloser, error) {
	src, err := datasource.New(s)
	if err != nil {
		return nil, err
	}
	return src.Open(ctx)
}

// load reads the whole extract. Any error aborts with no records.
func (r *runner) load(ctx context.Context) ([]records.Record, error) {
	rc, err := openSourceFn(ctx, r.p.Source)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	if r.p.Parser.Kind != "csv" {
		return nil, fmt.Errorf("unsupported parser.kind=%s", r.p.Parser.Kind)
	}
	return csvparser.ReadRecords(ctx, rc, layoff.Columns, csvparser.OptionsFrom(r.p.Parser.Options))
}

// clean runs the loader, the configured transform chain and the finalizer.
// Unparseable values and validation failures are logged and counted; they
// never abort the run.
func (r *runner) clean(ctx context.Context) ([]layoff.Event, error) {
	start := time.Now()
	recs, err := r.load(ctx)
	r.run.RecordStep("load", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	r.stats.loaded = int64(len(recs))
	log.Printf("loader: records=%d took=%s", len(recs), time.Since(start).Truncate(time.Millisecond))

	types := coerceTypesFromPipeline(r.p)
	kinds := stepKinds(r.p)
	coerceAgg := newErrAgg(errSamples)

	steps, err := transformer.Build(r.p.Transform, transformer.Hooks{
		CoerceError: func(field, value string, err error) {
			if types[field] == "date" {
				r.stats.dateErrors++
			} else {
				r.stats.intErrors++
			}
			coerceAgg.add(fmt.Sprintf("%s=%q: %v", field, value, err))
		},
		Filled:  func(records.Record, any) { r.stats.backfilled++ },
		Dropped: func(records.Record) { r.stats.droppedIncomplete++ },
	})
	if err != nil {
		return nil, fmt.Errorf("build transforms: %w", err)
	}

	out := steps.Apply(recs, func(step string, in, n int, d time.Duration) {
		if kinds[step] == "dedupe" {
			r.stats.duplicates += int64(in - n)
		}
		r.run.RecordStep(step, nil, d)
		if r.verbose {
			log.Printf("transform: step=%s in=%d out=%d took=%s", step, in, n, d)
		}
	})
	coerceAgg.log("coerce errors")

	start = time.Now()
	events, err := layoff.FromRecords(out)
	r.run.RecordStep("finalize", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	r.stats.canonical = int64(len(events))
	r.stats.finalized = true

	v, err := layoff.NewValidator()
	if err != nil {
		return nil, err
	}
	invalidAgg := newErrAgg(errSamples)
	for i, e := range events {
		if err := v.Validate(e); err != nil {
			r.stats.invalid++
			invalidAgg.add(fmt.Sprintf("event %d: %v", i, err))
		}
	}
	invalidAgg.log("validation warnings")
	return events, nil
}

// store writes events to the configured table. Storage kind "none" (or
// empty) skips the sink.
func (r *runner) store(ctx context.Context, events []layoff.Event) error {
	s := r.p.Storage
	if s.Kind == "" || s.Kind == "none" {
		log.Printf("storage: disabled")
		return nil
	}
	start := time.Now()
	err := r.write(ctx, events)
	r.run.RecordStep("store", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func (r *runner) write(ctx context.Context, events []layoff.Event) error {
	s := r.p.Storage
	repo, err := newRepositoryFn(ctx, storage.Config{Kind: s.Kind, DSN: s.DB.DSN, Table: s.DB.Table})
	if err != nil {
		return fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	if s.DB.AutoCreateTable {
		td, err := storage.TableDef(s.Kind, s.DB.Table, layoff.Columns, layoff.Types)
		if err != nil {
			return err
		}
		if err := storage.EnsureTable(ctx, s.Kind, repo, td); err != nil {
			return err
		}
		log.Printf("storage: table ensured: %s", s.DB.Table)
	}
	if s.DB.Truncate {
		if err := storage.Truncate(ctx, s.Kind, repo, s.DB.Table); err != nil {
			return err
		}
	}

	rows := make([][]any, len(events))
	for i, e := range events {
		rows[i] = e.Values()
	}
	n, err := storage.WriteBatches(ctx, layoff.Columns, rows, r.p.Runtime.BatchSize, repo.CopyFrom,
		func(int64) { r.stats.batches++ })
	r.stats.stored = n
	return err
}

// report builds every report and renders it to out, or to report.output
// when set.
func (r *runner) report(ctx context.Context, events []layoff.Event, out io.Writer) error {
	start := time.Now()
	set, err := report.Build(ctx, events, report.Options{TopN: r.p.Report.TopN})
	r.run.RecordStep("report", err, time.Since(start))
	if err != nil {
		return err
	}

	path := r.p.Report.Output
	if path == "" {
		return r.render(out, set)
	}
	f, err := createReportFn(path)
	if err != nil {
		return fmt.Errorf("report output: %w", err)
	}
	if err := r.render(f, set); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report output: close %s: %w", path, err)
	}
	return nil
}

func (r *runner) render(w io.Writer, set report.Set) error {
	if r.p.Report.Format == "json" {
		return report.WriteJSON(w, set)
	}
	return report.WriteText(w, set, reportRows)
}

func (r *runner) recordStats() {
	s := r.stats
	for kind, n := range map[string]int64{
		metrics.KindLoaded:            s.loaded,
		metrics.KindDuplicates:        s.duplicates,
		metrics.KindDateErrors:        s.dateErrors,
		metrics.KindIntErrors:         s.intErrors,
		metrics.KindBackfilled:        s.backfilled,
		metrics.KindDroppedIncomplete: s.droppedIncomplete,
		metrics.KindInvalid:           s.invalid,
		metrics.KindStored:            s.stored,
	} {
		r.run.RecordRecords(kind, n)
	}
	r.run.RecordBatches(s.batches)
}

// logSummary prints final statistics for the run.
//
// Records are conserved across the chain:
//
//	loaded == duplicates + dropped_incomplete + canonical
func (r *runner) logSummary() {
	s := r.stats
	log.Printf(
		"summary: run_id=%s loaded=%d duplicates=%d date_errors=%d int_errors=%d backfilled=%d dropped_incomplete=%d canonical=%d invalid=%d stored=%d batches=%d",
		r.run.ID, s.loaded, s.duplicates, s.dateErrors, s.intErrors, s.backfilled,
		s.droppedIncomplete, s.canonical, s.invalid, s.stored, s.batches,
	)
	if !s.finalized {
		return
	}
	if accounted := s.duplicates + s.droppedIncomplete + s.canonical; accounted != s.loaded {
		log.Printf("WARNING: record accounting mismatch: loaded=%d accounted=%d (delta=%d)",
			s.loaded, accounted, s.loaded-accounted)
	}
}

// acquireLock takes an exclusive, non-blocking file lock on path. An empty
// path disables locking.
func acquireLock(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: another run is in progress", path)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("lock: unlock %s: %v", path, err)
		}
	}, nil
}

// setupMetrics installs the configured backend and returns its flush
// function. A backend that cannot be created is logged and metrics stay
// disabled; metrics never fail a run.
func setupMetrics(rt config.RuntimeConfig, run metrics.Run) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch rt.MetricsBackend {
	case "", "none":
		return func() {}
	case "pushgateway":
		var pb *prompush.Backend
		if pb, err = prompush.NewBackend(prompush.Config{GatewayURL: rt.PushgatewayURL, Job: run.Job, RunID: run.ID}); err == nil {
			b = pb
		}
	case "datadog":
		addr := rt.DogStatsDAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		var db *datadog.Backend
		if db, err = datadog.NewBackend(datadog.Config{Addr: addr}); err == nil {
			b = db
		}
	default:
		err = fmt.Errorf("unknown backend %q", rt.MetricsBackend)
	}
	if err != nil {
		log.Printf("metrics: %v; metrics disabled", err)
		return func() {}
	}

	log.Printf("metrics: backend=%s job=%s run_id=%s", rt.MetricsBackend, run.Job, run.ID)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// coerceTypesFromPipeline extracts a union of "types" maps from the transform list.
func coerceTypesFromPipeline(p config.Pipeline) map[string]string {
	out := map[string]string{}
	for _, t := range p.Transform {
		if t.Kind == "coerce" {
			for k, v := range t.Options.StringMap("types") {
				out[k] = v
			}
		}
	}
	return out
}

// stepKinds maps each step name, as transformer.Build assigns it, to its kind.
func stepKinds(p config.Pipeline) map[string]string {
	out := make(map[string]string, len(p.Transform))
	for _, t := range p.Transform {
		out[t.Options.String("name", t.Kind)] = t.Kind
	}
	return out
}

// errAgg counts messages and keeps the first few distinct ones.
type errAgg struct {
	mu      sync.Mutex
	limit   int
	count   int
	first   []string
	buckets map[string]int
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit, buckets: make(map[string]int)}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	if a.buckets[msg] == 0 && len(a.first) < a.limit {
		a.first = append(a.first, msg)
	}
	a.buckets[msg]++
	a.count++
	a.mu.Unlock()
}

func (a *errAgg) log(what string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d (%d distinct, showing first %d)", what, a.count, len(a.buckets), len(a.first))
	for i, s := range a.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}
