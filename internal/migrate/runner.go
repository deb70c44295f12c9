package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	applog "partpal/internal/log"
	"partpal/internal/metrics"
)

const DefaultBatchSize = 100

type RowStatus string

const (
	RowMigrated RowStatus = "migrated"
	RowFailed   RowStatus = "failed"
)

// WritePath records which target call stored the row.
type WritePath string

const (
	PathCreated WritePath = "created"
	PathUpdated WritePath = "updated"
)

// FieldError is a decode failure on one encoded field. The field was nulled
// and the row still migrated.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return fmt.Sprintf("decode %s: %v", e.Field, e.Err) }

type RowOutcome struct {
	ID           string
	Status       RowStatus
	Path         WritePath
	DecodeErrors []FieldError
	Err          error
}

type TableReport struct {
	Table     string
	Attempted int
	Migrated  int
	Rows      []RowOutcome
}

func (r TableReport) Failed() int { return r.Attempted - r.Migrated }

// FailedRows returns the outcomes that were not written.
func (r TableReport) FailedRows() []RowOutcome {
	var out []RowOutcome
	for _, o := range r.Rows {
		if o.Status == RowFailed {
			out = append(out, o)
		}
	}
	return out
}

type CountMismatch struct {
	Table  string
	Source int64
	Target int64
}

// CountError is a post-flight count that could not be taken. Store is
// "source" or "target".
type CountError struct {
	Table string
	Store string
	Err   error
}

type Report struct {
	RunID        string
	Tables       []TableReport
	FinalCounts  map[string]int64
	SourceCounts map[string]int64
	Mismatches   []CountMismatch
	CountErrors  []CountError
}

func (r *Report) Table(name string) (TableReport, bool) {
	for _, t := range r.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableReport{}, false
}

// Totals sums attempted and migrated rows over every table.
func (r *Report) Totals() (attempted, migrated int) {
	for _, t := range r.Tables {
		attempted += t.Attempted
		migrated += t.Migrated
	}
	return attempted, migrated
}

// Runner copies Tables from Source to Target. Tables run strictly in order;
// rows inside a batch may be written concurrently when Concurrency > 1.
type Runner struct {
	Source Store
	Target Store
	Tables []Table

	BatchSize   int
	Concurrency int

	// AllowNonEmptyTarget upserts into a target that already holds data
	// instead of refusing to start.
	AllowNonEmptyTarget bool
	// Verify counts every source table after the run and records mismatches.
	Verify bool

	RowTimeout  time.Duration
	ReadTimeout time.Duration
}

func NewRunner(source, target Store) *Runner {
	return &Runner{
		Source:      source,
		Target:      target,
		Tables:      DefaultTables,
		BatchSize:   DefaultBatchSize,
		Concurrency: 1,
	}
}

// Run executes the migration. Per-row failures are recorded in the report and
// never returned; connectivity, non-empty target, table read failures and
// cancellation are.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), FinalCounts: map[string]int64{}}
	fields := map[string]any{"run_id": rep.RunID, "tables": tableNames(r.tables())}
	applog.Info(nil, "migrate.start", fields)

	if err := r.preflight(ctx, rep.RunID); err != nil {
		applog.Error(nil, "migrate.preflight.fail", err, map[string]any{"run_id": rep.RunID})
		return rep, err
	}

	for _, t := range r.tables() {
		// Cancellation is honoured between tables only, never mid-row.
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		tr, err := r.migrateTable(ctx, t)
		if err != nil {
			applog.Error(nil, "migrate.table.abort", err, map[string]any{"run_id": rep.RunID, "table": t.Name})
			return rep, err
		}
		rep.Tables = append(rep.Tables, tr)
	}

	r.postflight(ctx, rep)
	attempted, migrated := rep.Totals()
	applog.Info(nil, "migrate.done", map[string]any{
		"run_id": rep.RunID, "attempted": attempted, "migrated": migrated,
		"failed": attempted - migrated, "final_counts": rep.FinalCounts,
	})
	return rep, nil
}

func (r *Runner) tables() []Table {
	if len(r.Tables) == 0 {
		return DefaultTables
	}
	return r.Tables
}

func (r *Runner) batchSize() int {
	if r.BatchSize < 1 {
		return DefaultBatchSize
	}
	return r.BatchSize
}

func (r *Runner) preflight(ctx context.Context, runID string) error {
	if err := r.Source.Ping(ctx); err != nil {
		return fmt.Errorf("%w: source: %v", ErrConnectivity, err)
	}
	if err := r.Target.Ping(ctx); err != nil {
		return fmt.Errorf("%w: target: %v", ErrConnectivity, err)
	}
	applog.Info(nil, "migrate.preflight.connected", map[string]any{"run_id": runID})

	probe := probeTable
	if _, ok := lookupTable(r.tables(), probe); !ok {
		probe = r.tables()[0].Name
	}
	n, err := r.Target.Count(ctx, probe)
	if err != nil {
		return fmt.Errorf("%w: target count %s: %v", ErrConnectivity, probe, err)
	}
	if n == 0 {
		return nil
	}
	if !r.AllowNonEmptyTarget {
		return fmt.Errorf("%w: %s has %d rows", ErrTargetNotEmpty, probe, n)
	}
	applog.Warn(nil, "migrate.preflight.target_not_empty", nil, map[string]any{
		"run_id": runID, "table": probe, "rows": n, "mode": "upsert",
	})
	return nil
}

func (r *Runner) migrateTable(ctx context.Context, t Table) (TableReport, error) {
	tr := TableReport{Table: t.Name}

	readCtx, cancel := withTimeout(ctx, r.ReadTimeout)
	rows, err := r.Source.FindMany(readCtx, t.Name)
	cancel()
	if err != nil {
		return tr, &TableReadError{Table: t.Name, Err: err}
	}
	if len(rows) == 0 {
		applog.Info(nil, "migrate.table.empty", map[string]any{"table": t.Name})
		return tr, nil
	}

	tr.Rows = make([]RowOutcome, len(rows))
	size := r.batchSize()
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		r.writeBatch(ctx, t, rows[start:end], tr.Rows[start:end])
		tr.Attempted = end
		tr.Migrated = countMigrated(tr.Rows[:end])
		applog.Info(nil, "migrate.table.batch", map[string]any{
			"table": t.Name, "batch": start/size + 1, "processed": end, "total": len(rows), "migrated": tr.Migrated,
		})
	}

	applog.Info(nil, "migrate.table.done", map[string]any{
		"table": t.Name, "attempted": tr.Attempted, "migrated": tr.Migrated, "failed": tr.Failed(),
	})
	return tr, nil
}

// writeBatch fills out[i] for rows[i]. Row failures are captured in the
// outcome, so one row can never cancel its siblings.
func (r *Runner) writeBatch(ctx context.Context, t Table, rows []Row, out []RowOutcome) {
	if r.Concurrency <= 1 {
		for i, row := range rows {
			out[i] = r.migrateRow(ctx, t, row)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(r.Concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			out[i] = r.migrateRow(ctx, t, row)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) migrateRow(ctx context.Context, t Table, src Row) RowOutcome {
	row, decodeErrs := decodeRow(t, src)
	o := RowOutcome{ID: row.ID(), DecodeErrors: decodeErrs}
	for _, fe := range decodeErrs {
		metrics.DecodeFailures.WithLabelValues(t.Name, fe.Field).Inc()
		applog.Warn(nil, "migrate.row.decode_fail", fe.Err, map[string]any{"table": t.Name, "id": o.ID, "field": fe.Field})
	}

	// A row that has started is finished even if the run is cancelled.
	rowCtx, cancel := withTimeout(context.WithoutCancel(ctx), r.RowTimeout)
	defer cancel()

	createErr := r.Target.Create(rowCtx, t.Name, row)
	if createErr == nil {
		o.Status, o.Path = RowMigrated, PathCreated
		metrics.MigratedRows.WithLabelValues(t.Name, string(PathCreated)).Inc()
		return o
	}
	// Usually a duplicate id from an earlier run: overwrite in place.
	updateErr := r.Target.Update(rowCtx, t.Name, o.ID, row)
	if updateErr == nil {
		o.Status, o.Path = RowMigrated, PathUpdated
		metrics.MigratedRows.WithLabelValues(t.Name, string(PathUpdated)).Inc()
		return o
	}

	o.Status = RowFailed
	o.Err = fmt.Errorf("create: %v; update: %w", createErr, updateErr)
	metrics.MigratedRows.WithLabelValues(t.Name, string(RowFailed)).Inc()
	applog.Error(nil, "migrate.row.fail", o.Err, map[string]any{"table": t.Name, "id": o.ID})
	return o
}

// decodeRow copies src and decodes the table's encoded fields. A field that
// fails to decode takes its Fallback; the row is never dropped for it.
func decodeRow(t Table, src Row) (Row, []FieldError) {
	row := make(Row, len(src))
	for k, v := range src {
		row[k] = v
	}
	var errs []FieldError
	for _, f := range t.Fields {
		v, ok := row[f.Name]
		if !ok {
			continue
		}
		dec, err := f.Codec.Decode(v)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Err: err})
			dec = f.Fallback
		}
		row[f.Name] = dec
	}
	return row, errs
}

// postflight only observes: a count that fails is recorded in the report and
// the table is left out of verification.
func (r *Runner) postflight(ctx context.Context, rep *Report) {
	for _, t := range r.tables() {
		n, err := r.Target.Count(ctx, t.Name)
		if err != nil {
			r.countFailed(rep, t.Name, "target", err)
			continue
		}
		rep.FinalCounts[t.Name] = n
	}
	if !r.Verify {
		return
	}
	rep.SourceCounts = map[string]int64{}
	for _, t := range r.tables() {
		n, err := r.Source.Count(ctx, t.Name)
		if err != nil {
			r.countFailed(rep, t.Name, "source", err)
			continue
		}
		rep.SourceCounts[t.Name] = n
		target, ok := rep.FinalCounts[t.Name]
		if !ok || n == target {
			continue
		}
		m := CountMismatch{Table: t.Name, Source: n, Target: target}
		rep.Mismatches = append(rep.Mismatches, m)
		applog.Warn(nil, "migrate.verify.mismatch", nil, map[string]any{
			"run_id": rep.RunID, "table": m.Table, "source": m.Source, "target": m.Target,
		})
	}
}

func (r *Runner) countFailed(rep *Report, table, store string, err error) {
	rep.CountErrors = append(rep.CountErrors, CountError{Table: table, Store: store, Err: err})
	applog.Warn(nil, "migrate.postflight.count_fail", err, map[string]any{
		"run_id": rep.RunID, "table": table, "store": store,
	})
}

func countMigrated(rows []RowOutcome) int {
	n := 0
	for _, o := range rows {
		if o.Status == RowMigrated {
			n++
		}
	}
	return n
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
