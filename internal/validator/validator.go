package validator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taitai9847/prechecker/internal/logging"
	"github.com/taitai9847/prechecker/internal/metrics"
	"github.com/taitai9847/prechecker/internal/schema"
)

// Row is one data row. A column missing from Values is absent, which is
// different from present and empty.
type Row struct {
	Number int
	Values map[string]string
}

// RowSource yields rows strictly in order. Next returns io.EOF after the
// last row; any other error aborts the run.
type RowSource interface {
	Header() []string
	Next() (Row, error)
}

const defaultBatchSize = 1000

// Validator applies the type rules of one schema to row sources.
type Validator struct {
	schema     *schema.Schema
	specs      []schema.TypeSpec
	exemptAuto bool
	workers    int
	batchSize  int
	log        *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithExemptAutoGenerated skips the presence and not-null checks for
// auto-generated columns whose value is empty or absent.
func WithExemptAutoGenerated(exempt bool) Option {
	return func(v *Validator) { v.exemptAuto = exempt }
}

// WithWorkers validates row batches on n goroutines. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(v *Validator) { v.workers = n }
}

// WithBatchSize sets the number of rows per batch in worker mode.
func WithBatchSize(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.batchSize = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// New returns a Validator for s. Type specs are resolved once here.
func New(s *schema.Schema, opts ...Option) *Validator {
	v := &Validator{
		schema:    s,
		specs:     make([]schema.TypeSpec, len(s.Columns)),
		workers:   1,
		batchSize: defaultBatchSize,
		log:       logging.NewNop(),
	}
	for i, c := range s.Columns {
		v.specs[i] = c.Spec()
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run validates every row of src. It returns a fatal error, and no report,
// when the source fails or ctx is cancelled.
func (v *Validator) Run(ctx context.Context, src RowSource) (rep *Report, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(v.schema.Table, "validate", err, time.Since(start))
	}()

	rep = &Report{Table: v.schema.Table}
	v.reconcile(rep, src.Header())

	if v.workers > 1 {
		err = v.runBatches(ctx, src, rep)
	} else {
		err = v.runSequential(ctx, src, rep)
	}
	if err != nil {
		return nil, err
	}

	rep.Digest = digest(rep.Failures)
	metrics.RecordRows(v.schema.Table, rep.Rows)
	for reason, n := range rep.CountByReason() {
		metrics.RecordFailures(v.schema.Table, reason.String(), n)
	}
	v.log.Debug("validation finished",
		"table", v.schema.Table,
		"rows", rep.Rows,
		"failures", len(rep.Failures),
		"elapsed", time.Since(start))
	return rep, nil
}

// reconcile compares header fields with schema columns. Mismatches are
// diagnostics only.
func (v *Validator) reconcile(rep *Report, header []string) {
	inHeader := make(map[string]bool, len(header))
	for _, h := range header {
		inHeader[h] = true
	}
	for i, c := range v.schema.Columns {
		if !inHeader[c.Name] {
			rep.MissingColumns = append(rep.MissingColumns, c.Name)
		}
		if v.specs[i].Family == schema.FamilyUnknown {
			rep.UnknownTypes = append(rep.UnknownTypes, c.Name)
			v.log.Info("column type not recognized, values accepted without checks",
				"column", c.Name, "type", c.Type)
		}
	}
	for _, h := range header {
		if _, ok := v.schema.Column(h); !ok {
			rep.ExtraColumns = append(rep.ExtraColumns, h)
		}
	}
	if len(rep.MissingColumns) > 0 {
		v.log.Warn("schema columns missing from data", "table", v.schema.Table, "columns", rep.MissingColumns)
	}
	if len(rep.ExtraColumns) > 0 {
		v.log.Warn("data columns not in schema", "table", v.schema.Table, "columns", rep.ExtraColumns)
	}
}

func (v *Validator) runSequential(ctx context.Context, src RowSource, rep *Report) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		rep.Failures = v.validateRow(rep.Failures, row)
		rep.Rows++
	}
}

// runBatches reads fixed-size batches in order and validates them
// concurrently. Results are concatenated by batch index, so the output is
// identical to the sequential run.
func (v *Validator) runBatches(ctx context.Context, src RowSource, rep *Report) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	var results []*[]Failure
	batch := make([]Row, 0, v.batchSize)
	dispatch := func() {
		if len(batch) == 0 {
			return
		}
		rows := batch
		out := new([]Failure)
		results = append(results, out)
		g.Go(func() error {
			var fs []Failure
			for _, r := range rows {
				fs = v.validateRow(fs, r)
			}
			*out = fs
			return nil
		})
		batch = make([]Row, 0, v.batchSize)
	}

	var readErr error
	for {
		if err := gctx.Err(); err != nil {
			readErr = err
			break
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		rep.Rows++
		batch = append(batch, row)
		if len(batch) == v.batchSize {
			dispatch()
		}
	}
	if readErr == nil {
		dispatch()
	}
	if err := g.Wait(); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		return readErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, fs := range results {
		rep.Failures = append(rep.Failures, *fs...)
	}
	metrics.RecordBatches(v.schema.Table, len(results))
	return nil
}

// validateRow appends the failures of one row, in schema column order.
func (v *Validator) validateRow(dst []Failure, row Row) []Failure {
	for i, col := range v.schema.Columns {
		value, present := row.Values[col.Name]
		if v.exemptAuto && col.AutoGenerated && value == "" {
			continue
		}
		if !present {
			if !col.Nullable {
				dst = append(dst, newFailure(row.Number, col.Name, "", Result{Reason: ReasonColumnMissing}))
			}
			continue
		}
		if r := CheckSpec(value, v.specs[i], col.Nullable); r.Reason.Rejects() {
			dst = append(dst, newFailure(row.Number, col.Name, value, r))
		}
	}
	return dst
}
