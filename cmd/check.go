package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taitai9847/prechecker/internal/config"
	"github.com/taitai9847/prechecker/internal/metrics"
	"github.com/taitai9847/prechecker/internal/metrics/prompush"
	"github.com/taitai9847/prechecker/internal/reporter"
	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/source"
	"github.com/taitai9847/prechecker/internal/validator"
	"github.com/taitai9847/prechecker/internal/watch"
)

type checkOptions struct {
	schema schemaFlags
	data   string
	watch  bool
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a CSV or XLSX file against a table definition",
		Example: `  prechecker check --ddl users.sql --csv users.csv
  prechecker check --db sqlite:./app.db --table users --csv users.csv --encoding shift_jis
  prechecker check --ddl users.sql --csv users.csv --workers 4 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyCheckFlags(cmd, &a.cfg); err != nil {
				return fatal(err)
			}
			if err := a.checkConfig(); err != nil {
				return err
			}
			return a.runCheck(cmd.Context(), opts)
		},
	}

	opts.schema.register(cmd.Flags())
	fs := cmd.Flags()
	fs.StringVar(&opts.data, "csv", "", "data file to validate (.csv, .tsv, .xlsx)")
	fs.BoolVar(&opts.watch, "watch", false, "validate again whenever the data or DDL file changes")
	fs.String("output", config.Default().Output, "failure report file, written only when failures exist")
	fs.String("encoding", config.Default().Encoding, "data file encoding (utf-8, shift_jis, euc-jp, ...)")
	fs.String("delimiter", config.Default().Delimiter, `field delimiter; "tab" for TSV`)
	fs.String("sheet", "", "XLSX sheet name (default: first sheet)")
	fs.Int("max-display", config.Default().MaxDisplay, "failures listed on the console")
	fs.Int("workers", config.Default().Workers, "validate row batches in parallel")
	fs.Int("batch-size", config.Default().BatchSize, "rows per batch when workers > 1")
	fs.Bool("exempt-auto", false, "allow empty auto-generated columns (AUTO_INCREMENT, SERIAL, IDENTITY)")
	fs.String("pushgateway-url", "", "push run metrics to this Prometheus Pushgateway")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// applyCheckFlags copies the flags the user set onto cfg, so flags win
// over the file and the environment.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	var err error
	set := func(name string, fn func() error) {
		if err == nil && fs.Changed(name) {
			err = fn()
		}
	}
	set("output", func() (e error) { cfg.Output, e = fs.GetString("output"); return })
	set("encoding", func() (e error) { cfg.Encoding, e = fs.GetString("encoding"); return })
	set("delimiter", func() (e error) { cfg.Delimiter, e = fs.GetString("delimiter"); return })
	set("sheet", func() (e error) { cfg.Sheet, e = fs.GetString("sheet"); return })
	set("max-display", func() (e error) { cfg.MaxDisplay, e = fs.GetInt("max-display"); return })
	set("workers", func() (e error) { cfg.Workers, e = fs.GetInt("workers"); return })
	set("batch-size", func() (e error) { cfg.BatchSize, e = fs.GetInt("batch-size"); return })
	set("exempt-auto", func() (e error) { cfg.ExemptAutoGenerated, e = fs.GetBool("exempt-auto"); return })
	set("pushgateway-url", func() (e error) { cfg.Metrics.PushgatewayURL, e = fs.GetString("pushgateway-url"); return })
	return err
}

func (a *app) runCheck(ctx context.Context, opts checkOptions) error {
	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		b, err := prompush.NewBackend(a.cfg.Metrics.Job, url)
		if err != nil {
			return fatal(err)
		}
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				a.log.Warn("metrics push failed", "url", url, "error", err)
			}
			metrics.Reset()
		}()
	}

	if !opts.watch {
		passed, err := a.checkOnce(ctx, opts)
		if err != nil {
			return fatal(err)
		}
		if !passed {
			return errFailuresFound
		}
		return nil
	}

	files := []string{opts.data}
	if opts.schema.ddl != "" {
		files = append(files, opts.schema.ddl)
	}
	w, err := watch.New(files, watch.DefaultDebounce, a.log)
	if err != nil {
		return fatal(err)
	}
	if _, err := a.checkOnce(ctx, opts); err != nil {
		reporter.Err(err.Error())
	}
	reporter.Info(fmt.Sprintf("Watching %d file(s) for changes. Press Ctrl+C to stop.", len(files)))
	err = w.Run(ctx, func(ctx context.Context) error {
		reporter.Rule()
		_, err := a.checkOnce(ctx, opts)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fatal(err)
	}
	return nil
}

// checkOnce runs one full validation pass and prints its outcome. It
// reports whether the data passed; the error is fatal.
func (a *app) checkOnce(ctx context.Context, opts checkOptions) (bool, error) {
	s, err := opts.schema.load(ctx)
	if err != nil {
		return false, err
	}
	if a.verbose {
		reporter.Schema(a.stdout, s)
		fmt.Fprintln(a.stdout)
	}

	rep, err := a.validate(ctx, s, opts.data)
	if err != nil {
		return false, err
	}

	reporter.Summary(a.stdout, rep, a.cfg.MaxDisplay)
	if len(rep.MissingColumns) > 0 {
		reporter.Warn(fmt.Sprintf("columns missing from data: %v", rep.MissingColumns))
	}
	if len(rep.ExtraColumns) > 0 {
		reporter.Warn(fmt.Sprintf("columns not in table: %v", rep.ExtraColumns))
	}
	if rep.Passed() {
		reporter.Ok(fmt.Sprintf("%s: %d rows passed", opts.data, rep.Rows))
		return true, nil
	}

	fmt.Fprintln(a.stdout)
	reporter.Breakdown(a.stdout, rep)
	if err := reporter.WriteFile(a.cfg.Output, rep.Failures); err != nil {
		return false, err
	}
	reporter.Err(fmt.Sprintf("%d failures; report written to %s", len(rep.Failures), a.cfg.Output))
	return false, nil
}

// validate opens the data file and runs the validator over it.
func (a *app) validate(ctx context.Context, s *schema.Schema, path string) (*validator.Report, error) {
	src, err := source.Open(path, source.Options{
		Encoding:  a.cfg.Encoding,
		Delimiter: a.cfg.DelimiterRune(),
		Sheet:     a.cfg.Sheet,
	})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	v := validator.New(s,
		validator.WithExemptAutoGenerated(a.cfg.ExemptAutoGenerated),
		validator.WithWorkers(a.cfg.Workers),
		validator.WithBatchSize(a.cfg.BatchSize),
		validator.WithLogger(a.log),
	)
	return v.Run(ctx, src)
}
