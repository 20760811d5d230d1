package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taitai9847/prechecker/internal/generator"
	"github.com/taitai9847/prechecker/internal/reporter"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		src      schemaFlags
		cfg      = generator.DefaultConfig()
		style    string
		out      string
		skipAuto bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic CSV data for a table, optionally with injected errors",
		Example: `  prechecker generate --ddl users.sql --rows 50000 --error-rate 0.01 --out users.csv
  prechecker generate --ddl users.sql --rows 20 --style edge-cases`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := generator.ParseStyle(style)
			if err != nil {
				return fatal(err)
			}
			cfg.Style = st
			cfg.SkipAuto = skipAuto

			s, err := src.load(cmd.Context())
			if err != nil {
				return fatal(err)
			}
			res, err := generator.New(cfg).Generate(s)
			if err != nil {
				return fatal(err)
			}

			a.log.Debug("generated rows", "table", res.TableName, "rows", len(res.Rows), "invalid", len(res.Invalid))
			if out == "" || out == "-" {
				if err := res.WriteCSV(a.stdout); err != nil {
					return fatal(err)
				}
				return nil
			}

			f, err := os.Create(out)
			if err != nil {
				return fatal(fmt.Errorf("create output: %w", err))
			}
			if err := res.WriteCSV(f); err != nil {
				f.Close()
				return fatal(fmt.Errorf("write %s: %w", out, err))
			}
			if err := f.Close(); err != nil {
				return fatal(err)
			}
			reporter.Ok(fmt.Sprintf("%s: %d rows (%d with injected errors)", out, len(res.Rows), len(res.Invalid)))
			return nil
		},
	}
	src.register(cmd.Flags())
	fs := cmd.Flags()
	fs.IntVarP(&cfg.Rows, "rows", "n", cfg.Rows, "number of data rows")
	fs.Float64Var(&cfg.ErrorRate, "error-rate", 0, "share of rows (0..1) that get one invalid value")
	fs.StringVar(&style, "style", string(generator.StyleRealistic), "realistic, minimal or edge-cases")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed; equal seeds give equal output")
	fs.StringVarP(&out, "out", "o", "", "output file (default stdout)")
	fs.BoolVar(&skipAuto, "skip-auto", false, "leave auto-generated columns out")
	return cmd
}
