package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/taitai9847/prechecker/internal/logging"
	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/tui"
	"github.com/taitai9847/prechecker/internal/validator"
)

func newUICmd(a *app) *cobra.Command {
	var (
		src  schemaFlags
		data string
	)
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse validation results in an interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkConfig(); err != nil {
				return err
			}
			s, err := src.load(cmd.Context())
			if err != nil {
				return fatal(err)
			}

			// the alternate screen owns the terminal; keep log lines out of it
			a.log = logging.NewNop()
			err = tui.Run(cmd.Context(), tui.Config{
				Schema:   s,
				DataPath: data,
				Run: func(ctx context.Context) (*validator.Report, error) {
					return a.validateFresh(ctx, s, src, data)
				},
			})
			if err != nil {
				return fatal(err)
			}
			return nil
		},
	}
	src.register(cmd.Flags())
	cmd.Flags().StringVar(&data, "csv", "", "data file to validate (.csv, .tsv, .xlsx)")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

// validateFresh reloads a DDL file on every pass so that an edited table
// definition is picked up by a rerun. Database schemas are loaded once.
func (a *app) validateFresh(ctx context.Context, s *schema.Schema, src schemaFlags, data string) (*validator.Report, error) {
	if src.ddl != "" {
		fresh, err := src.load(ctx)
		if err != nil {
			return nil, err
		}
		s = fresh
	}
	return a.validate(ctx, s, data)
}
