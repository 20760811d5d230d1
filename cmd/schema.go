package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taitai9847/prechecker/internal/catalog"
	"github.com/taitai9847/prechecker/internal/reporter"
	"github.com/taitai9847/prechecker/internal/schema"
)

// schemaFlags selects where the table definition comes from.
type schemaFlags struct {
	ddl   string
	db    string
	table string
}

func (f *schemaFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ddl, "ddl", "", "file containing the CREATE TABLE statement")
	fs.StringVar(&f.db, "db", "", "database connection (sqlite:PATH, postgres://, mysql://, sqlserver://)")
	fs.StringVar(&f.table, "table", "", "table to read from --db")
}

func (f *schemaFlags) load(ctx context.Context) (*schema.Schema, error) {
	switch {
	case f.ddl != "" && f.db != "":
		return nil, errors.New("use either --ddl or --db, not both")
	case f.ddl != "":
		return schema.ParseFile(f.ddl)
	case f.db != "":
		if f.table == "" {
			return nil, errors.New("--table is required with --db")
		}
		return catalog.Load(ctx, f.db, f.table)
	}
	return nil, errors.New("--ddl or --db is required")
}

func newSchemaCmd(a *app) *cobra.Command {
	var src schemaFlags
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the columns extracted from a table definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := src.load(cmd.Context())
			if err != nil {
				return fatal(err)
			}
			reporter.Schema(a.stdout, s)
			return nil
		},
	}
	src.register(cmd.Flags())
	return cmd
}
