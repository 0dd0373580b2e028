package cli

import (
	"github.com/koustreak/myschema/internal/coltype"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/introspect"
	"github.com/spf13/cobra"
)

func newInspectCmd(d *deps) *cobra.Command {
	var table, column, index string
	var names bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print tables, a table, a column or an index as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if column != "" && index != "" {
				return errs.New(errs.ErrKindInvalidInput, "--column and --index are mutually exclusive")
			}
			if (column != "" || index != "") && table == "" {
				return errs.New(errs.ErrKindInvalidInput, "--column and --index require --table")
			}

			s, err := loadSession(cmd, d)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, in, err := s.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			normalize := s.normalize(cmd)
			out := cmd.OutOrStdout()

			switch {
			case names:
				list, err := in.TableNames(ctx)
				if err != nil {
					return err
				}
				return writeJSON(out, list)
			case column != "":
				c, err := in.Column(ctx, table, column)
				if err != nil {
					return err
				}
				if normalize {
					coltype.Normalize(c.Type)
				}
				return writeJSON(out, c)
			case index != "":
				i, err := in.Index(ctx, table, index)
				if err != nil {
					return err
				}
				return writeJSON(out, i)
			case table != "":
				t, err := in.Table(ctx, table)
				if err != nil {
					return err
				}
				if normalize {
					introspect.NormalizeTable(t)
				}
				return writeJSON(out, t)
			default:
				tables, err := in.Tables(ctx)
				if err != nil {
					return err
				}
				if normalize {
					for _, t := range tables {
						introspect.NormalizeTable(t)
					}
				}
				return writeJSON(out, tables)
			}
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "inspect a single table")
	cmd.Flags().StringVar(&column, "column", "", "inspect a single column of --table")
	cmd.Flags().StringVar(&index, "index", "", "inspect a single index of --table")
	cmd.Flags().BoolVar(&names, "names", false, "list table names only")
	cmd.Flags().Bool("normalize", false, "quantize column types to canonical widths")

	return cmd
}
