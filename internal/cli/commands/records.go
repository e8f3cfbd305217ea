package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RecordsOptions holds options for the records command.
type RecordsOptions struct {
	Attrs   []string
	Resolve string
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand() *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:   "records <file>",
		Short: "Render the records of a recordset document",
		Long: `Render a recordset's rows, one column per attribute.

By default every attribute resolves through the full lookup chain, so
schema defaults fill cells the document left out. With --resolve stored
only values the rows actually carry are shown; everything else renders
empty.`,
		Example: `  # All records, defaults applied
  leaprec records axles.yaml

  # Only what the document stores
  leaprec records axles.yaml --resolve stored

  # A column subset, as CSV
  leaprec records axles.yaml --attrs diameter,length --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Attrs, "attrs", nil, "Comma-separated attribute subset to render")
	cmd.Flags().StringVar(&opts.Resolve, "resolve", "full", "Value resolution: full (apply defaults) or stored")

	return cmd
}

func runRecords(cmd *cobra.Command, path string, opts *RecordsOptions) error {
	if opts.Resolve != "full" && opts.Resolve != "stored" {
		return fmt.Errorf("invalid resolve mode %q (valid: full, stored)", opts.Resolve)
	}

	cc := NewCommandContextWithoutStore(cmd)
	r := cc.Renderer

	sets, err := cc.LoadSets(cmd.Context(), path)
	if err != nil {
		return err
	}
	set := sets[0]

	full := opts.Resolve == "full"
	cols := columnsFor(set.Records, opts.Attrs)
	rows := recordRows(set.Records, cols, full)

	return renderRows(r.Writer(), string(r.EffectiveMode()), cols, rows)
}
