package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaprec/pkg/rec"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Where   []string
	Defined string
	Indexes []int
	SortBy  string
	GroupBy string
	Values  string
	Attrs   []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Select, sort, and group records",
		Long: `Run a query over a recordset document.

Filters apply in a fixed order: --where predicates (ANDed), --defined,
--indexes, then --sort-by. The result renders as rows, as groups with
--group-by, or as a single projected column with --values.

Predicates match records that explicitly store the attribute; a schema
default never satisfies --where or --defined. Projections and rendered
cells resolve through the full chain, so defaults do appear in output.`,
		Example: `  # Records where estr is "bbb" and cstr is "echo"
  leaprec query fixtures.yaml --where estr=bbb --where cstr=echo

  # Records that define aint, sorted by it
  leaprec query fixtures.yaml --defined aint --sort-by aint

  # Pick rows 0, 2 and 4
  leaprec query fixtures.yaml --indexes 0,2,4

  # One group per distinct estr value
  leaprec query fixtures.yaml --group-by estr

  # Project a single attribute as JSON
  leaprec query fixtures.yaml --values cstr --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "Attribute=value predicate (repeatable, ANDed)")
	cmd.Flags().StringVar(&opts.Defined, "defined", "", "Keep records whose attribute has a stored value")
	cmd.Flags().IntSliceVar(&opts.Indexes, "indexes", nil, "Comma-separated record positions to pick")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "Stable-sort records by an attribute")
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "Group records by an attribute")
	cmd.Flags().StringVar(&opts.Values, "values", "", "Project a single attribute instead of rows")
	cmd.Flags().StringSliceVar(&opts.Attrs, "attrs", nil, "Comma-separated attribute subset to render")

	return cmd
}

func runQuery(cmd *cobra.Command, path string, opts *QueryOptions) error {
	if opts.GroupBy != "" && opts.Values != "" {
		return fmt.Errorf("cannot combine --group-by with --values")
	}

	cc := NewCommandContextWithoutStore(cmd)
	r := cc.Renderer

	sets, err := cc.LoadSets(cmd.Context(), path)
	if err != nil {
		return err
	}

	records, err := applyQuery(sets[0].Records, opts)
	if err != nil {
		return err
	}

	return renderQueryResult(r.Writer(), string(r.EffectiveMode()), opts, records)
}

// applyQuery runs the filter pipeline: where, defined, indexes, sort.
func applyQuery(records []rec.Record, opts *QueryOptions) ([]rec.Record, error) {
	if len(opts.Where) > 0 {
		conds, err := parseConds(opts.Where)
		if err != nil {
			return nil, err
		}
		records = rec.SelectWhere(records, conds...)
	}
	if opts.Defined != "" {
		records = rec.SelectDefined(records, opts.Defined)
	}
	if len(opts.Indexes) > 0 {
		for _, i := range opts.Indexes {
			if i < 0 || i >= len(records) {
				return nil, fmt.Errorf("index %d out of range (have %d records)", i, len(records))
			}
		}
		records = rec.SelectIndexes(records, opts.Indexes)
	}
	if opts.SortBy != "" {
		records = rec.SortBy(records, opts.SortBy)
	}
	return records, nil
}

// renderQueryResult renders the pipeline output as rows, groups, or a
// projected column.
func renderQueryResult(w io.Writer, format string, opts *QueryOptions, records []rec.Record) error {
	if opts.Values != "" {
		return renderValues(w, format, opts.Values, rec.Values(records, opts.Values))
	}
	cols := columnsFor(records, opts.Attrs)
	if opts.GroupBy != "" {
		return renderGroups(w, format, opts.GroupBy, cols, rec.GroupBy(records, opts.GroupBy), true)
	}
	return renderRows(w, format, cols, recordRows(records, cols, true))
}

// parseConds converts name=value strings into query predicates.
func parseConds(pairs []string) ([]rec.Cond, error) {
	conds := make([]rec.Cond, 0, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid predicate %q (want attribute=value)", pair)
		}
		conds = append(conds, rec.Cond{Attr: name, Value: parseLiteral(raw)})
	}
	return conds, nil
}

// parseLiteral interprets a query literal: true/false and numbers take
// their typed forms; anything else is a string. Quoting forces a string
// ("10" stays textual) and the quotes are stripped.
func parseLiteral(s string) rec.Value {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return rec.Str(s[1 : len(s)-1])
		}
	}
	switch s {
	case "true":
		return rec.Bool(true)
	case "false":
		return rec.Bool(false)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return rec.Num(n)
	}
	return rec.Str(s)
}
