package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/pkg/rec"
)

// columnsFor picks the columns to render: an explicit attribute subset if
// given, otherwise the union of attribute names across the records in
// first-seen order. Mixed schemas are fine; a record without a column
// renders an empty cell.
func columnsFor(records []rec.Record, attrs []string) []string {
	if len(attrs) > 0 {
		return attrs
	}
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Schema() == nil {
			continue
		}
		for _, a := range r.Schema().Attrs() {
			if !seen[a.Name] {
				seen[a.Name] = true
				cols = append(cols, a.Name)
			}
		}
	}
	return cols
}

// cellValue resolves one attribute for rendering. Full resolution applies
// schema defaults; stored reads only what the record carries. Attributes
// outside the record's schema render as absent.
func cellValue(r rec.Record, attr string, full bool) rec.Value {
	var v rec.Value
	var err error
	if full {
		v, err = r.Get(attr)
	} else {
		v, err = r.Stored(attr)
	}
	if err != nil {
		return rec.Absent()
	}
	return v
}

// recordRows materializes records into positional cell rows for cols.
func recordRows(records []rec.Record, cols []string, full bool) [][]rec.Value {
	rows := make([][]rec.Value, 0, len(records))
	for _, r := range records {
		row := make([]rec.Value, len(cols))
		for i, col := range cols {
			row[i] = cellValue(r, col, full)
		}
		rows = append(rows, row)
	}
	return rows
}

// rowMaps converts cell rows into JSON-ready maps. Absent cells become
// null and nested values take their native Go shapes.
func rowMaps(cols []string, rows [][]rec.Value) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, cells := range rows {
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			m[col] = rec.ToGo(cells[i])
		}
		out = append(out, m)
	}
	return out
}

func renderRows(w io.Writer, format string, cols []string, rows [][]rec.Value) error {
	switch format {
	case "json":
		return renderRowsJSON(w, cols, rows)
	case "csv":
		return renderRowsCSV(w, cols, rows)
	case "md", "markdown":
		return renderRowsMarkdown(w, cols, rows)
	default:
		return renderRowsTable(w, cols, rows)
	}
}

func renderRowsTable(w io.Writer, cols []string, rows [][]rec.Value) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, cells := range rows {
		row := make(table.Row, len(cols))
		for i, v := range cells {
			row[i] = formatCell(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderRowsJSON(w io.Writer, cols []string, rows [][]rec.Value) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rowMaps(cols, rows))
}

func renderRowsCSV(w io.Writer, cols []string, rows [][]rec.Value) error {
	// Header
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	// Rows
	for _, cells := range rows {
		values := make([]string, len(cols))
		for i, v := range cells {
			values[i] = escapeCSV(formatCell(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderRowsMarkdown(w io.Writer, cols []string, rows [][]rec.Value) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	// Separator
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for _, cells := range rows {
		values := make([]string, len(cols))
		for i, v := range cells {
			values[i] = formatCell(v)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// renderValues renders a single projected attribute column.
func renderValues(w io.Writer, format, attr string, values []rec.Value) error {
	if format == "json" {
		out := make([]any, 0, len(values))
		for _, v := range values {
			out = append(out, rec.ToGo(v))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rows := make([][]rec.Value, len(values))
	for i, v := range values {
		rows[i] = []rec.Value{v}
	}
	return renderRows(w, format, []string{attr}, rows)
}

// renderGroups renders grouped records. Tables and markdown get one
// heading per group; JSON nests each group under its key. CSV flattens,
// since group structure does not survive a flat sheet.
func renderGroups(w io.Writer, format, attr string, cols []string, groups [][]rec.Record, full bool) error {
	switch format {
	case "json":
		out := make([]map[string]any, 0, len(groups))
		for _, g := range groups {
			out = append(out, map[string]any{
				"key":     rec.ToGo(groupKey(g, attr)),
				"records": rowMaps(cols, recordRows(g, cols, full)),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "csv":
		all := make([]rec.Record, 0)
		for _, g := range groups {
			all = append(all, g...)
		}
		return renderRowsCSV(w, cols, recordRows(all, cols, full))
	case "md", "markdown":
		for i, g := range groups {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "## %s = %s\n\n", attr, formatCell(groupKey(g, attr)))
			if err := renderRowsMarkdown(w, cols, recordRows(g, cols, full)); err != nil {
				return err
			}
		}
		return nil
	default:
		for i, g := range groups {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "%s = %s\n", attr, formatCell(groupKey(g, attr)))
			if err := renderRowsTable(w, cols, recordRows(g, cols, full)); err != nil {
				return err
			}
		}
		return nil
	}
}

// groupKey resolves the grouping attribute on a group's first record.
func groupKey(group []rec.Record, attr string) rec.Value {
	if len(group) == 0 {
		return rec.Absent()
	}
	v, err := group[0].Get(attr)
	if err != nil {
		return rec.Absent()
	}
	return v
}

// attrInfo represents one schema attribute for structured output.
type attrInfo struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Default  any    `json:"default,omitempty"`
}

type schemaOutput struct {
	Name       string     `json:"name"`
	Path       string     `json:"path,omitempty"`
	Attributes []attrInfo `json:"attributes"`
}

func schemaInfo(set *loader.Set) schemaOutput {
	attrs := set.Schema.Attrs()
	out := schemaOutput{
		Name:       set.Schema.Name(),
		Path:       set.Path,
		Attributes: make([]attrInfo, 0, len(attrs)),
	}
	for i, a := range attrs {
		out.Attributes = append(out.Attributes, attrInfo{
			// The schema itself holds position 0.
			Position: i + 1,
			Name:     a.Name,
			Type:     a.Type.String(),
			Default:  rec.ToGo(a.Default),
		})
	}
	return out
}

// renderSchema renders one schema as a position/attribute/type/default grid.
func renderSchema(w io.Writer, format string, schema *rec.Schema) error {
	cols := []string{"position", "attribute", "type", "default"}
	attrs := schema.Attrs()
	rows := make([][]rec.Value, 0, len(attrs))
	for i, a := range attrs {
		rows = append(rows, []rec.Value{
			rec.Num(float64(i + 1)),
			rec.Str(a.Name),
			rec.Str(a.Type.String()),
			a.Default,
		})
	}
	return renderRows(w, format, cols, rows)
}

// formatCell renders one table cell; absent values render empty.
func formatCell(v rec.Value) string {
	if v.IsAbsent() {
		return ""
	}
	return v.String()
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
