package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leaprec/internal/cli/output"
	"github.com/leapstack-labs/leaprec/internal/state"
	"github.com/leapstack-labs/leaprec/pkg/rec"
)

// NewStoreCommand creates the store command group.
func NewStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the recordset store",
		Long: `Persist recordsets in the local store and read them back.

The store is a SQLite database. Its location comes from --store, the
LEAPREC_STORE_PATH environment variable, or store_path in leaprec.yaml.`,
	}

	cmd.AddCommand(newStoreSaveCommand())
	cmd.AddCommand(newStoreListCommand())
	cmd.AddCommand(newStoreShowCommand())
	cmd.AddCommand(newStoreDeleteCommand())

	return cmd
}

func newStoreSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>...",
		Short: "Persist recordset documents in the store",
		Long: `Load one or more recordset documents and save each under its set
name. Saving a name that already exists replaces the stored copy.`,
		Example: `  leaprec store save axles.yaml
  leaprec store save axles.yaml wheels.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreSave(cmd, args)
		},
	}
}

func runStoreSave(cmd *cobra.Command, paths []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer

	sets, err := cc.LoadSets(ctx, paths...)
	if err != nil {
		return err
	}

	for _, set := range sets {
		id, err := cc.Store.SaveSet(ctx, set)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", set.Name, err)
		}
		r.StatusLine(set.Name, "success", fmt.Sprintf("(%d records, id %s)", len(set.Records), id))
	}

	if len(sets) > 1 {
		r.Success(fmt.Sprintf("saved %d recordsets", len(sets)))
	}
	return nil
}

func newStoreListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recordsets in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStoreList(cmd)
		},
	}
}

func runStoreList(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	infos, err := cc.Store.ListSets(cmd.Context())
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeText:
		if len(infos) == 0 {
			r.Muted("store is empty")
			return nil
		}
		r.Header(1, "Recordsets")
		for i, info := range infos {
			detail := fmt.Sprintf("%d attrs, %d records, updated %s",
				info.Attrs, info.Records, info.UpdatedAt.Format("2006-01-02 15:04"))
			r.SetLine(i+1, info.Name, detail)
		}
		return nil
	default:
		return renderSetInfos(r.Writer(), string(r.EffectiveMode()), infos)
	}
}

// renderSetInfos renders store summaries through the shared row pipeline
// so markdown and csv come out the same shape as record listings.
func renderSetInfos(w io.Writer, format string, infos []state.SetInfo) error {
	cols := []string{"name", "attrs", "records", "updated", "id"}
	rows := make([][]rec.Value, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []rec.Value{
			rec.Str(info.Name),
			rec.Num(float64(info.Attrs)),
			rec.Num(float64(info.Records)),
			rec.Str(info.UpdatedAt.Format("2006-01-02 15:04")),
			rec.Str(info.ID),
		})
	}
	return renderRows(w, format, cols, rows)
}

func newStoreShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show a stored recordset's schema and records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreShow(cmd, args[0])
		},
	}
}

// setOutput is the JSON shape of store show: the schema description plus
// the resolved records.
type setOutput struct {
	schemaOutput
	Records []map[string]any `json:"records"`
}

func runStoreShow(cmd *cobra.Command, nameOrID string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	set, err := cc.Store.GetSet(cmd.Context(), nameOrID)
	if err != nil {
		return err
	}

	format := string(r.EffectiveMode())
	cols := columnsFor(set.Records, nil)
	rows := recordRows(set.Records, cols, true)

	if format == "json" {
		return r.JSON(setOutput{
			schemaOutput: schemaInfo(set),
			Records:      rowMaps(cols, rows),
		})
	}

	r.Header(1, set.Name)

	titleCaser := cases.Title(language.English)
	details := []struct{ key, value string }{
		{"attributes", fmt.Sprintf("%d", set.Schema.Len())},
		{"records", fmt.Sprintf("%d", len(set.Records))},
		{"source", set.Path},
	}
	for _, d := range details {
		if d.value == "" {
			continue
		}
		r.Println(output.FormatKeyValue(titleCaser.String(d.key), d.value))
	}
	r.Println("")

	if err := renderSchema(r.Writer(), format, set.Schema); err != nil {
		return err
	}

	r.Println("")
	r.Header(2, "Records")
	return renderRows(r.Writer(), format, cols, rows)
}

func newStoreDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a recordset from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreDelete(cmd, args[0])
		},
	}
}

func runStoreDelete(cmd *cobra.Command, nameOrID string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cc.Store.DeleteSet(cmd.Context(), nameOrID); err != nil {
		return err
	}

	cc.Renderer.Success(fmt.Sprintf("deleted %s", nameOrID))
	return nil
}
