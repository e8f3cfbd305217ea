package commands

import (
	"encoding/json"

	"github.com/leapstack-labs/leaprec/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>...",
		Short: "Show the schema of recordset documents",
		Long: `Display the schema declared by one or more recordset documents: each
attribute's position, name, declared type, and default value.

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: markdown (agent-friendly)

Use --format to override: auto, text, markdown, json, csv`,
		Example: `  # Show a schema
  leaprec schema axles.yaml

  # Several files at once
  leaprec schema axles.yaml wheels.yaml

  # As JSON
  leaprec schema axles.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args)
		},
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	cc := NewCommandContextWithoutStore(cmd)
	r := cc.Renderer

	sets, err := cc.LoadSets(cmd.Context(), args...)
	if err != nil {
		return err
	}

	format := string(r.EffectiveMode())
	if format == "json" {
		out := make([]schemaOutput, 0, len(sets))
		for _, set := range sets {
			out = append(out, schemaInfo(set))
		}
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, set := range sets {
		if i > 0 {
			r.Println("")
		}
		if format == "markdown" {
			r.Println(output.FormatHeader(1, set.Name))
			r.Println(output.FormatKeyValue("File", set.Path))
			r.Println("")
		} else if format != "csv" {
			r.Header(1, set.Name)
			r.Muted(set.Path)
		}
		if err := renderSchema(r.Writer(), format, set.Schema); err != nil {
			return err
		}
	}
	return nil
}
