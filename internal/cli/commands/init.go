package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprec/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new LeapRec project",
		Long: `Initialize a new LeapRec project with a configuration file and a
starter recordset document.

This creates:
  - leaprec.yaml configuration file
  - recordsets/ directory with a starter document

Use --example to scaffold several documents showing both attribute
forms, typed defaults, and the YAML and JSON flavors.`,
		Example: `  # Initialize in the current directory
  leaprec init

  # Initialize with example documents
  leaprec init --example

  # Initialize in a new directory
  leaprec init my-project --example

  # Overwrite an existing configuration
  leaprec init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cc := NewCommandContextWithoutStore(cmd)
			if example {
				return runInitExample(cc.Renderer, dir, force)
			}
			return runInit(cc.Renderer, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Scaffold example recordset documents")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("LeapRec project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit recordsets/axles.yaml or add documents of your own")
	r.Println("  2. Run 'leaprec schema recordsets/axles.yaml' to inspect the schema")
	r.Println("  3. Run 'leaprec records recordsets/axles.yaml' to list records")
	r.Println("  4. Run 'leaprec shell recordsets/axles.yaml' for an interactive session")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Recordsets")
	for _, f := range groups["recordsets"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("LeapRec project initialized with example documents!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  leaprec records recordsets/axles.yaml            List records")
	r.Println("  leaprec query recordsets/axles.yaml -w material=alloy")
	r.Println("  leaprec store save recordsets/axles.yaml         Persist to the store")
	r.Println("  leaprec shell recordsets/axles.yaml              Interactive session")

	return nil
}

// prepareInitDir creates the target directory and refuses to clobber an
// existing configuration unless forced.
func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "leaprec.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leaprec.yaml already exists. Use --force to overwrite")
	}
	return nil
}
