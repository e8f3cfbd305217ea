package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprec/internal/cli/output"
	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/pkg/rec"
)

// DumpOptions holds options for the dump command.
type DumpOptions struct {
	Index int
	Watch bool
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Render records in the line-oriented debug form",
		Long: `Render a recordset's records in the debug dump form: the schema name on
the first line, then one line per attribute with its position, declared
type, default, and resolved value. Nested records indent recursively.

With --watch the document is re-rendered whenever it changes on disk.`,
		Example: `  # Dump every record
  leaprec dump axles.yaml

  # Dump the third record only
  leaprec dump axles.yaml --index 2

  # Keep re-rendering on change
  leaprec dump axles.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Index, "index", -1, "Dump only the record at this position")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-render whenever the file changes")

	return cmd
}

func runDump(cmd *cobra.Command, path string, opts *DumpOptions) error {
	cc := NewCommandContextWithoutStore(cmd)

	if err := dumpFile(cc.Renderer, path, opts.Index); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watchDump(cmd.Context(), cc, path, opts.Index)
}

// dumpFile loads the document and writes the dump of the selected records.
func dumpFile(r *output.Renderer, path string, index int) error {
	set, err := loader.Load(path)
	if err != nil {
		return err
	}

	if index >= 0 {
		if index >= len(set.Records) {
			return fmt.Errorf("index %d out of range (have %d records)", index, len(set.Records))
		}
		r.Printf("%s", rec.Dump(set.Records[index]))
		return nil
	}

	for i, record := range set.Records {
		if i > 0 {
			r.Println("")
		}
		r.Printf("%s", rec.Dump(record))
	}
	return nil
}

// watchDump re-renders the document whenever it changes. Editors often
// replace files instead of writing in place, so the parent directory is
// watched and events are matched by name.
func watchDump(ctx context.Context, cc *CommandContext, path string, index int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	r := cc.Renderer
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))

	target := filepath.Base(path)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			// Debounce bursts of events from a single save
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				r.Println("")
				r.Muted(fmt.Sprintf("Change detected: %s", target))
				if err := dumpFile(r, path, index); err != nil {
					cc.Logger.Error("re-render failed", "path", path, "error", err)
					r.Error(fmt.Sprintf("re-render failed: %v", err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watcher error", "error", err)
		}
	}
}
