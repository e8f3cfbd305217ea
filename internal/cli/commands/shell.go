package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/internal/session"
)

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [file...]",
		Short: "Interactive shell for loading and querying recordsets",
		Long: `Start an interactive shell. Files named on the command line are loaded
up front; more can be loaded with .load or pulled from the store with
.open. Bare lines run queries against the current recordset using the
keyword form:

  [where attr=value ...] [defined attr] [sort attr] [group attr] [values attr]`,
		Example: `  # Start with two documents loaded
  leaprec shell axles.yaml wheels.yaml

  # Then, at the prompt:
  #   where estr=bbb cstr=echo
  #   defined aint sort aint
  #   group estr`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args)
		},
	}
}

// shell carries the state a prompt session mutates: the command streams,
// the shared command context, and the name of the current recordset.
type shell struct {
	cmd     *cobra.Command
	cc      *CommandContext
	current string
}

func runShell(cmd *cobra.Command, paths []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	s := &shell{cmd: cmd, cc: cc}

	if len(paths) > 0 {
		if err := s.loadFiles(ctx, paths...); err != nil {
			return err
		}
	}

	historyFile := cc.Cfg.HistoryPath
	if historyFile != "" {
		_ = os.MkdirAll(filepath.Dir(historyFile), 0o750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leaprec> ",
		HistoryFile:     historyFile,
		AutoComplete:    newShellCompleter(cc.Registry),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cc.Renderer
	r.Printf("LeapRec shell (store: %s)\n", cc.Cfg.StorePath)
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := s.handleCommand(ctx, line); quit {
				break
			}
			continue
		}

		if err := s.executeQuery(line); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// loadFiles loads documents into the registry. The most recently loaded
// set becomes current.
func (s *shell) loadFiles(ctx context.Context, paths ...string) error {
	sets, err := s.cc.LoadSets(ctx, paths...)
	if err != nil {
		return err
	}
	for _, set := range sets {
		s.cc.Renderer.Success(fmt.Sprintf("loaded %s (%d records)", set.Name, len(set.Records)))
	}
	s.current = sets[len(sets)-1].Name
	return nil
}

// currentSet resolves the recordset bare-line queries run against.
func (s *shell) currentSet() (*loader.Set, error) {
	if s.current == "" {
		return nil, fmt.Errorf("no recordset loaded (use .load <path>)")
	}
	set, ok := s.cc.Registry.Get(s.current)
	if !ok {
		return nil, fmt.Errorf("no recordset named %q", s.current)
	}
	return set, nil
}

// resolveSet picks the set named after a dot-command, falling back to the
// current one.
func (s *shell) resolveSet(parts []string) (*loader.Set, error) {
	if len(parts) > 1 {
		set, ok := s.cc.Registry.Get(parts[1])
		if !ok {
			return nil, fmt.Errorf("no recordset named %q", parts[1])
		}
		return set, nil
	}
	return s.currentSet()
}

func (s *shell) executeQuery(line string) error {
	set, err := s.currentSet()
	if err != nil {
		return err
	}
	opts, err := parseShellQuery(strings.Fields(line))
	if err != nil {
		return err
	}
	records, err := applyQuery(set.Records, opts)
	if err != nil {
		return err
	}

	r := s.cc.Renderer
	return renderQueryResult(r.Writer(), string(r.EffectiveMode()), opts, records)
}

// handleCommand runs a dot-command. It reports whether the shell should
// exit.
func (s *shell) handleCommand(ctx context.Context, line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.cmd.OutOrStdout())

	case ".load":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "Usage: .load <file>")
			break
		}
		if err := s.loadFiles(ctx, parts[1:]...); err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".sets":
		names := s.cc.Registry.Names()
		if len(names) == 0 {
			r.Muted("no recordsets loaded")
			break
		}
		for _, name := range names {
			set, ok := s.cc.Registry.Get(name)
			if !ok {
				continue
			}
			marker := " "
			if name == s.current {
				marker = "*"
			}
			r.Printf("%s %s (%d records)\n", marker, name, len(set.Records))
		}

	case ".use":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "Usage: .use <name>")
			break
		}
		if _, ok := s.cc.Registry.Get(parts[1]); !ok {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: no recordset named %q\n", parts[1])
			break
		}
		s.current = parts[1]

	case ".schema":
		set, err := s.resolveSet(parts)
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		r.Header(1, set.Name)
		if err := renderSchema(r.Writer(), string(r.EffectiveMode()), set.Schema); err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".save":
		set, err := s.resolveSet(parts)
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		id, err := s.cc.Store.SaveSet(ctx, set)
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		r.Success(fmt.Sprintf("saved %s (%s)", set.Name, id))

	case ".store":
		infos, err := s.cc.Store.ListSets(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		if len(infos) == 0 {
			r.Muted("store is empty")
			break
		}
		for i, info := range infos {
			r.SetLine(i+1, info.Name, fmt.Sprintf("%d attrs, %d records", info.Attrs, info.Records))
		}

	case ".open":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "Usage: .open <name|id>")
			break
		}
		set, err := s.cc.Store.GetSet(ctx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
			break
		}
		s.cc.Registry.Register(set)
		s.current = set.Name
		r.Success(fmt.Sprintf("opened %s (%d records)", set.Name, len(set.Records)))

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}

	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .load <file>      Load a recordset document and make it current
  .sets             List loaded recordsets (current marked with *)
  .use <name>       Switch the current recordset
  .schema [name]    Show the schema of a recordset
  .save [name]      Persist a recordset to the store
  .store            List recordsets in the store
  .open <name|id>   Load a recordset from the store
  .clear            Clear the screen
  .quit / .exit     Exit the shell

Queries run against the current recordset:
  where attr=value ...   Keep records whose stored value matches
  defined attr           Keep records that store the attribute
  sort attr              Stable-sort by an attribute
  group attr             Group by an attribute
  values attr            Project a single attribute
  all                    Show every record

Keywords combine left to right, e.g.:
  where estr=bbb cstr=echo
  defined aint sort aint
  group estr
`
	_, _ = fmt.Fprintln(w, help)
}

// newShellCompleter builds tab completion over dot-commands, the loaded
// set names, and the query keywords.
func newShellCompleter(reg *session.Registry) *readline.PrefixCompleter {
	var setItems []readline.PrefixCompleterInterface
	for _, name := range reg.Names() {
		setItems = append(setItems, readline.PcItem(name))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".load"),
		readline.PcItem(".sets"),
		readline.PcItem(".use", setItems...),
		readline.PcItem(".schema", setItems...),
		readline.PcItem(".save", setItems...),
		readline.PcItem(".store"),
		readline.PcItem(".open"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem("where"),
		readline.PcItem("defined"),
		readline.PcItem("sort"),
		readline.PcItem("group"),
		readline.PcItem("values"),
		readline.PcItem("all"),
	}

	return readline.NewPrefixCompleter(items...)
}

// parseShellQuery reads the keyword form used at the prompt:
//
//	[where attr=value ...] [defined attr] [sort attr] [group attr] [values attr]
//
// "all" is accepted on its own to show every record.
func parseShellQuery(fields []string) (*QueryOptions, error) {
	opts := &QueryOptions{}

	i := 0
	next := func(keyword string) (string, error) {
		i++
		if i >= len(fields) {
			return "", fmt.Errorf("%s needs an attribute", keyword)
		}
		v := fields[i]
		i++
		return v, nil
	}

	for i < len(fields) {
		switch keyword := strings.ToLower(fields[i]); keyword {
		case "all":
			i++
		case "where":
			i++
			start := i
			for i < len(fields) && strings.Contains(fields[i], "=") {
				opts.Where = append(opts.Where, fields[i])
				i++
			}
			if i == start {
				return nil, fmt.Errorf("where needs attribute=value predicates")
			}
		case "defined":
			v, err := next(keyword)
			if err != nil {
				return nil, err
			}
			opts.Defined = v
		case "sort":
			v, err := next(keyword)
			if err != nil {
				return nil, err
			}
			opts.SortBy = v
		case "group":
			v, err := next(keyword)
			if err != nil {
				return nil, err
			}
			opts.GroupBy = v
		case "values":
			v, err := next(keyword)
			if err != nil {
				return nil, err
			}
			opts.Values = v
		default:
			return nil, fmt.Errorf("unexpected token %q (type .help for query syntax)", fields[i])
		}
	}

	if opts.GroupBy != "" && opts.Values != "" {
		return nil, fmt.Errorf("cannot combine group with values")
	}
	return opts, nil
}
