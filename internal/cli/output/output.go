// Package output provides the CLI's rendering layer: output modes, a
// Renderer bound to a command's streams, and the lipgloss styles shared
// by commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects how command output is rendered.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown otherwise.
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
)

// Renderer writes human-facing command output.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer builds a renderer for the given streams. Styling is enabled
// only for terminal output and is dropped entirely when NO_COLOR is set.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	r := &Renderer{out: out, errOut: errOut, mode: normalizeMode(mode)}
	r.styles = newStyles(r.colorEnabled())
	return r
}

func normalizeMode(mode Mode) Mode {
	switch mode {
	case ModeText, ModeJSON, ModeCSV:
		return mode
	case ModeMarkdown, "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

// IsTTY reports whether the output stream is a terminal.
func (r *Renderer) IsTTY() bool {
	f, ok := r.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *Renderer) colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return r.IsTTY()
}

// EffectiveMode resolves ModeAuto against the output stream: text for
// terminals, markdown for pipes and files.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.IsTTY() {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying output stream.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the underlying error stream.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to the output stream.
func (r *Renderer) Println(args ...any) {
	_, _ = fmt.Fprintln(r.out, args...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a section header. Markdown mode renders a #-heading;
// text mode styles the line and underlines level 1.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		return
	}
	if level <= 1 {
		r.Println(r.styles.Header1.Render(text))
		r.Println(r.styles.Muted.Render(strings.Repeat("=", len(text))))
		return
	}
	r.Println(r.styles.Header2.Render(text))
}

// Success writes a checkmark status line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.StatusSuccess.String() + " " + msg)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("!")+" "+msg)
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.StatusFailed.String()+" "+msg)
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// SetLine writes a numbered listing line: the index, the bold set name,
// and a muted detail.
func (r *Renderer) SetLine(index int, name, detail string) {
	line := fmt.Sprintf("%2d. %s", index, r.styles.Bold.Render(name))
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// StatusLine writes a per-item status line: a glyph, the item, and an
// optional detail.
func (r *Renderer) StatusLine(item, status, detail string) {
	glyph := r.styles.Muted.Render("-")
	switch status {
	case "success":
		glyph = r.styles.StatusSuccess.String()
	case "warn":
		glyph = r.styles.Warning.Render("!")
	case "error":
		glyph = r.styles.StatusFailed.String()
	}
	line := glyph + " " + item
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Styles returns the renderer's style set.
func (r *Renderer) Styles() *Styles { return r.styles }
