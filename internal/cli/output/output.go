// Package output renders command results as styled text, markdown, or JSON.
//
// The renderer picks its effective mode from an explicit flag or, in auto
// mode, from whether stdout is a terminal: TTY gets styled text, pipes get
// markdown so output stays readable in logs and docs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Supported output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode parses a mode string, defaulting to auto on empty or unknown input.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Renderer writes formatted command output.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    OutputMode
	isTTY   bool
	profile termenv.Profile
}

// NewRenderer creates a renderer, detecting TTY state from out when it is a
// file handle.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = isTerminal(f)
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state. Used by
// tests to pin the effective mode.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	profile := termenv.Ascii
	if isTTY {
		profile = termenv.NewOutput(out).Profile
	}
	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    mode,
		isTTY:   isTTY,
		profile: profile,
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// EffectiveMode resolves auto to text or markdown based on TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying stdout writer for raw output.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the underlying stderr writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a plain line to stdout.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to stdout.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Success writes a success line, green on a TTY.
func (r *Renderer) Success(s string) {
	if r.EffectiveMode() == ModeText && r.isTTY {
		_, _ = fmt.Fprintln(r.out, termenv.String("✓ "+s).Foreground(r.profile.Color("2")).String())
		return
	}
	_, _ = fmt.Fprintln(r.out, "✓ "+s)
}

// Error writes an error line to stderr, red on a TTY.
func (r *Renderer) Error(s string) {
	if r.EffectiveMode() == ModeText && r.isTTY {
		_, _ = fmt.Fprintln(r.errOut, termenv.String("✗ "+s).Foreground(r.profile.Color("1")).String())
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "✗ "+s)
}

// Muted writes a de-emphasized line, dim on a TTY.
func (r *Renderer) Muted(s string) {
	if r.EffectiveMode() == ModeText && r.isTTY {
		_, _ = fmt.Fprintln(r.out, termenv.String(s).Faint().String())
		return
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Header writes a section header. Markdown mode uses # levels; text mode
// renders bold with an underline for level 1.
func (r *Renderer) Header(level int, s string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		_, _ = fmt.Fprintf(r.out, "%s %s\n", strings.Repeat("#", level), s)
	case ModeJSON:
		// Headers are structural noise in JSON mode.
	default:
		if r.isTTY {
			s = termenv.String(s).Bold().String()
		}
		_, _ = fmt.Fprintln(r.out, s)
		if level == 1 {
			_, _ = fmt.Fprintln(r.out, strings.Repeat("=", len(s)))
		}
	}
}

// StatusLine writes a name with a status marker and optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	marker := "•"
	switch status {
	case "success":
		marker = "✓"
	case "failed":
		marker = "✗"
	case "running":
		marker = "…"
	}
	if detail != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s (%s)\n", marker, name, detail)
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", marker, name)
}

// JSON writes v as indented JSON to stdout.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders header and rows as a table: boxed in text mode, pipe table in
// markdown mode.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
