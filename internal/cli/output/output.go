// Package output renders command results in text, markdown, or JSON.
// Text output is styled only when writing to a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on a TTY and markdown otherwise.
	ModeAuto Mode = "auto"
	// ModeText is styled human-readable output.
	ModeText Mode = "text"
	// ModeMarkdown is plain markdown output.
	ModeMarkdown Mode = "markdown"
	// ModeJSON is machine-readable JSON output.
	ModeJSON Mode = "json"
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTerminal(out),
	}
	colored := r.isTTY && r.EffectiveMode() == ModeText &&
		termenv.EnvColorProfile() != termenv.Ascii
	r.styles = newStyles(colored)
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto against the output terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether stdout is a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the renderer's style set.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the underlying error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to the output writer.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf writes formatted output to the output writer.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Header writes a styled or markdown section header.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		switch level {
		case 1:
			r.Println(r.styles.Header1.Render(text))
		default:
			r.Println(r.styles.Header2.Render(text))
		}
		return
	}
	r.Println(FormatHeader(level, text))
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓ " + msg))
}

// Warning writes a warning line to stderr.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render("⚠ "+msg))
}

// Error writes an error line to stderr.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// JSON writes a value as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
