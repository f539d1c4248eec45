// Package diag renders lexer errors as caret-annotated reports.
//
// Rendering is a pure function of the *lexer.Error value: the error carries
// the offending line, so no access to the source is needed.
//
//	error[E0001]: unknown character
//	 --> main.src:1:4
//	  |
//	1 | (1 @ 2)
//	  |    ^
//
//	error: aborting due to 1 previous error
//
//	error: could not tokenize `main.src`
package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aledsdavies/tok/pkgs/lexer"
	"github.com/fatih/color"
)

// Option configures rendering
type Option func(*config)

type config struct {
	color bool
}

// WithColor enables or disables ANSI colours. Output is plain by default.
func WithColor(enabled bool) Option {
	return func(c *config) {
		c.color = enabled
	}
}

// Render formats err as a multi-line diagnostic without a trailing newline
func Render(err *lexer.Error, opts ...Option) string {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	red := cfg.paint(color.FgHiRed)
	cyan := cfg.paint(color.FgHiCyan)
	white := cfg.paint(color.FgHiWhite)

	lineNumber := strconv.Itoa(err.Line)
	width := len(lineNumber)
	gutter := strings.Repeat(" ", width+1) + "|"

	var b strings.Builder

	// Header
	b.WriteString(red("error[" + err.Kind.Code() + "]"))
	b.WriteString(white(": " + err.Kind.String()))
	b.WriteByte('\n')

	// Locator
	b.WriteString(cyan(strings.Repeat(" ", width) + "-->"))
	fmt.Fprintf(&b, " %s:%d:%d\n", err.Filename, err.Line, err.Column)

	// Source excerpt
	b.WriteString(cyan(gutter))
	b.WriteByte('\n')
	b.WriteString(cyan(lineNumber + " |"))
	b.WriteString(" " + err.Context)
	b.WriteByte('\n')
	b.WriteString(cyan(gutter))
	b.WriteString(" " + caretPadding(err.Context, err.Column))
	b.WriteString(red(strings.Repeat("^", caretCount(err.Lexeme))))
	b.WriteByte('\n')

	// Footer
	b.WriteByte('\n')
	b.WriteString(red("error"))
	b.WriteString(white(": aborting due to 1 previous error"))
	b.WriteString("\n\n")
	b.WriteString(red("error"))
	b.WriteString(white(": could not tokenize `" + err.Filename + "`"))

	return b.String()
}

// Fprint writes the rendered diagnostic followed by a newline
func Fprint(w io.Writer, err *lexer.Error, opts ...Option) error {
	_, writeErr := io.WriteString(w, Render(err, opts...)+"\n")
	return writeErr
}

func (c *config) paint(attr color.Attribute) func(s string) string {
	painter := color.New(attr)
	if c.color {
		painter.EnableColor()
	} else {
		painter.DisableColor()
	}
	return func(s string) string {
		return painter.Sprint(s)
	}
}

// caretPadding returns the indent that puts a caret under the given 1-based
// column of context, keeping tabs so the caret stays aligned
func caretPadding(context string, column int) string {
	if column <= 1 {
		return ""
	}

	pad := make([]byte, 0, column-1)
	for _, r := range context {
		if len(pad) == column-1 {
			break
		}
		if r == '\t' {
			pad = append(pad, '\t')
		} else {
			pad = append(pad, ' ')
		}
	}
	for len(pad) < column-1 {
		pad = append(pad, ' ')
	}
	return string(pad)
}

// caretCount underlines every character of the lexeme, and at least one
// position when the lexeme is empty (end of input)
func caretCount(lexeme string) int {
	if n := utf8.RuneCountInString(lexeme); n > 0 {
		return n
	}
	return 1
}
