package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/fatih/color"
)

// Printer writes human-readable CLI output. Errors go to the err writer.
type Printer struct {
	out, err io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// New returns a Printer over out and errOut. Colors are disabled when useColor is false.
func New(out, errOut io.Writer, useColor bool) *Printer {
	p := &Printer{
		out:    out,
		err:    errOut,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Success prints a success message in green with a checkmark prefix
func (p *Printer) Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	p.green.Fprint(p.out, msg)
}

// Info prints an informational message in the default color
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	p.yellow.Fprint(p.out, msg)
}

// Step prints a step message with emphasis
func (p *Printer) Step(format string, a ...any) {
	p.cyan.Fprintf(p.out, "→ %s", fmt.Sprintf(format, a...))
}

// Heading prints a bold section title followed by a newline
func (p *Printer) Heading(title string) {
	p.bold.Fprintln(p.out, title)
}

// Hit renders a hit/miss marker.
func (p *Printer) Hit(hit bool) string {
	if hit {
		return p.green.Sprint("hit")
	}
	return p.yellow.Sprint("miss")
}

// Category renders a category label: small categories cyan, big ones bold.
func (p *Printer) Category(c draw.Category) string {
	switch c {
	case draw.SmallOdd, draw.SmallEven:
		return p.cyan.Sprint(string(c))
	case draw.BigOdd, draw.BigEven:
		return p.bold.Sprint(string(c))
	default:
		return string(c)
	}
}

// Error prints a formatted error with title, explanation, and suggestions,
// and returns a simple error for Cobra
func (p *Printer) Error(title string, explanation string, suggestions []string) error {
	p.red.Fprintf(p.err, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(p.err, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(p.err, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(p.err, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.err, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(p.err, "  %d. %s\n", i+1, suggestion)
			}
		}
	}
	return fmt.Errorf("%s", title)
}
