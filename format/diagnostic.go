package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	"github.com/dhamidi/obc/parse"
)

// TabstopWidth is the width tabs are expanded to when a source line is
// echoed under a diagnostic.
const TabstopWidth = 4

// Diagnostic is a parse.Error resolved against its source.
type Diagnostic struct {
	File     string   `json:"file"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s error: %s", d.File, d.Start, d.Category, d.Message)
}

// Diagnostic resolves err to lines and columns of s.
func (s *Source) Diagnostic(err *parse.Error) Diagnostic {
	return Diagnostic{
		File:     s.Name,
		Category: err.Category.String(),
		Message:  err.Message,
		Start:    s.Position(err.Index),
		End:      s.Position(err.Index + err.Length),
	}
}

// DiagnosticPrinter prints errors with the offending line and a caret
// underline.
type DiagnosticPrinter struct {
	w        io.Writer
	location *color.Color
	syntax   *color.Color
	semantic *color.Color
	caret    *color.Color
	gutter   *color.Color
}

// NewDiagnosticPrinter returns a printer writing to w. Colors are forced on
// or off regardless of whether w is a terminal.
func NewDiagnosticPrinter(w io.Writer, colored bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{
		w:        w,
		location: color.New(color.Bold),
		syntax:   color.New(color.FgRed, color.Bold),
		semantic: color.New(color.FgYellow, color.Bold),
		caret:    color.New(color.FgGreen, color.Bold),
		gutter:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.location, p.syntax, p.semantic, p.caret, p.gutter} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *DiagnosticPrinter) Print(src *Source, err *parse.Error) error {
	d := src.Diagnostic(err)
	category := p.syntax
	if err.Category == parse.Semantics {
		category = p.semantic
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n",
		p.location.Sprintf("%s:%s:", d.File, d.Start),
		category.Sprintf("%s error:", d.Category),
		d.Message)

	line := src.Line(d.Start.Line)
	lineStart := src.LineStart(d.Start.Line)
	col := min(err.Index-lineStart, len(line))
	end := min(max(err.Index+err.Length-lineStart, col), len(line))

	pad := displayWidth(line[:col])
	width := max(displayWidth(line[:end])-pad, 1)

	fmt.Fprintf(&sb, "%s %s\n", p.gutter.Sprintf("%4d |", d.Start.Line), expandTabs(line))
	fmt.Fprintf(&sb, "%s %s%s\n", p.gutter.Sprint("     |"),
		strings.Repeat(" ", pad), p.caret.Sprint(strings.Repeat("^", width)))

	_, werr := io.WriteString(p.w, sb.String())
	return werr
}

func displayWidth(s string) int {
	return uniseg.StringWidth(expandTabs(s))
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	column := 0
	for {
		i := strings.IndexByte(s, '\t')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		column += uniseg.StringWidth(s[:i])
		sb.WriteString(s[:i])
		tab := TabstopWidth - column%TabstopWidth
		column += tab
		sb.WriteString(strings.Repeat(" ", tab))
		s = s[i+1:]
	}
}
