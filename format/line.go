package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/obc/parse"
)

// LineEncoder prints a syntax tree one node per line, indented by depth.
// Each line holds the node kind, its span and, for tokens, the quoted text.
type LineEncoder struct {
	w   io.Writer
	src *Source

	// Terminals includes keywords and punctuation in the output.
	Terminals bool
}

func NewLineEncoder(w io.Writer, src *Source) *LineEncoder {
	return &LineEncoder{w: w, src: src}
}

func (e *LineEncoder) Encode(node parse.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(node parse.Node) ([]byte, error) {
	var sb strings.Builder
	if node != nil {
		e.write(&sb, node, 0)
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) write(sb *strings.Builder, n parse.Node, depth int) {
	kind := kindOf(n)
	if kind == "terminal" && !e.Terminals {
		return
	}
	span := n.Span()
	indent := strings.Repeat("  ", depth)
	where := e.src.Position(span.Start).String() + "-" + e.src.Position(span.End()).String()

	switch text := tokenText(n); {
	case kind == "terminal":
		fmt.Fprintf(sb, "%s%q %s\n", indent, text, where)
	case text != "":
		fmt.Fprintf(sb, "%s%s %s %q\n", indent, kind, where, text)
	default:
		fmt.Fprintf(sb, "%s%s %s\n", indent, kind, where)
	}

	for _, child := range n.Children() {
		if child != nil {
			e.write(sb, child, depth+1)
		}
	}
}
