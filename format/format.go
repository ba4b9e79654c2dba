// Package format renders syntax trees and diagnostics for people and tools.
package format

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/obc/parse"
)

// Encoder writes a syntax tree to an underlying writer.
type Encoder interface {
	Encode(node parse.Node) error
}

// Source is a named source text with an index of its line starts.
type Source struct {
	Name  string
	Text  string
	lines []int
}

func NewSource(name, text string) *Source {
	s := &Source{Name: name, Text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

// Position is a 1-based line and column. Columns count characters, not
// bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Position converts a byte offset into a line and column. Offsets outside
// the text are clamped.
func (s *Source) Position(offset int) Position {
	offset = min(max(offset, 0), len(s.Text))
	line := s.lineOf(offset)
	return Position{
		Line:   line + 1,
		Column: utf8.RuneCountInString(s.Text[s.lines[line]:offset]) + 1,
	}
}

func (s *Source) lineOf(offset int) int {
	return sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
}

// LineCount returns the number of lines in the text.
func (s *Source) LineCount() int { return len(s.lines) }

// LineStart returns the offset of the first byte of the 1-based line n.
func (s *Source) LineStart(n int) int { return s.lines[n-1] }

// Line returns the 1-based line n without its line terminator.
func (s *Source) Line(n int) string {
	start := s.lines[n-1]
	end := len(s.Text)
	if n < len(s.lines) {
		end = s.lines[n] - 1
	}
	return strings.TrimSuffix(s.Text[start:end], "\r")
}
