package parse

import "fmt"

// Position is a cursor into the source text. Operations take a Position by
// value and return a new one; on failure the caller keeps its own value.
type Position struct {
	Offset         int
	SkipWhitespace bool
}

// Start returns the position at the beginning of the input with
// whitespace skipping enabled.
func Start() Position {
	return Position{Offset: 0, SkipWhitespace: true}
}

func (p Position) at(offset int) Position {
	p.Offset = offset
	return p
}

func (p Position) String() string {
	if p.SkipWhitespace {
		return fmt.Sprintf("%d", p.Offset)
	}
	return fmt.Sprintf("%d(raw)", p.Offset)
}
