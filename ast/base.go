package ast

import "github.com/dhamidi/obc/parse"

// Base is the common core of typed nodes. Embed it and initialise it with
// NewBase to get the parse.Node methods.
type Base struct {
	rule     string
	span     parse.Span
	text     string
	children []parse.Node
}

// NewBase captures n's rule, span and children. Untagged branches among
// the children are spliced in place, so a typed node sees the flat list of
// typed nodes and terminals it was built from. For a leaf, Text returns the
// matched text.
func NewBase(n parse.Node) Base {
	b := Base{rule: n.Token(), span: n.Span()}
	if leaf, ok := n.(*parse.Leaf); ok {
		b.text = leaf.Text
		return b
	}
	b.children = Flatten(n.Children())
	return b
}

func (b *Base) Span() parse.Span       { return b.span }
func (b *Base) Token() string          { return b.rule }
func (b *Base) Children() []parse.Node { return b.children }

// Text returns the matched text of a node built from a leaf.
func (b *Base) Text() string { return b.text }

// SetChildren replaces the children. The span is unchanged.
func (b *Base) SetChildren(children []parse.Node) { b.children = children }

// Flatten returns nodes with every untagged branch replaced by its own
// flattened children.
func Flatten(nodes []parse.Node) []parse.Node {
	out := make([]parse.Node, 0, len(nodes))
	for _, n := range nodes {
		if b, ok := n.(*parse.Branch); ok && b.Rule == "" {
			out = append(out, Flatten(b.Nodes)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// Find returns the first node in nodes of type T.
func Find[T parse.Node](nodes []parse.Node) (T, bool) {
	for _, n := range nodes {
		if t, ok := n.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// All returns every node in nodes of type T, in order.
func All[T parse.Node](nodes []parse.Node) []T {
	var out []T
	for _, n := range nodes {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Terminals returns the text of the untagged leaves among nodes: the
// keywords and punctuation of a production.
func Terminals(nodes []parse.Node) []string {
	var out []string
	for _, n := range nodes {
		if l, ok := n.(*parse.Leaf); ok && l.Rule == "" {
			out = append(out, l.Text)
		}
	}
	return out
}
