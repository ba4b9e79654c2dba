package parse

// Span is a range of bytes in the source text.
type Span struct {
	Start  int
	Length int
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Start + s.Length
}

// Union returns the smallest span covering both s and o.
func (s Span) Union(o Span) Span {
	start := min(s.Start, o.Start)
	end := max(s.End(), o.End())
	return Span{Start: start, Length: end - start}
}

// Node is an element of a parse tree.
//
// The engine produces *Leaf and *Branch values. After substitution, nodes
// tagged with a rule name are replaced by typed nodes that implement the
// same interface.
type Node interface {
	// Span returns the source range covered by the node.
	Span() Span
	// Token returns the name of the grammar rule that produced the node,
	// or "" for untagged nodes.
	Token() string
	// Children returns the ordered child nodes (nil for leaves).
	Children() []Node
}

// Leaf is a matched terminal span.
type Leaf struct {
	Start int
	Text  string
	Rule  string
}

func (l *Leaf) Span() Span       { return Span{Start: l.Start, Length: len(l.Text)} }
func (l *Leaf) Token() string    { return l.Rule }
func (l *Leaf) Children() []Node { return nil }

// Branch is a matched composite. Children are kept in grammar order.
type Branch struct {
	Nodes []Node
	Rule  string
}

// Span returns the union of the children's spans.
func (b *Branch) Span() Span {
	if len(b.Nodes) == 0 {
		return Span{}
	}
	first := b.Nodes[0].Span()
	last := b.Nodes[len(b.Nodes)-1].Span()
	return first.Union(last)
}

func (b *Branch) Token() string    { return b.Rule }
func (b *Branch) Children() []Node { return b.Nodes }

// AddChild appends a child node. Nil children are ignored.
func (b *Branch) AddChild(child Node) {
	if child == nil {
		return
	}
	b.Nodes = append(b.Nodes, child)
}

// Text returns the source text covered by n.
func Text(src string, n Node) string {
	s := n.Span()
	return src[s.Start:s.End()]
}

// concat joins the results of two sequential parses. An absent side yields
// the other side. An untagged Branch on the left is extended in place so
// that long sequences stay flat.
func concat(left, right Node) Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if b, ok := left.(*Branch); ok && b.Rule == "" {
		b.Nodes = append(b.Nodes, right)
		return b
	}
	return &Branch{Nodes: []Node{left, right}}
}

// tag labels the result of a syntactic rule with the rule name. Untagged
// nodes are relabelled; nodes already owned by another rule are wrapped.
func tag(n Node, rule string) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *Leaf:
		if n.Rule == "" {
			n.Rule = rule
			return n
		}
	case *Branch:
		if n.Rule == "" {
			n.Rule = rule
			return n
		}
	}
	return &Branch{Nodes: []Node{n}, Rule: rule}
}
