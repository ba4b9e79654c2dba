package ast

import "github.com/dhamidi/obc/parse"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node parse.Node) (w Visitor)
}

// Walk traverses a tree in depth-first order.
func Walk(v Visitor, node parse.Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range node.Children() {
		Walk(v, child)
	}
	v.Visit(nil)
}

type inspector func(parse.Node) bool

func (f inspector) Visit(node parse.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order, calling f for each node
// and then f(nil) once its children are done. Children are skipped when f
// returns false.
func Inspect(node parse.Node, f func(parse.Node) bool) {
	Walk(inspector(f), node)
}
