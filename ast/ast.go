// Package ast turns parse trees into typed syntax trees.
//
// A Registry maps grammar rule names to constructors. Substitute rewrites a
// parse tree bottom-up, replacing every node tagged with a rule name by the
// typed node its constructor returns. Typed nodes embed Base, which keeps
// the span and the flattened children of the node they replace.
package ast

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dhamidi/obc/parse"
)

// ErrUnregisteredRule is matched by errors returned when a parse tree
// contains a rule name with no registered constructor.
var ErrUnregisteredRule = errors.New("unregistered rule")

// UnregisteredRuleError reports a tagged node whose rule has no
// constructor.
type UnregisteredRuleError struct {
	Rule string
	Span parse.Span
}

func (e *UnregisteredRuleError) Error() string {
	return fmt.Sprintf("no constructor registered for rule %q (offset %d)", e.Rule, e.Span.Start)
}

func (e *UnregisteredRuleError) Is(target error) bool {
	return target == ErrUnregisteredRule
}

// Constructor builds a typed node from a tagged node whose children have
// already been substituted. Returning a nil node drops it from its parent.
type Constructor func(n parse.Node) (parse.Node, error)

// Entry pairs a rule name with its constructor.
type Entry struct {
	Rule string
	New  Constructor
}

// Registry maps rule names to constructors. It is read-only after
// construction.
type Registry struct {
	byRule map[string]Constructor
	order  []string
}

// NewRegistry builds a registry from an explicit table. It panics if a rule
// is listed twice or has no constructor.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{byRule: make(map[string]Constructor, len(entries))}
	for _, e := range entries {
		if e.New == nil {
			panic(fmt.Sprintf("ast: nil constructor for rule %q", e.Rule))
		}
		if _, dup := r.byRule[e.Rule]; dup {
			panic(fmt.Sprintf("ast: rule %q registered twice", e.Rule))
		}
		r.byRule[e.Rule] = e.New
		r.order = append(r.order, e.Rule)
	}
	return r
}

// Lookup returns the constructor for rule.
func (r *Registry) Lookup(rule string) (Constructor, bool) {
	c, ok := r.byRule[rule]
	return c, ok
}

// Rules returns the registered rule names in table order.
func (r *Registry) Rules() []string {
	return slices.Clone(r.order)
}

// Missing returns the names in rules that have no constructor.
func (r *Registry) Missing(rules []string) []string {
	var out []string
	for _, name := range rules {
		if _, ok := r.byRule[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Substitute rewrites root bottom-up. Untagged nodes are kept (with their
// children substituted); tagged nodes are passed to their constructor.
// Nodes that are neither *parse.Leaf nor *parse.Branch are already typed
// and are returned unchanged.
func (r *Registry) Substitute(root parse.Node) (parse.Node, error) {
	switch n := root.(type) {
	case nil:
		return nil, nil
	case *parse.Leaf:
		if n.Rule == "" {
			return n, nil
		}
		return r.construct(n)
	case *parse.Branch:
		children := make([]parse.Node, 0, len(n.Nodes))
		for _, child := range n.Nodes {
			sub, err := r.Substitute(child)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				children = append(children, sub)
			}
		}
		b := &parse.Branch{Nodes: children, Rule: n.Rule}
		if b.Rule == "" {
			return b, nil
		}
		return r.construct(b)
	default:
		return root, nil
	}
}

func (r *Registry) construct(n parse.Node) (parse.Node, error) {
	rule := n.Token()
	c, ok := r.byRule[rule]
	if !ok {
		return nil, &UnregisteredRuleError{Rule: rule, Span: n.Span()}
	}
	typed, err := c(n)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", rule, err)
	}
	return typed, nil
}
