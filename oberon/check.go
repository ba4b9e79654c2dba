package oberon

import (
	"cmp"
	"slices"

	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/parse"
	"github.com/dhamidi/obc/types"
)

// Check runs the semantic checks that need no symbol table:
//
//   - a module or procedure must end with its own name
//   - a name is declared at most once per declaration sequence
//   - both sides of a relation between operands of known type must be
//     comparable with that operator
//
// The errors are sorted by offset.
func Check(mod *Module) []*parse.Error {
	var errs []*parse.Error
	if mod.EndIdent != nil && mod.EndName() != mod.Name() {
		errs = append(errs, parse.SemanticErrorf(mod.EndIdent.Span(),
			"module %s ends with END %s", mod.Name(), mod.EndName()))
	}

	ast.Inspect(mod, func(n parse.Node) bool {
		switch n := n.(type) {
		case *ProcDecl:
			if n.EndIdent != nil && n.EndIdent.Name != n.Name.Name() {
				errs = append(errs, parse.SemanticErrorf(n.EndIdent.Span(),
					"procedure %s ends with END %s", n.Name.Name(), n.EndIdent.Name))
			}
		case *DeclSeq:
			errs = append(errs, checkDuplicates(n)...)
		case *Expr:
			if err := checkRelation(n); err != nil {
				errs = append(errs, err)
			}
		}
		return true
	})

	slices.SortStableFunc(errs, func(a, b *parse.Error) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return errs
}

func checkDuplicates(d *DeclSeq) []*parse.Error {
	var errs []*parse.Error
	seen := make(map[string]bool)
	declare := func(def *IdentDef) {
		if def == nil {
			return
		}
		name := def.Name()
		if seen[name] {
			errs = append(errs, parse.SemanticErrorf(def.Span(), "%s redeclared in this block", name))
			return
		}
		seen[name] = true
	}
	for _, c := range d.Consts {
		declare(c.Name)
	}
	for _, t := range d.Types {
		declare(t.Name)
	}
	for _, v := range d.Vars {
		if v.Names != nil {
			for _, def := range v.Names.Names {
				declare(def)
			}
		}
	}
	for _, p := range d.Procs {
		if p.Receiver == nil {
			declare(p.Name)
		}
	}
	return errs
}

func checkRelation(e *Expr) *parse.Error {
	if e.Op == nil {
		return nil
	}
	left, right := e.Left.FinalType(), e.Right.FinalType()
	if left == nil || right == nil {
		return nil
	}
	ok := true
	switch e.Op.Op {
	case "=", "#":
		ok = left.CanTestEquality(right)
	case "<", "<=", ">", ">=":
		ok = left.CanCompare(right)
	case "IN":
		_, numeric := left.(types.Numeric)
		ok = numeric && right == types.Set
	}
	if ok {
		return nil
	}
	return parse.SemanticErrorf(e.Span(), "invalid operation: %s %s %s", left, e.Op.Op, right)
}
