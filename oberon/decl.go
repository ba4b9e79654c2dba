package oberon

import (
	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/parse"
)

// Module is a compilation unit.
type Module struct {
	ast.Base
	NameIdent *Ident
	Imports   *ImportList
	Decls     *DeclSeq
	Body      *StatementSeq
	EndIdent  *Ident
}

func newModule(n parse.Node) (parse.Node, error) {
	m := &Module{Base: ast.NewBase(n)}
	idents := ast.All[*Ident](m.Children())
	if len(idents) > 0 {
		m.NameIdent = idents[0]
		m.EndIdent = idents[len(idents)-1]
	}
	m.Imports, _ = ast.Find[*ImportList](m.Children())
	m.Decls, _ = ast.Find[*DeclSeq](m.Children())
	m.Body, _ = ast.Find[*StatementSeq](m.Children())
	return m, nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.NameIdent.Name }

// EndName returns the name after the closing END.
func (m *Module) EndName() string { return m.EndIdent.Name }

type ImportList struct {
	ast.Base
	Imports []*Import
}

func newImportList(n parse.Node) (parse.Node, error) {
	l := &ImportList{Base: ast.NewBase(n)}
	l.Imports = ast.All[*Import](l.Children())
	return l, nil
}

// Import is an imported module, optionally renamed: Alias := Module.
type Import struct {
	ast.Base
	Alias  string
	Module string
}

func newImport(n parse.Node) (parse.Node, error) {
	i := &Import{Base: ast.NewBase(n)}
	idents := ast.All[*Ident](i.Children())
	switch len(idents) {
	case 1:
		i.Module = idents[0].Name
	case 2:
		i.Alias = idents[0].Name
		i.Module = idents[1].Name
	}
	return i, nil
}

// Name returns the name the import is known by inside the module.
func (i *Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Module
}

// DeclSeq holds the declarations of a module or procedure.
type DeclSeq struct {
	ast.Base
	Consts   []*ConstDecl
	Types    []*TypeDecl
	Vars     []*VarDecl
	Procs    []*ProcDecl
	Forwards []*ForwardDecl
}

func newDeclSeq(n parse.Node) (parse.Node, error) {
	d := &DeclSeq{Base: ast.NewBase(n)}
	d.Consts = ast.All[*ConstDecl](d.Children())
	d.Types = ast.All[*TypeDecl](d.Children())
	d.Vars = ast.All[*VarDecl](d.Children())
	d.Procs = ast.All[*ProcDecl](d.Children())
	d.Forwards = ast.All[*ForwardDecl](d.Children())
	return d, nil
}

type ConstDecl struct {
	ast.Base
	Name  *IdentDef
	Value *ConstExpr
}

func newConstDecl(n parse.Node) (parse.Node, error) {
	c := &ConstDecl{Base: ast.NewBase(n)}
	c.Name, _ = ast.Find[*IdentDef](c.Children())
	c.Value, _ = ast.Find[*ConstExpr](c.Children())
	c.SetChildren([]parse.Node{c.Name, c.Value})
	return c, nil
}

type TypeDecl struct {
	ast.Base
	Name *IdentDef
	Type *Type
}

func newTypeDecl(n parse.Node) (parse.Node, error) {
	t := &TypeDecl{Base: ast.NewBase(n)}
	t.Name, _ = ast.Find[*IdentDef](t.Children())
	t.Type, _ = ast.Find[*Type](t.Children())
	return t, nil
}

type VarDecl struct {
	ast.Base
	Names *IdentList
	Type  *Type
}

func newVarDecl(n parse.Node) (parse.Node, error) {
	v := &VarDecl{Base: ast.NewBase(n)}
	v.Names, _ = ast.Find[*IdentList](v.Children())
	v.Type, _ = ast.Find[*Type](v.Children())
	return v, nil
}

// ProcDecl is a procedure with its body. Type-bound procedures have a
// Receiver.
type ProcDecl struct {
	ast.Base
	Receiver *Receiver
	Name     *IdentDef
	Params   *FormalPars
	Decls    *DeclSeq
	Body     *StatementSeq
	EndIdent *Ident
}

func newProcDecl(n parse.Node) (parse.Node, error) {
	p := &ProcDecl{Base: ast.NewBase(n)}
	p.Receiver, _ = ast.Find[*Receiver](p.Children())
	p.Name, _ = ast.Find[*IdentDef](p.Children())
	p.Params, _ = ast.Find[*FormalPars](p.Children())
	p.Decls, _ = ast.Find[*DeclSeq](p.Children())
	p.Body, _ = ast.Find[*StatementSeq](p.Children())
	p.EndIdent, _ = ast.Find[*Ident](p.Children())
	return p, nil
}

// ForwardDecl announces a procedure declared later: PROCEDURE ^ P.
type ForwardDecl struct {
	ast.Base
	Receiver *Receiver
	Name     *IdentDef
	Params   *FormalPars
}

func newForwardDecl(n parse.Node) (parse.Node, error) {
	f := &ForwardDecl{Base: ast.NewBase(n)}
	f.Receiver, _ = ast.Find[*Receiver](f.Children())
	f.Name, _ = ast.Find[*IdentDef](f.Children())
	f.Params, _ = ast.Find[*FormalPars](f.Children())
	return f, nil
}

type Receiver struct {
	ast.Base
	Var  bool
	Name string
	Type string
}

func newReceiver(n parse.Node) (parse.Node, error) {
	r := &Receiver{Base: ast.NewBase(n)}
	r.Var = hasTerminal(r.Children(), "VAR")
	if idents := ast.All[*Ident](r.Children()); len(idents) == 2 {
		r.Name = idents[0].Name
		r.Type = idents[1].Name
	}
	return r, nil
}

type FormalPars struct {
	ast.Base
	Sections []*FPSection
	Result   *Qualident
}

func newFormalPars(n parse.Node) (parse.Node, error) {
	f := &FormalPars{Base: ast.NewBase(n)}
	f.Sections = ast.All[*FPSection](f.Children())
	f.Result, _ = ast.Find[*Qualident](f.Children())
	return f, nil
}

// FPSection is a group of formal parameters sharing a type.
type FPSection struct {
	ast.Base
	Var   bool
	Names []*Ident
	Type  *Type
}

func newFPSection(n parse.Node) (parse.Node, error) {
	s := &FPSection{Base: ast.NewBase(n)}
	s.Var = hasTerminal(s.Children(), "VAR")
	s.Names = ast.All[*Ident](s.Children())
	s.Type, _ = ast.Find[*Type](s.Children())
	return s, nil
}

// TypeKind says which form a Type has.
type TypeKind int

const (
	NamedType TypeKind = iota
	ArrayType
	RecordType
	PointerType
	ProcedureType
)

func (k TypeKind) String() string {
	switch k {
	case NamedType:
		return "named"
	case ArrayType:
		return "ARRAY"
	case RecordType:
		return "RECORD"
	case PointerType:
		return "POINTER"
	case ProcedureType:
		return "PROCEDURE"
	default:
		return "TypeKind(?)"
	}
}

// Type is a type expression. Which fields are set depends on Kind.
type Type struct {
	ast.Base
	Kind TypeKind

	// NamedType
	Name *Qualident
	// ArrayType; no lengths for an open array
	Lengths []*ConstExpr
	// RecordType; Extends is nil for a record without a base type
	Extends *Qualident
	Fields  []*FieldList
	// ArrayType and PointerType
	Elem *Type
	// ProcedureType
	Params *FormalPars
}

func newType(n parse.Node) (parse.Node, error) {
	t := &Type{Base: ast.NewBase(n)}
	children := t.Children()
	kw := ""
	if words := ast.Terminals(children); len(words) > 0 {
		kw = words[0]
	}
	switch kw {
	case "ARRAY":
		t.Kind = ArrayType
		t.Lengths = ast.All[*ConstExpr](children)
		t.Elem, _ = ast.Find[*Type](children)
	case "RECORD":
		t.Kind = RecordType
		t.Extends, _ = ast.Find[*Qualident](children)
		t.Fields = ast.All[*FieldList](children)
	case "POINTER":
		t.Kind = PointerType
		t.Elem, _ = ast.Find[*Type](children)
	case "PROCEDURE":
		t.Kind = ProcedureType
		t.Params, _ = ast.Find[*FormalPars](children)
	default:
		t.Kind = NamedType
		t.Name, _ = ast.Find[*Qualident](children)
	}
	return t, nil
}

type FieldList struct {
	ast.Base
	Names *IdentList
	Type  *Type
}

func newFieldList(n parse.Node) (parse.Node, error) {
	f := &FieldList{Base: ast.NewBase(n)}
	f.Names, _ = ast.Find[*IdentList](f.Children())
	f.Type, _ = ast.Find[*Type](f.Children())
	return f, nil
}

type IdentList struct {
	ast.Base
	Names []*IdentDef
}

func newIdentList(n parse.Node) (parse.Node, error) {
	l := &IdentList{Base: ast.NewBase(n)}
	l.Names = ast.All[*IdentDef](l.Children())
	return l, nil
}

// Export marks of an IdentDef.
const (
	Exported = "*"
	ReadOnly = "-"
)

// IdentDef is a declared name with its optional export mark.
type IdentDef struct {
	ast.Base
	Ident *Ident
	Mark  string
}

func newIdentDef(n parse.Node) (parse.Node, error) {
	d := &IdentDef{Base: ast.NewBase(n)}
	d.Ident, _ = ast.Find[*Ident](d.Children())
	if marks := ast.Terminals(d.Children()); len(marks) > 0 {
		d.Mark = marks[0]
	}
	return d, nil
}

// Name returns the declared name.
func (d *IdentDef) Name() string { return d.Ident.Name }

// Qualident is a possibly module-qualified name.
type Qualident struct {
	ast.Base
	Module string
	Name   string
}

func newQualident(n parse.Node) (parse.Node, error) {
	q := &Qualident{Base: ast.NewBase(n)}
	idents := ast.All[*Ident](q.Children())
	switch len(idents) {
	case 1:
		q.Name = idents[0].Name
	case 2:
		q.Module = idents[0].Name
		q.Name = idents[1].Name
	}
	return q, nil
}

func (q *Qualident) String() string {
	if q.Module != "" {
		return q.Module + "." + q.Name
	}
	return q.Name
}

func hasTerminal(nodes []parse.Node, text string) bool {
	for _, t := range ast.Terminals(nodes) {
		if t == text {
			return true
		}
	}
	return false
}
