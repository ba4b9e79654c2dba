package oberon

import (
	"strconv"
	"strings"

	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/parse"
	"github.com/dhamidi/obc/types"
)

type Ident struct {
	ast.Base
	Name string
}

func newIdent(n parse.Node) (parse.Node, error) {
	i := &Ident{Base: ast.NewBase(n)}
	i.Name = i.Text()
	return i, nil
}

// Integer is an integer literal, decimal or hexadecimal with an H suffix.
type Integer struct {
	ast.Base
	Value int64
}

func newInteger(n parse.Node) (parse.Node, error) {
	i := &Integer{Base: ast.NewBase(n)}
	text, base := i.Text(), 10
	if hex, ok := strings.CutSuffix(text, "H"); ok {
		text, base = hex, 16
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return nil, parse.SemanticErrorf(i.Span(), "integer literal %s out of range", i.Text())
	}
	i.Value = v
	return i, nil
}

// FinalType returns the smallest integer type that holds the value.
func (i *Integer) FinalType() types.Type { return types.IntegerFor(i.Value) }

// Real is a real literal. A D scale factor makes it LONGREAL.
type Real struct {
	ast.Base
	Value float64
	Long  bool
}

func newReal(n parse.Node) (parse.Node, error) {
	r := &Real{Base: ast.NewBase(n)}
	text := r.Text()
	if strings.ContainsRune(text, 'D') {
		r.Long = true
		text = strings.Replace(text, "D", "E", 1)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, parse.SemanticErrorf(r.Span(), "real literal %s out of range", r.Text())
	}
	r.Value = v
	return r, nil
}

func (r *Real) FinalType() types.Type {
	if r.Long {
		return types.LongReal
	}
	return types.ShortReal
}

// Character is a character given by its hexadecimal code, as in 0DX.
type Character struct {
	ast.Base
	Value rune
}

func newCharacter(n parse.Node) (parse.Node, error) {
	c := &Character{Base: ast.NewBase(n)}
	code, err := strconv.ParseUint(strings.TrimSuffix(c.Text(), "X"), 16, 32)
	if err != nil || code > 0xFFFF {
		return nil, parse.SemanticErrorf(c.Span(), "character literal %s out of range", c.Text())
	}
	c.Value = rune(code)
	return c, nil
}

func (*Character) FinalType() types.Type { return types.Char }

// String is a quoted string literal. Value excludes the quotes.
type String struct {
	ast.Base
	Value string
}

func newString(n parse.Node) (parse.Node, error) {
	s := &String{Base: ast.NewBase(n)}
	text := s.Text()
	s.Value = text[1 : len(text)-1]
	return s, nil
}

// FinalType returns CHAR for one-character strings, which Oberon treats
// as characters, and a character array holding the terminating 0X
// otherwise.
func (s *String) FinalType() types.Type {
	if len(s.Value) == 1 {
		return types.Char
	}
	return &types.Array{Elem: types.Char, Length: len(s.Value) + 1}
}
