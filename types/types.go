// Package types describes Oberon-2 types and which operands they can be
// compared with.
package types

import "fmt"

// Type is an Oberon-2 type.
type Type interface {
	// CanTestEquality reports whether = and # accept operands of this type
	// and other.
	CanTestEquality(other Type) bool
	// CanCompare reports whether <, <=, > and >= accept operands of this
	// type and other.
	CanCompare(other Type) bool
	String() string
}

// Pointer is POINTER TO Base. The nil pointer has no base type.
type Pointer struct {
	Base Type
}

// Nil is the type of NIL.
var Nil = &Pointer{}

func (p *Pointer) CanTestEquality(other Type) bool {
	o, ok := other.(*Pointer)
	return ok && (o.Base == nil || o.Base == p.Base)
}

func (p *Pointer) CanCompare(Type) bool { return false }

func (p *Pointer) String() string {
	if p.Base == nil {
		return "NIL"
	}
	return "POINTER TO " + p.Base.String()
}

type charType struct{}

// Char is CHAR.
var Char Type = charType{}

func (charType) CanTestEquality(other Type) bool { return Char.CanCompare(other) }

func (charType) CanCompare(other Type) bool {
	return other == Char || isCharArray(other)
}

func (charType) String() string { return "CHAR" }

// Array is ARRAY Length OF Elem. Open arrays have Length -1.
type Array struct {
	Elem   Type
	Length int
}

// OpenArray returns ARRAY OF elem.
func OpenArray(elem Type) *Array {
	return &Array{Elem: elem, Length: -1}
}

func (a *Array) CanTestEquality(other Type) bool { return a.CanCompare(other) }

// CanCompare is true only for character arrays against characters or other
// character arrays.
func (a *Array) CanCompare(other Type) bool {
	if a.Elem != Char {
		return false
	}
	return other == Char || isCharArray(other)
}

func (a *Array) String() string {
	if a.Length > -1 {
		return fmt.Sprintf("ARRAY %d OF %s", a.Length, a.Elem)
	}
	return "ARRAY OF " + a.Elem.String()
}

func isCharArray(t Type) bool {
	a, ok := t.(*Array)
	return ok && a.Elem == Char
}

type setType struct{}

// Set is SET.
var Set Type = setType{}

func (setType) CanTestEquality(other Type) bool { return other == Set }
func (setType) CanCompare(Type) bool            { return false }
func (setType) String() string                  { return "SET" }

type booleanType struct{}

// Boolean is BOOLEAN.
var Boolean Type = booleanType{}

func (booleanType) CanTestEquality(other Type) bool { return other == Boolean }
func (booleanType) CanCompare(Type) bool            { return false }
func (booleanType) String() string                  { return "BOOLEAN" }

// Numeric is implemented by the integer and real types.
type Numeric interface {
	Type
	// Size is the storage size in bytes.
	Size() int
	isNumeric()
}

func isNumeric(t Type) bool {
	_, ok := t.(Numeric)
	return ok
}

// Integer is one of the integer types, identified by its size in bytes.
type Integer int

const (
	Byte     Integer = 1
	ShortInt Integer = 2
	Int      Integer = 4
	LongInt  Integer = 8
)

func (i Integer) Size() int                     { return int(i) }
func (Integer) isNumeric()                      {}
func (Integer) CanTestEquality(other Type) bool { return isNumeric(other) }
func (Integer) CanCompare(other Type) bool      { return isNumeric(other) }

func (i Integer) String() string {
	switch i {
	case Byte:
		return "BYTE"
	case ShortInt:
		return "SHORTINT"
	case Int:
		return "INTEGER"
	case LongInt:
		return "LONGINT"
	default:
		return fmt.Sprintf("Integer(%d)", int(i))
	}
}

// IntegerFor returns the smallest integer type that holds v.
func IntegerFor(v int64) Integer {
	switch {
	case -1<<7 <= v && v < 1<<7:
		return Byte
	case -1<<15 <= v && v < 1<<15:
		return ShortInt
	case -1<<31 <= v && v < 1<<31:
		return Int
	default:
		return LongInt
	}
}

// Real is one of the real types, identified by its size in bytes.
type Real int

const (
	ShortReal Real = 4
	LongReal  Real = 8
)

func (r Real) Size() int                     { return int(r) }
func (Real) isNumeric()                      {}
func (Real) CanTestEquality(other Type) bool { return isNumeric(other) }
func (Real) CanCompare(other Type) bool      { return isNumeric(other) }

func (r Real) String() string {
	switch r {
	case ShortReal:
		return "REAL"
	case LongReal:
		return "LONGREAL"
	default:
		return fmt.Sprintf("Real(%d)", int(r))
	}
}

// Largest returns the type both operands of a numeric operation are
// converted to: the larger of two integers or two reals, or the real one
// when the kinds are mixed.
func Largest(a, b Numeric) Numeric {
	ra, aReal := a.(Real)
	rb, bReal := b.(Real)
	switch {
	case aReal && bReal:
		return max(ra, rb)
	case aReal:
		return a
	case bReal:
		return b
	}
	return max(a.(Integer), b.(Integer))
}
