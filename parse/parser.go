package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Unbounded is the Max of a Repeat without an upper limit.
const Unbounded = -1

// Parser is a grammar expression. The set of implementations is closed:
// *Terminal, *RuleRef, *Concat, *EitherOr and *Repeat.
type Parser interface {
	fmt.Stringer
	isParser()
}

// RuneRange is an inclusive range of runes.
type RuneRange struct {
	Lo, Hi rune
}

// R returns the inclusive range lo…hi.
func R(lo, hi rune) RuneRange {
	return RuneRange{Lo: lo, Hi: hi}
}

// CharClass matches a single rune that falls in one of its ranges, or in
// none of them when negated.
type CharClass struct {
	Ranges []RuneRange
	Negate bool
}

// Contains reports whether the class accepts r.
func (c *CharClass) Contains(r rune) bool {
	in := false
	for _, rr := range c.Ranges {
		if rr.Lo <= r && r <= rr.Hi {
			in = true
			break
		}
	}
	return in != c.Negate
}

func (c *CharClass) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	if c.Negate {
		sb.WriteByte('^')
	}
	for _, rr := range c.Ranges {
		sb.WriteRune(rr.Lo)
		if rr.Hi != rr.Lo {
			sb.WriteByte('-')
			sb.WriteRune(rr.Hi)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// Terminal matches literal text, or a single rune from a class. A Terminal
// with an empty Literal and no Class matches the empty string.
type Terminal struct {
	Literal string
	Class   *CharClass
}

// RuleRef refers to a rule by name. The name is resolved against the
// Ruleset each time the reference is matched.
type RuleRef struct {
	Name string
}

// Concat matches Left followed by Right.
type Concat struct {
	Left, Right Parser
}

// EitherOr matches Left, or Right when Left does not match.
type EitherOr struct {
	Left, Right Parser
}

// Repeat matches Inner between Min and Max times. Max is Unbounded for no
// upper limit.
type Repeat struct {
	Inner    Parser
	Min, Max int
}

func (*Terminal) isParser() {}
func (*RuleRef) isParser()  {}
func (*Concat) isParser()   {}
func (*EitherOr) isParser() {}
func (*Repeat) isParser()   {}

func (t *Terminal) String() string {
	if t.Class != nil {
		return t.Class.String()
	}
	return strconv.Quote(t.Literal)
}

func (r *RuleRef) String() string { return r.Name }

func (c *Concat) String() string {
	return c.Left.String() + " " + c.Right.String()
}

func (e *EitherOr) String() string {
	return "(" + e.Left.String() + " | " + e.Right.String() + ")"
}

func (r *Repeat) String() string {
	switch {
	case r.Min == 0 && r.Max == 1:
		return "[" + r.Inner.String() + "]"
	case r.Min == 0 && r.Max == Unbounded:
		return "{" + r.Inner.String() + "}"
	case r.Max == Unbounded:
		return fmt.Sprintf("%s<%d,>", r.Inner, r.Min)
	default:
		return fmt.Sprintf("%s<%d,%d>", r.Inner, r.Min, r.Max)
	}
}

// Lit matches the literal text s.
func Lit(s string) *Terminal {
	return &Terminal{Literal: s}
}

// Class matches one rune in any of the ranges.
func Class(ranges ...RuneRange) *Terminal {
	return &Terminal{Class: &CharClass{Ranges: ranges}}
}

// NotClass matches one rune outside all of the ranges.
func NotClass(ranges ...RuneRange) *Terminal {
	return &Terminal{Class: &CharClass{Ranges: ranges, Negate: true}}
}

// Ref refers to the rule called name.
func Ref(name string) *RuleRef {
	return &RuleRef{Name: name}
}

// Seq matches ps in order. It folds to the left, so Seq(a, b, c) is
// Concat(Concat(a, b), c). An empty Seq matches the empty string.
func Seq(ps ...Parser) Parser {
	if len(ps) == 0 {
		return Lit("")
	}
	p := ps[0]
	for _, next := range ps[1:] {
		p = &Concat{Left: p, Right: next}
	}
	return p
}

// Alt matches the first of ps that matches.
func Alt(ps ...Parser) Parser {
	switch len(ps) {
	case 0:
		panic("parse: Alt needs at least one alternative")
	case 1:
		return ps[0]
	}
	return &EitherOr{Left: ps[0], Right: Alt(ps[1:]...)}
}

// Many matches p zero or more times.
func Many(p Parser) *Repeat { return &Repeat{Inner: p, Min: 0, Max: Unbounded} }

// Many1 matches p one or more times.
func Many1(p Parser) *Repeat { return &Repeat{Inner: p, Min: 1, Max: Unbounded} }

// Optional matches p zero or one time.
func Optional(p Parser) *Repeat { return &Repeat{Inner: p, Min: 0, Max: 1} }

// Times matches p between min and max times.
func Times(p Parser, min, max int) *Repeat {
	if min < 0 || (max != Unbounded && max < min) {
		panic(fmt.Sprintf("parse: invalid repetition bounds %d..%d", min, max))
	}
	return &Repeat{Inner: p, Min: min, Max: max}
}

// walk calls fn for p and every parser nested in it. Rule references are
// not followed.
func walk(p Parser, fn func(Parser)) {
	fn(p)
	switch p := p.(type) {
	case *Concat:
		walk(p.Left, fn)
		walk(p.Right, fn)
	case *EitherOr:
		walk(p.Left, fn)
		walk(p.Right, fn)
	case *Repeat:
		walk(p.Inner, fn)
	}
}
