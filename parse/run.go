package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type memoKey struct {
	rule   string
	offset int
	skip   bool
}

type searchResult struct {
	offsets *offsetSet
	err     *Error
}

// run holds the state of one parse of one input. Rulesets and parsers are
// shared; runs never are.
type run struct {
	g   *Ruleset
	src string

	depth      int
	overflow   bool
	overflowAt int

	// rule match results by start: end offset, or -1 for no match
	matches map[memoKey]int

	searching map[memoKey]bool
	found     map[memoKey]searchResult
}

func newRun(g *Ruleset, src string) *run {
	return &run{
		g:       g,
		src:     src,
		matches: make(map[memoKey]int),
	}
}

func (r *run) enter(offset int) bool {
	if r.depth >= r.g.maxDepth {
		if !r.overflow {
			r.overflow = true
			r.overflowAt = offset
		}
		return false
	}
	r.depth++
	return true
}

func (r *run) leave() {
	r.depth--
}

// rule looks up a rule referenced by name. Rulesets check their own
// references at Freeze; a parser passed in from outside may still name a
// rule that does not exist.
func (r *run) rule(name string) *rule {
	rl, ok := r.g.rules[name]
	if !ok {
		panic(fmt.Sprintf("parse: undefined rule %q", name))
	}
	return rl
}

// skipTrivia returns the first offset at or after off that is not
// whitespace or inside a comment.
func (r *run) skipTrivia(off int) int {
	for off < len(r.src) {
		ch, size := utf8.DecodeRuneInString(r.src[off:])
		if unicode.IsSpace(ch) {
			off += size
			continue
		}
		if r.g.commentOpen != "" && strings.HasPrefix(r.src[off:], r.g.commentOpen) {
			off = r.skipComment(off)
			continue
		}
		break
	}
	return off
}

// skipComment skips a possibly nested comment starting at off. An
// unterminated comment runs to the end of the input.
func (r *run) skipComment(off int) int {
	open, close := r.g.commentOpen, r.g.commentClose
	depth := 0
	for off < len(r.src) {
		switch {
		case strings.HasPrefix(r.src[off:], open):
			depth++
			off += len(open)
		case strings.HasPrefix(r.src[off:], close):
			depth--
			off += len(close)
			if depth == 0 {
				return off
			}
		default:
			_, size := utf8.DecodeRuneInString(r.src[off:])
			off += size
		}
	}
	return off
}

func isWordRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// scanTerminal returns the length of t matched at off. With boundary set,
// a literal ending in a word character must not run into another one.
func (r *run) scanTerminal(t *Terminal, off int, boundary bool) (int, bool) {
	if t.Class != nil {
		if off >= len(r.src) {
			return 0, false
		}
		ch, size := utf8.DecodeRuneInString(r.src[off:])
		if ch == utf8.RuneError && size <= 1 {
			return 0, false
		}
		return size, t.Class.Contains(ch)
	}
	if !strings.HasPrefix(r.src[off:], t.Literal) {
		return 0, false
	}
	n := len(t.Literal)
	if boundary && n > 0 && off+n < len(r.src) {
		last, _ := utf8.DecodeLastRuneInString(t.Literal)
		next, _ := utf8.DecodeRuneInString(r.src[off+n:])
		if isWordRune(last) && isWordRune(next) {
			return 0, false
		}
	}
	return n, true
}

// matchTerminal returns where the terminal's text starts (after trivia)
// and the position after it.
func (r *run) matchTerminal(t *Terminal, pos Position) (int, Position, bool) {
	if t.Class == nil && t.Literal == "" {
		return pos.Offset, pos, true
	}
	start := pos.Offset
	if pos.SkipWhitespace {
		start = r.skipTrivia(start)
	}
	n, ok := r.scanTerminal(t, start, pos.SkipWhitespace)
	if !ok {
		return start, pos, false
	}
	return start, pos.at(start + n), true
}

// ruleStart returns the offset where the named rule's own text begins.
func (r *run) ruleStart(pos Position) int {
	if pos.SkipWhitespace {
		return r.skipTrivia(pos.Offset)
	}
	return pos.Offset
}

func (r *run) match(p Parser, pos Position) (Position, bool) {
	switch p := p.(type) {
	case *Terminal:
		_, next, ok := r.matchTerminal(p, pos)
		return next, ok
	case *RuleRef:
		return r.matchRule(p.Name, pos)
	case *Concat:
		next, ok := r.match(p.Left, pos)
		if !ok {
			return pos, false
		}
		next, ok = r.match(p.Right, next)
		if !ok {
			return pos, false
		}
		return next, true
	case *EitherOr:
		if next, ok := r.match(p.Left, pos); ok {
			return next, true
		}
		if next, ok := r.match(p.Right, pos); ok {
			return next, true
		}
		return pos, false
	case *Repeat:
		cur, n := pos, 0
		for p.Max == Unbounded || n < p.Max {
			next, ok := r.match(p.Inner, cur)
			if !ok {
				break
			}
			n++
			if next.Offset == cur.Offset {
				// an empty match repeats forever; count the rest as done
				n = max(n, p.Min)
				break
			}
			cur = next
		}
		if n < p.Min {
			return pos, false
		}
		return cur, true
	default:
		panic("parse: unknown parser type")
	}
}

func (r *run) matchRule(name string, pos Position) (Position, bool) {
	key := memoKey{rule: name, offset: pos.Offset, skip: pos.SkipWhitespace}
	if end, ok := r.matches[key]; ok {
		if end < 0 {
			return pos, false
		}
		return pos.at(end), true
	}
	rl := r.rule(name)
	if !r.enter(pos.Offset) {
		return pos, false
	}
	defer r.leave()

	inner := pos
	start := pos.Offset
	if rl.lexical {
		start = r.ruleStart(pos)
		inner = Position{Offset: start}
	}
	next, ok := r.match(rl.body, inner)
	if ok && rl.reserved[r.src[start:next.Offset]] {
		ok = false
	}
	if ok && r.runsInto(rl, next.Offset) {
		ok = false
	}
	if !ok {
		r.matches[key] = -1
		return pos, false
	}
	r.matches[key] = next.Offset
	return pos.at(next.Offset), true
}

func (r *run) runsInto(rl *rule, end int) bool {
	for _, text := range rl.notBefore {
		if strings.HasPrefix(r.src[end:], text) {
			return true
		}
	}
	return false
}

func (r *run) parse(p Parser, pos Position) (Node, Position, bool) {
	switch p := p.(type) {
	case *Terminal:
		start, next, ok := r.matchTerminal(p, pos)
		if !ok {
			return nil, pos, false
		}
		if next.Offset == start {
			return nil, next, true
		}
		return &Leaf{Start: start, Text: r.src[start:next.Offset]}, next, true
	case *RuleRef:
		return r.parseRule(p.Name, pos)
	case *Concat:
		left, next, ok := r.parse(p.Left, pos)
		if !ok {
			return nil, pos, false
		}
		right, next, ok := r.parse(p.Right, next)
		if !ok {
			return nil, pos, false
		}
		return concat(left, right), next, true
	case *EitherOr:
		// commit to whichever side matches here, independently of how
		// the caller decided that this parser matches
		if _, ok := r.match(p.Left, pos); ok {
			return r.parse(p.Left, pos)
		}
		return r.parse(p.Right, pos)
	case *Repeat:
		var acc *Branch
		cur, n := pos, 0
		for p.Max == Unbounded || n < p.Max {
			// the last iteration fails; find that out without building nodes
			if _, ok := r.match(p.Inner, cur); !ok {
				break
			}
			node, next, ok := r.parse(p.Inner, cur)
			if !ok {
				break
			}
			n++
			if node != nil {
				if acc == nil {
					acc = &Branch{}
				}
				acc.Nodes = append(acc.Nodes, node)
			}
			if next.Offset == cur.Offset {
				n = max(n, p.Min)
				break
			}
			cur = next
		}
		if n < p.Min {
			return nil, pos, false
		}
		if acc == nil {
			return nil, cur, true
		}
		return acc, cur, true
	default:
		panic("parse: unknown parser type")
	}
}

func (r *run) parseRule(name string, pos Position) (Node, Position, bool) {
	rl := r.rule(name)
	if rl.lexical {
		next, ok := r.matchRule(name, pos)
		if !ok {
			return nil, pos, false
		}
		start := r.ruleStart(pos)
		if next.Offset == start {
			return nil, next, true
		}
		return &Leaf{Start: start, Text: r.src[start:next.Offset], Rule: name}, next, true
	}

	if !r.enter(pos.Offset) {
		return nil, pos, false
	}
	defer r.leave()

	node, next, ok := r.parse(rl.body, pos)
	if !ok {
		return nil, pos, false
	}
	return tag(node, name), next, true
}
