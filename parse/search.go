package parse

import (
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/btree"
)

// offsetSet is an ordered set of end offsets. Sets returned by search are
// shared through the memo and must not be modified by callers.
type offsetSet struct {
	tree btree.Set[int]
}

func singleOffset(off int) *offsetSet {
	s := &offsetSet{}
	s.tree.Insert(off)
	return s
}

func (s *offsetSet) add(off int) { s.tree.Insert(off) }

func (s *offsetSet) len() int { return s.tree.Len() }

func (s *offsetSet) each(fn func(off int)) {
	s.tree.Scan(func(off int) bool {
		fn(off)
		return true
	})
}

func (s *offsetSet) union(o *offsetSet) {
	o.each(s.add)
}

func (s *offsetSet) keys() []int {
	out := make([]int, 0, s.len())
	s.each(func(off int) { out = append(out, off) })
	return out
}

func (s *offsetSet) max() (int, bool) {
	furthest, found := 0, false
	s.each(func(off int) {
		furthest, found = off, true
	})
	return furthest, found
}

// errorLength is the width of the character at off, or 0 at end of input.
func (r *run) errorLength(off int) int {
	if off >= len(r.src) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(r.src[off:])
	return size
}

func (r *run) expected(what string, off int) *Error {
	return Errorf(off, r.errorLength(off), "expected %s", what)
}

func (r *run) expectedEnd(off int) *Error {
	return Errorf(off, r.errorLength(off), "expected end of input, found %s", r.describe(off))
}

func (r *run) describe(off int) string {
	if off >= len(r.src) {
		return "end of input"
	}
	ch, _ := utf8.DecodeRuneInString(r.src[off:])
	return strconv.QuoteRune(ch)
}

// search explores every way p can partially match at pos. Unlike match and
// parse it does not stop at the first alternative that works: it returns
// every reachable end offset and the failure that got furthest.
func (r *run) search(p Parser, pos Position) (*offsetSet, *Error) {
	switch p := p.(type) {
	case *Terminal:
		start, next, ok := r.matchTerminal(p, pos)
		if !ok {
			return &offsetSet{}, r.expected(p.String(), start)
		}
		return singleOffset(next.Offset), nil
	case *RuleRef:
		return r.searchRule(p.Name, pos)
	case *Concat:
		lefts, err := r.search(p.Left, pos)
		out := &offsetSet{}
		lefts.each(func(j int) {
			rights, rerr := r.search(p.Right, pos.at(j))
			out.union(rights)
			err = Choose(err, rerr)
		})
		return out, err
	case *EitherOr:
		lefts, lerr := r.search(p.Left, pos)
		rights, rerr := r.search(p.Right, pos)
		out := &offsetSet{}
		out.union(lefts)
		out.union(rights)
		return out, Choose(lerr, rerr)
	case *Repeat:
		return r.searchRepeat(p, pos)
	default:
		panic("parse: unknown parser type")
	}
}

func (r *run) searchRepeat(p *Repeat, pos Position) (*offsetSet, *Error) {
	var err *Error
	out := &offsetSet{}
	frontier := singleOffset(pos.Offset)
	for n := 0; ; n++ {
		if n >= p.Min {
			out.union(frontier)
		}
		if frontier.len() == 0 || (p.Max != Unbounded && n == p.Max) {
			break
		}
		next := &offsetSet{}
		frontier.each(func(j int) {
			ends, ierr := r.search(p.Inner, pos.at(j))
			err = Choose(err, ierr)
			ends.each(func(k int) {
				// past the minimum only progress counts, which bounds
				// the loop by the input length
				if k > j || n < p.Min {
					next.add(k)
				}
			})
		})
		frontier = next
	}
	return out, err
}

func (r *run) searchRule(name string, pos Position) (*offsetSet, *Error) {
	key := memoKey{rule: name, offset: pos.Offset, skip: pos.SkipWhitespace}
	if res, ok := r.found[key]; ok {
		return res.offsets, res.err
	}
	if r.found == nil {
		r.found = make(map[memoKey]searchResult)
		r.searching = make(map[memoKey]bool)
	}
	rl := r.rule(name)
	start := r.ruleStart(pos)

	// tokens are atomic: the longest match or nothing, never a prefix
	if rl.lexical {
		offsets := &offsetSet{}
		var err *Error
		if next, ok := r.matchRule(name, pos); ok {
			offsets.add(next.Offset)
		} else {
			err = r.expected(name, start)
		}
		r.found[key] = searchResult{offsets: offsets, err: err}
		return offsets, err
	}

	// re-entering a rule at the same place makes no progress
	if r.searching[key] {
		return &offsetSet{}, nil
	}
	if !r.enter(pos.Offset) {
		return &offsetSet{}, Errorf(pos.Offset, 0, "nesting too deep (limit %d)", r.g.maxDepth)
	}
	r.searching[key] = true

	offsets, err := r.search(rl.body, pos)
	if (err == nil && offsets.len() == 0) || (err != nil && err.Index <= start) {
		err = r.expected(name, start)
	}

	delete(r.searching, key)
	r.leave()
	r.found[key] = searchResult{offsets: offsets, err: err}
	return offsets, err
}
