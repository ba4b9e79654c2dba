package parse

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultMaxDepth is the default limit on nested rule references during a
// single parse.
const DefaultMaxDepth = 2000

type rule struct {
	name     string
	body     Parser
	lexical  bool
	reserved map[string]bool
	// the match fails when the input after it starts with one of these
	notBefore []string
}

// Ruleset is a named collection of grammar rules with one entry rule.
//
// Rules are added with Define and DefineLexical, then the set is sealed
// with Freeze. A frozen Ruleset is read-only and safe for concurrent use.
type Ruleset struct {
	entry        string
	rules        map[string]*rule
	order        []string
	commentOpen  string
	commentClose string
	maxDepth     int
	frozen       bool
}

// Option configures a Ruleset.
type Option func(*Ruleset)

// WithComments makes whitespace skipping also skip comments delimited by
// open and close. Comments may nest.
func WithComments(open, close string) Option {
	return func(g *Ruleset) {
		g.commentOpen = open
		g.commentClose = close
	}
}

// WithMaxDepth limits the number of nested rule references in one parse.
func WithMaxDepth(n int) Option {
	return func(g *Ruleset) {
		if n > 0 {
			g.maxDepth = n
		}
	}
}

// NewRuleset returns an empty Ruleset whose entry rule is entry.
func NewRuleset(entry string, opts ...Option) *Ruleset {
	g := &Ruleset{
		entry:    entry,
		rules:    make(map[string]*rule),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Define adds a syntactic rule. Terminals inside it skip leading
// whitespace and comments.
func (g *Ruleset) Define(name string, body Parser) *Ruleset {
	g.add(&rule{name: name, body: body})
	return g
}

// DefineLexical adds a lexical rule. Its body is matched without skipping
// whitespace, and a match always yields a single Leaf.
func (g *Ruleset) DefineLexical(name string, body Parser) *Ruleset {
	g.add(&rule{name: name, body: body, lexical: true})
	return g
}

func (g *Ruleset) add(r *rule) {
	if g.frozen {
		panic(fmt.Sprintf("parse: define %q on frozen ruleset", r.name))
	}
	if _, dup := g.rules[r.name]; dup {
		panic(fmt.Sprintf("parse: rule %q defined twice", r.name))
	}
	if r.body == nil {
		r.body = Lit("")
	}
	g.rules[r.name] = r
	g.order = append(g.order, r.name)
}

// Reserve makes the lexical rule name fail on any of words. It is how
// identifiers exclude keywords.
func (g *Ruleset) Reserve(name string, words ...string) *Ruleset {
	if g.frozen {
		panic("parse: reserve on frozen ruleset")
	}
	r, ok := g.rules[name]
	if !ok {
		panic(fmt.Sprintf("parse: reserve on undefined rule %q", name))
	}
	if !r.lexical {
		panic(fmt.Sprintf("parse: reserve on syntactic rule %q", name))
	}
	if r.reserved == nil {
		r.reserved = make(map[string]bool, len(words))
	}
	for _, w := range words {
		r.reserved[w] = true
	}
	return g
}

// NotBefore makes the lexical rule name fail when the input right after
// its match starts with any of texts. Oberon uses it to read "1..9" as an
// integer range rather than the real "1." followed by ".9".
func (g *Ruleset) NotBefore(name string, texts ...string) *Ruleset {
	if g.frozen {
		panic("parse: not-before on frozen ruleset")
	}
	r, ok := g.rules[name]
	if !ok {
		panic(fmt.Sprintf("parse: not-before on undefined rule %q", name))
	}
	if !r.lexical {
		panic(fmt.Sprintf("parse: not-before on syntactic rule %q", name))
	}
	r.notBefore = append(r.notBefore, texts...)
	return g
}

// Freeze checks that the entry rule exists and that every rule reference
// resolves, then seals the Ruleset.
func (g *Ruleset) Freeze() error {
	var errs []error
	if _, ok := g.rules[g.entry]; !ok {
		errs = append(errs, fmt.Errorf("entry rule %q is not defined", g.entry))
	}
	for _, name := range g.order {
		walk(g.rules[name].body, func(p Parser) {
			if ref, ok := p.(*RuleRef); ok {
				if _, found := g.rules[ref.Name]; !found {
					errs = append(errs, fmt.Errorf("rule %q refers to undefined rule %q", name, ref.Name))
				}
			}
		})
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	g.frozen = true
	return nil
}

// Entry returns the name of the entry rule.
func (g *Ruleset) Entry() string { return g.entry }

// Rules returns the rule names in definition order.
func (g *Ruleset) Rules() []string { return slices.Clone(g.order) }

// Rule returns the body of the named rule.
func (g *Ruleset) Rule(name string) (Parser, bool) {
	r, ok := g.rules[name]
	if !ok {
		return nil, false
	}
	return r.body, true
}

// IsLexical reports whether name is a lexical rule.
func (g *Ruleset) IsLexical(name string) bool {
	r, ok := g.rules[name]
	return ok && r.lexical
}

// Tagged returns the rule names that can label nodes of a parse tree: the
// syntactic rules, and the lexical rules referenced from syntactic ones.
// Lexical rules used only by other lexical rules never surface.
func (g *Ruleset) Tagged() []string {
	surfaced := map[string]bool{g.entry: true}
	for _, name := range g.order {
		r := g.rules[name]
		if r.lexical {
			continue
		}
		surfaced[name] = true
		walk(r.body, func(p Parser) {
			if ref, ok := p.(*RuleRef); ok {
				surfaced[ref.Name] = true
			}
		})
	}
	var out []string
	for _, name := range g.order {
		if surfaced[name] {
			out = append(out, name)
		}
	}
	return out
}

func (g *Ruleset) mustBeFrozen() {
	if !g.frozen {
		panic("parse: ruleset used before Freeze")
	}
}

// IsMatch reports whether p matches src at pos, and where the match ends.
func (g *Ruleset) IsMatch(p Parser, src string, pos Position) (Position, bool) {
	g.mustBeFrozen()
	r := newRun(g, src)
	next, ok := r.match(p, pos)
	if !ok || r.overflow {
		return pos, false
	}
	return next, true
}

// Parse matches p at pos and builds its parse tree. The node is nil when
// p matched the empty string.
func (g *Ruleset) Parse(p Parser, src string, pos Position) (Node, Position, bool) {
	g.mustBeFrozen()
	r := newRun(g, src)
	node, next, ok := r.parse(p, pos)
	if !ok || r.overflow {
		return nil, pos, false
	}
	return node, next, true
}

// FindSyntaxError explores every partial match of p at pos. It returns the
// end offsets of all partial matches in ascending order, and the failure
// that got furthest into the input.
func (g *Ruleset) FindSyntaxError(p Parser, src string, pos Position) ([]int, *Error) {
	g.mustBeFrozen()
	r := newRun(g, src)
	offsets, err := r.search(p, pos)
	return offsets.keys(), err
}

// ParseEntry parses all of src with the entry rule.
func (g *Ruleset) ParseEntry(src string) (Node, error) {
	return g.ParseRule(g.entry, src)
}

// ParseRule parses all of src with the named rule. Trailing whitespace and
// comments are allowed. On failure the returned error is a *Error pointing
// at the most plausible location.
func (g *Ruleset) ParseRule(name, src string) (Node, error) {
	g.mustBeFrozen()
	if _, ok := g.rules[name]; !ok {
		return nil, fmt.Errorf("parse: undefined rule %q", name)
	}
	ref := Ref(name)
	pos := Start()

	r := newRun(g, src)
	node, next, ok := r.parse(ref, pos)
	if r.overflow {
		return nil, Errorf(r.overflowAt, 0, "nesting too deep (limit %d)", g.maxDepth)
	}
	var trailing *Error
	if ok {
		end := r.skipTrivia(next.Offset)
		if end == len(src) {
			return node, nil
		}
		trailing = r.expectedEnd(end)
	}

	offsets, err := r.search(ref, pos)
	if r.overflow {
		return nil, Errorf(r.overflowAt, 0, "nesting too deep (limit %d)", g.maxDepth)
	}
	if furthest, found := offsets.max(); found {
		if end := r.skipTrivia(furthest); end < len(src) {
			trailing = Choose(trailing, r.expectedEnd(end))
		}
	}
	if best := Choose(err, trailing); best != nil {
		return nil, best
	}
	return nil, Errorf(0, 0, "invalid input")
}
