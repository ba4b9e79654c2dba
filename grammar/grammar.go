// Package grammar builds parse rulesets from EBNF grammar text.
//
// Grammars use the notation of golang.org/x/exp/ebnf. Productions whose
// name starts with a lowercase letter are lexical: their bodies are matched
// without skipping whitespace and each match becomes a single leaf.
package grammar

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/obc/parse"
	xebnf "golang.org/x/exp/ebnf"
)

type config struct {
	reserveIn    string
	notBefore    map[string][]string
	commentOpen  string
	commentClose string
	maxDepth     int
}

// Option configures how a grammar is compiled.
type Option func(*config)

// ReserveKeywords reserves every all-letter token used by a syntactic
// production on the lexical rule name, so that name never matches a
// keyword.
func ReserveKeywords(name string) Option {
	return func(c *config) { c.reserveIn = name }
}

// Comments makes whitespace skipping also skip comments between open and
// close.
func Comments(open, close string) Option {
	return func(c *config) {
		c.commentOpen = open
		c.commentClose = close
	}
}

// NotBefore makes the lexical production name fail when it is directly
// followed by any of texts.
func NotBefore(name string, texts ...string) Option {
	return func(c *config) {
		if c.notBefore == nil {
			c.notBefore = make(map[string][]string)
		}
		c.notBefore[name] = append(c.notBefore[name], texts...)
	}
}

// MaxDepth limits rule nesting during a parse.
func MaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// LoadFile reads, verifies and compiles the grammar in filename.
func LoadFile(filename, start string, opts ...Option) (*parse.Ruleset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Load(filename, f, start, opts...)
}

// Load reads grammar text from r, verifies it against the start production
// and compiles it into a frozen Ruleset.
func Load(filename string, r io.Reader, start string, opts ...Option) (*parse.Ruleset, error) {
	g, err := xebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := xebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	return Compile(g, start, opts...)
}

// Compile turns a parsed grammar into a frozen Ruleset with entry rule
// start.
func Compile(g xebnf.Grammar, start string, opts ...Option) (*parse.Ruleset, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	var rsOpts []parse.Option
	if c.commentOpen != "" {
		rsOpts = append(rsOpts, parse.WithComments(c.commentOpen, c.commentClose))
	}
	if c.maxDepth > 0 {
		rsOpts = append(rsOpts, parse.WithMaxDepth(c.maxDepth))
	}
	rs := parse.NewRuleset(start, rsOpts...)

	names := slices.Sorted(maps.Keys(g))
	for _, name := range names {
		prod := g[name]
		body, err := compileExpr(prod.Expr)
		if err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}
		if IsLexical(name) {
			rs.DefineLexical(name, body)
		} else {
			rs.Define(name, body)
		}
	}

	if c.reserveIn != "" {
		if !rs.IsLexical(c.reserveIn) {
			return nil, fmt.Errorf("reserve keywords: %q is not a lexical production", c.reserveIn)
		}
		rs.Reserve(c.reserveIn, Keywords(g)...)
	}
	for _, name := range slices.Sorted(maps.Keys(c.notBefore)) {
		if !rs.IsLexical(name) {
			return nil, fmt.Errorf("not before: %q is not a lexical production", name)
		}
		rs.NotBefore(name, c.notBefore[name]...)
	}

	if err := rs.Freeze(); err != nil {
		return nil, fmt.Errorf("compile grammar: %w", err)
	}
	return rs, nil
}

// IsLexical reports whether a production name denotes a lexical production.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// Keywords returns the sorted all-letter tokens used by syntactic
// productions.
func Keywords(g xebnf.Grammar) []string {
	seen := make(map[string]bool)
	for name, prod := range g {
		if IsLexical(name) {
			continue
		}
		visit(prod.Expr, func(e xebnf.Expression) {
			if tok, ok := e.(*xebnf.Token); ok && isWord(tok.String) {
				seen[tok.String] = true
			}
		})
	}
	return slices.Sorted(maps.Keys(seen))
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !unicode.IsLetter(ch) {
			return false
		}
	}
	return true
}

func visit(expr xebnf.Expression, fn func(xebnf.Expression)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch e := expr.(type) {
	case xebnf.Sequence:
		for _, item := range e {
			visit(item, fn)
		}
	case xebnf.Alternative:
		for _, alt := range e {
			visit(alt, fn)
		}
	case *xebnf.Group:
		visit(e.Body, fn)
	case *xebnf.Option:
		visit(e.Body, fn)
	case *xebnf.Repetition:
		visit(e.Body, fn)
	}
}

func compileExpr(expr xebnf.Expression) (parse.Parser, error) {
	switch e := expr.(type) {
	case nil:
		return parse.Lit(""), nil

	case *xebnf.Name:
		return parse.Ref(e.String), nil

	case *xebnf.Token:
		return parse.Lit(e.String), nil

	case *xebnf.Range:
		lo, err := singleRune(e.Begin)
		if err != nil {
			return nil, err
		}
		hi, err := singleRune(e.End)
		if err != nil {
			return nil, err
		}
		return parse.Class(parse.R(lo, hi)), nil

	case xebnf.Sequence:
		items, err := compileList(e)
		if err != nil {
			return nil, err
		}
		return parse.Seq(items...), nil

	case xebnf.Alternative:
		alts, err := compileList(e)
		if err != nil {
			return nil, err
		}
		return parse.Alt(alts...), nil

	case *xebnf.Group:
		return compileExpr(e.Body)

	case *xebnf.Option:
		body, err := compileExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return parse.Optional(body), nil

	case *xebnf.Repetition:
		body, err := compileExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return parse.Many(body), nil

	case *xebnf.Bad:
		return nil, fmt.Errorf("%s: %s", e.Pos(), e.Error)

	default:
		return nil, fmt.Errorf("%s: unsupported expression %T", expr.Pos(), expr)
	}
}

func compileList(exprs []xebnf.Expression) ([]parse.Parser, error) {
	out := make([]parse.Parser, 0, len(exprs))
	for _, expr := range exprs {
		p, err := compileExpr(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func singleRune(tok *xebnf.Token) (rune, error) {
	ch, size := utf8.DecodeRuneInString(tok.String)
	if size == 0 || size != len(tok.String) {
		return 0, fmt.Errorf("%s: range bound %q is not a single character", tok.Pos(), tok.String)
	}
	return ch, nil
}
