package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustFreeze(t *testing.T, g *Ruleset) *Ruleset {
	t.Helper()
	if err := g.Freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return g
}

// exprGrammar is Expr = Term {("+" | "-") Term}, Term = integer.
func exprGrammar(t *testing.T, opts ...Option) *Ruleset {
	g := NewRuleset("Expr", opts...)
	g.Define("Expr", Seq(Ref("Term"), Many(Seq(Alt(Lit("+"), Lit("-")), Ref("Term")))))
	g.Define("Term", Ref("integer"))
	g.DefineLexical("integer", Many1(Ref("digit")))
	g.DefineLexical("digit", Class(R('0', '9')))
	return mustFreeze(t, g)
}

func trivial(t *testing.T) *Ruleset {
	g := NewRuleset("S")
	g.Define("S", Lit("s"))
	return mustFreeze(t, g)
}

// shape renders a tree compactly: leaves as their text, branches as
// rule[children...].
func shape(n Node) string {
	switch n := n.(type) {
	case nil:
		return "<nil>"
	case *Leaf:
		if n.Rule != "" {
			return n.Rule + ":" + n.Text
		}
		return n.Text
	case *Branch:
		parts := make([]string, len(n.Nodes))
		for i, c := range n.Nodes {
			parts[i] = shape(c)
		}
		return n.Rule + "[" + strings.Join(parts, " ") + "]"
	default:
		return "?"
	}
}

func TestConsumptionAgreement(t *testing.T) {
	g := exprGrammar(t)
	tests := []struct {
		name  string
		p     Parser
		input string
	}{
		{"literal", Lit("ab"), "ab;"},
		{"class", Class(R('a', 'z')), "q1"},
		{"concat", Seq(Lit("a"), Lit("b"), Lit("c")), "a b c d"},
		{"either left", Alt(Lit("a"), Lit("ab")), "ab"},
		{"either right", Alt(Lit("x"), Lit("ab")), "ab"},
		{"repeat", Many(Lit("ab")), "ab ab a"},
		{"optional absent", Optional(Lit("z")), "ab"},
		{"rule", Ref("Expr"), "1+22-3 rest"},
		{"lexical rule", Ref("integer"), "123x"},
		{"whitespace", Seq(Lit("a"), Many(Lit("b"))), "a b  b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := Position{Offset: 0, SkipWhitespace: true}
			end, ok := g.IsMatch(tt.p, tt.input, start)
			if !ok {
				t.Fatalf("IsMatch(%s, %q) failed", tt.p, tt.input)
			}
			node, next, ok := g.Parse(tt.p, tt.input, start)
			if !ok {
				t.Fatalf("Parse(%s, %q) failed after IsMatch succeeded", tt.p, tt.input)
			}
			if next != end {
				t.Errorf("Parse ended at %v, IsMatch at %v", next, end)
			}
			if node == nil {
				if end.Offset != start.Offset {
					t.Errorf("absent node for non-empty match [%d, %d)", start.Offset, end.Offset)
				}
				return
			}
			if span := node.Span(); span.Start != 0 || span.End() != end.Offset {
				t.Errorf("node span = [%d, %d), want [0, %d)", span.Start, span.End(), end.Offset)
			}
		})
	}
}

func TestFailedMatchKeepsPosition(t *testing.T) {
	g := trivial(t)
	pos := Position{Offset: 1, SkipWhitespace: true}
	for _, p := range []Parser{
		Seq(Lit("a"), Lit("x")),
		Alt(Lit("q"), Lit("r")),
		Times(Lit("a"), 2, 2),
	} {
		got, ok := g.IsMatch(p, "_ab", pos)
		if ok {
			t.Errorf("IsMatch(%s) succeeded", p)
		}
		if got != pos {
			t.Errorf("IsMatch(%s) moved position to %v", p, got)
		}
		if _, got, ok := g.Parse(p, "_ab", pos); ok || got != pos {
			t.Errorf("Parse(%s) = %v, %v; want failure at %v", p, got, ok, pos)
		}
	}
}

func TestConcatFlattening(t *testing.T) {
	g := trivial(t)
	node, _, ok := g.Parse(Seq(Lit("a"), Lit("b"), Lit("c")), "abc", Position{})
	if !ok {
		t.Fatal("parse failed")
	}
	want := &Branch{Nodes: []Node{
		&Leaf{Start: 0, Text: "a"},
		&Leaf{Start: 1, Text: "b"},
		&Leaf{Start: 2, Text: "c"},
	}}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestConcatDoesNotFlattenTaggedLeft(t *testing.T) {
	g := NewRuleset("P")
	g.Define("P", Seq(Lit("a"), Lit("b")))
	mustFreeze(t, g)

	node, _, ok := g.Parse(Seq(Ref("P"), Lit("c")), "abc", Position{})
	if !ok {
		t.Fatal("parse failed")
	}
	if got, want := shape(node), "[P[a b] c]"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
}

func TestConcatAbsentSide(t *testing.T) {
	g := trivial(t)
	node, _, ok := g.Parse(Seq(Optional(Lit("x")), Lit("a")), "a", Position{})
	if !ok {
		t.Fatal("parse failed")
	}
	if leaf, isLeaf := node.(*Leaf); !isLeaf || leaf.Text != "a" {
		t.Errorf("got %s, want the right-hand leaf alone", shape(node))
	}
}

func TestAlternationLeftBias(t *testing.T) {
	g := trivial(t)
	p := Alt(Lit("ab"), Seq(Lit("a"), Lit("b")))
	node, next, ok := g.Parse(p, "ab", Position{})
	if !ok {
		t.Fatal("parse failed")
	}
	if next.Offset != 2 {
		t.Errorf("ended at %d, want 2", next.Offset)
	}
	if _, isLeaf := node.(*Leaf); !isLeaf {
		t.Errorf("got %s, want the left alternative's leaf", shape(node))
	}

	// the left alternative wins even when the right one would consume more
	node, next, _ = g.Parse(Alt(Lit("a"), Lit("ab")), "ab", Position{})
	if next.Offset != 1 || shape(node) != "a" {
		t.Errorf("got %s ending at %d, want a ending at 1", shape(node), next.Offset)
	}
}

func TestRepetitionBounds(t *testing.T) {
	g := trivial(t)
	p := Times(Lit("a"), 1, 3)
	tests := []struct {
		input    string
		ok       bool
		children int
		end      int
	}{
		{"", false, 0, 0},
		{"b", false, 0, 0},
		{"a", true, 1, 1},
		{"aa", true, 2, 2},
		{"aaa", true, 3, 3},
		{"aaaa", true, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			end, ok := g.IsMatch(p, tt.input, Position{})
			if ok != tt.ok {
				t.Fatalf("IsMatch ok = %v, want %v", ok, tt.ok)
			}
			node, next, ok := g.Parse(p, tt.input, Position{})
			if ok != tt.ok {
				t.Fatalf("Parse ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if end.Offset != tt.end || next.Offset != tt.end {
				t.Errorf("ended at %d/%d, want %d", end.Offset, next.Offset, tt.end)
			}
			if got := len(node.Children()); got != tt.children {
				t.Errorf("got %d children, want %d", got, tt.children)
			}
		})
	}
}

func TestRepeatOfEmptyMatchTerminates(t *testing.T) {
	g := trivial(t)
	p := Times(Optional(Lit("x")), 2, Unbounded)
	end, ok := g.IsMatch(p, "yyy", Position{})
	if !ok || end.Offset != 0 {
		t.Errorf("IsMatch = %v, %v; want empty match", end, ok)
	}
	node, _, ok := g.Parse(p, "yyy", Position{})
	if !ok || node != nil {
		t.Errorf("Parse = %s, %v; want absent match", shape(node), ok)
	}
}

func TestErrorTieBreak(t *testing.T) {
	g := trivial(t)
	input := "0123456789"
	failsAt5 := Seq(Lit("01234"), Lit("X"))
	failsAt9 := Seq(Lit("012345678"), Lit("Y"))

	for name, p := range map[string]Parser{
		"further first":  Alt(failsAt9, failsAt5),
		"further second": Alt(failsAt5, failsAt9),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := g.FindSyntaxError(p, input, Position{})
			if err == nil {
				t.Fatal("no error found")
			}
			if err.Index != 9 {
				t.Errorf("error at %d, want 9 (%v)", err.Index, err)
			}
		})
	}
}

func TestChoose(t *testing.T) {
	a := Errorf(3, 1, "a")
	b := Errorf(3, 1, "b")
	c := Errorf(7, 1, "c")
	tests := []struct {
		name     string
		x, y     *Error
		expected *Error
	}{
		{"both nil", nil, nil, nil},
		{"left nil", nil, a, a},
		{"right nil", a, nil, a},
		{"tie keeps left", a, b, a},
		{"further right", a, c, c},
		{"further left", c, a, c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.x, tt.y); got != tt.expected {
				t.Errorf("Choose = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFindSyntaxErrorOffsets(t *testing.T) {
	g := trivial(t)
	p := Seq(Alt(Lit("a"), Lit("ab")), Optional(Lit("c")))
	offsets, _ := g.FindSyntaxError(p, "abc", Position{})
	if diff := cmp.Diff([]int{1, 2, 3}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEntryReportsFurthestError(t *testing.T) {
	g := exprGrammar(t)

	node, err := g.ParseEntry("3 + 4 - 5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if span := node.Span(); span.Start != 0 || span.End() != 9 {
		t.Errorf("span = %+v, want [0, 9)", span)
	}

	_, err = g.ParseEntry("3 + ")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if perr.Index != 4 {
		t.Errorf("error at %d, want 4 (%v)", perr.Index, perr)
	}
	if perr.Message != "expected Term" {
		t.Errorf("message = %q, want %q", perr.Message, "expected Term")
	}
	if perr.Category != Syntax {
		t.Errorf("category = %v, want syntax", perr.Category)
	}
}

func TestParseEntryTrailingInput(t *testing.T) {
	g := exprGrammar(t)
	_, err := g.ParseEntry("1 + 2 )")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if perr.Index != 6 {
		t.Errorf("error at %d, want 6 (%v)", perr.Index, perr)
	}
}

func TestLexicalRuleCollapsesToLeaf(t *testing.T) {
	g := exprGrammar(t)
	node, err := g.ParseRule("Term", "  42  ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := &Branch{Rule: "Term", Nodes: []Node{&Leaf{Start: 2, Text: "42", Rule: "integer"}}}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywordBoundary(t *testing.T) {
	g := trivial(t)
	if _, ok := g.IsMatch(Lit("IF"), "IFX", Start()); ok {
		t.Error("IF matched the prefix of IFX")
	}
	if end, ok := g.IsMatch(Lit("IF"), "IF X", Start()); !ok || end.Offset != 2 {
		t.Errorf("IF on %q = %v, %v", "IF X", end, ok)
	}
	if _, ok := g.IsMatch(Lit("IF"), "IF(", Start()); !ok {
		t.Error("IF did not match before punctuation")
	}
	if _, ok := g.IsMatch(Lit("IF"), "IFX", Position{}); !ok {
		t.Error("IF did not match inside lexical context")
	}
}

func TestReservedWords(t *testing.T) {
	g := NewRuleset("Block")
	g.Define("Block", Seq(Lit("BEGIN"), Many(Ref("ident")), Lit("END")))
	g.DefineLexical("ident", Many1(Class(R('A', 'Z'), R('a', 'z'))))
	g.Reserve("ident", "BEGIN", "END")
	mustFreeze(t, g)

	node, err := g.ParseEntry("BEGIN a b END")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := shape(node), "Block[BEGIN [ident:a ident:b] END]"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if _, err := g.ParseEntry("BEGIN a b"); err == nil {
		t.Error("missing END accepted")
	}
}

func TestComments(t *testing.T) {
	g := NewRuleset("S", WithComments("(*", "*)"))
	g.Define("S", Seq(Lit("a"), Lit("b")))
	mustFreeze(t, g)

	if _, err := g.ParseEntry("a (* one (* nested *) two *) b (* trailing *)"); err != nil {
		t.Errorf("parse: %v", err)
	}
	if _, err := g.ParseEntry("a (* unterminated b"); err == nil {
		t.Error("unterminated comment swallowed b without error")
	}
}

func TestDepthLimit(t *testing.T) {
	g := NewRuleset("A", WithMaxDepth(50))
	g.Define("A", Alt(Seq(Lit("("), Ref("A"), Lit(")")), Lit("x")))
	mustFreeze(t, g)

	if _, err := g.ParseEntry("((x))"); err != nil {
		t.Fatalf("shallow parse: %v", err)
	}

	deep := strings.Repeat("(", 100) + "x" + strings.Repeat(")", 100)
	_, err := g.ParseEntry(deep)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if !strings.Contains(perr.Message, "nesting too deep") {
		t.Errorf("message = %q, want nesting error", perr.Message)
	}
}

func TestLeftRecursionTerminates(t *testing.T) {
	g := NewRuleset("A", WithMaxDepth(100))
	g.Define("A", Alt(Seq(Ref("A"), Lit("x")), Lit("x")))
	mustFreeze(t, g)

	if _, err := g.ParseEntry("xx"); err == nil {
		t.Error("left-recursive grammar produced a parse")
	}
	offsets, _ := g.FindSyntaxError(Ref("A"), "xx", Start())
	if diff := cmp.Diff([]int{1}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestFreezeValidates(t *testing.T) {
	g := NewRuleset("Missing")
	g.Define("A", Ref("B"))
	err := g.Freeze()
	if err == nil {
		t.Fatal("freeze accepted undefined references")
	}
	for _, want := range []string{`entry rule "Missing"`, `undefined rule "B"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestTagged(t *testing.T) {
	g := exprGrammar(t)
	if diff := cmp.Diff([]string{"Expr", "Term", "integer"}, g.Tagged()); diff != "" {
		t.Errorf("tagged rules mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentParsesShareRuleset(t *testing.T) {
	g := exprGrammar(t)
	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := g.ParseEntry("1 + 2 - 3 + 4")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("parse: %v", err)
		}
	}
}

func TestLexicalSearchIsAtomic(t *testing.T) {
	g := NewRuleset("Sel")
	g.Define("Sel", Seq(Ref("ident"), Lit("."), Ref("ident")))
	g.DefineLexical("ident", Many1(Class(R('A', 'Z'), R('a', 'z'))))
	g.Reserve("ident", "END")
	mustFreeze(t, g)

	offsets, err := g.FindSyntaxError(Ref("ident"), "abc", Start())
	if diff := cmp.Diff([]int{3}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if err != nil {
		t.Errorf("err = %v, want none", err)
	}

	// a prefix of a reserved word is not an identifier either
	_, perr0 := g.ParseEntry("  END.x")
	var perr *Error
	if !errors.As(perr0, &perr) {
		t.Fatalf("got %v, want *Error", perr0)
	}
	if perr.Index != 2 || perr.Message != "expected Sel" {
		t.Errorf("got %q at %d, want %q at 2", perr.Message, perr.Index, "expected Sel")
	}
}

func TestRepeatParseBuildsNoNodesForFailedIteration(t *testing.T) {
	g := trivial(t)
	p := Many(Seq(Many1(Lit("a")), Lit(";")))
	allocs := func(src string) float64 {
		return testing.AllocsPerRun(10, func() {
			if _, end, ok := g.Parse(p, src, Position{}); !ok || end.Offset != 2 {
				t.Fatalf("Parse(%.8q...) = %v, %v", src, end, ok)
			}
		})
	}
	short := allocs("a;")
	long := allocs("a;" + strings.Repeat("a", 2000))
	if long > short {
		t.Errorf("allocs with a long failing tail = %v, without = %v", long, short)
	}
}

func TestUndefinedRuleReference(t *testing.T) {
	g := trivial(t)
	defer func() {
		msg, _ := recover().(string)
		if msg != `parse: undefined rule "Nope"` {
			t.Errorf("recovered %q, want undefined rule panic", msg)
		}
	}()
	g.IsMatch(Ref("Nope"), "x", Start())
}

func TestNotBefore(t *testing.T) {
	g := NewRuleset("Num")
	g.Define("Num", Alt(Ref("real"), Ref("integer")))
	g.DefineLexical("real", Seq(Many1(Ref("digit")), Lit("."), Many(Ref("digit"))))
	g.DefineLexical("integer", Many1(Ref("digit")))
	g.DefineLexical("digit", Class(R('0', '9')))
	g.NotBefore("real", ".")
	mustFreeze(t, g)

	tests := []struct {
		input string
		want  string
		end   int
	}{
		{"1.5", "Num[real:1.5]", 3},
		{"1.", "Num[real:1.]", 2},
		{"1..9", "Num[integer:1]", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, end, ok := g.Parse(Ref("Num"), tt.input, Start())
			if !ok {
				t.Fatal("no match")
			}
			if got := shape(node); got != tt.want || end.Offset != tt.end {
				t.Errorf("got %s ending at %d, want %s ending at %d", got, end.Offset, tt.want, tt.end)
			}
		})
	}
}
