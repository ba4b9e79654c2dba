// Package oberon is the Oberon-2 front end: the embedded grammar, the typed
// syntax tree and a few semantic checks.
package oberon

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/grammar"
	"github.com/dhamidi/obc/parse"
)

//go:embed oberon2.ebnf
var grammarText string

// EntryRule is the rule a whole source file is parsed with.
const EntryRule = "Module"

// GrammarText returns the EBNF source of the Oberon-2 grammar.
func GrammarText() string { return grammarText }

var registry = ast.NewRegistry(
	ast.Entry{Rule: "Module", New: newModule},
	ast.Entry{Rule: "ImportList", New: newImportList},
	ast.Entry{Rule: "Import", New: newImport},
	ast.Entry{Rule: "DeclSeq", New: newDeclSeq},
	ast.Entry{Rule: "ConstDecl", New: newConstDecl},
	ast.Entry{Rule: "TypeDecl", New: newTypeDecl},
	ast.Entry{Rule: "VarDecl", New: newVarDecl},
	ast.Entry{Rule: "ProcDecl", New: newProcDecl},
	ast.Entry{Rule: "ForwardDecl", New: newForwardDecl},
	ast.Entry{Rule: "Receiver", New: newReceiver},
	ast.Entry{Rule: "FormalPars", New: newFormalPars},
	ast.Entry{Rule: "FPSection", New: newFPSection},
	ast.Entry{Rule: "Type", New: newType},
	ast.Entry{Rule: "FieldList", New: newFieldList},
	ast.Entry{Rule: "IdentList", New: newIdentList},
	ast.Entry{Rule: "IdentDef", New: newIdentDef},
	ast.Entry{Rule: "Qualident", New: newQualident},

	ast.Entry{Rule: "StatementSeq", New: newStatementSeq},
	ast.Entry{Rule: "Statement", New: newStatement},
	ast.Entry{Rule: "Assignment", New: newAssignment},
	ast.Entry{Rule: "ProcCall", New: newProcCall},
	ast.Entry{Rule: "IfStmt", New: newIfStmt},
	ast.Entry{Rule: "CaseStmt", New: newCaseStmt},
	ast.Entry{Rule: "Case", New: newCase},
	ast.Entry{Rule: "CaseLabels", New: newCaseLabels},
	ast.Entry{Rule: "WhileStmt", New: newWhileStmt},
	ast.Entry{Rule: "RepeatStmt", New: newRepeatStmt},
	ast.Entry{Rule: "ForStmt", New: newForStmt},
	ast.Entry{Rule: "LoopStmt", New: newLoopStmt},
	ast.Entry{Rule: "ExitStmt", New: newExitStmt},
	ast.Entry{Rule: "ReturnStmt", New: newReturnStmt},

	ast.Entry{Rule: "ConstExpr", New: newConstExpr},
	ast.Entry{Rule: "Expr", New: newExpr},
	ast.Entry{Rule: "SimpleExpr", New: newSimpleExpr},
	ast.Entry{Rule: "Term", New: newTerm},
	ast.Entry{Rule: "Factor", New: newFactor},
	ast.Entry{Rule: "Set", New: newSet},
	ast.Entry{Rule: "Element", New: newElement},
	ast.Entry{Rule: "Relation", New: newRelation},
	ast.Entry{Rule: "AddOp", New: newAddOp},
	ast.Entry{Rule: "MulOp", New: newMulOp},
	ast.Entry{Rule: "Designator", New: newDesignator},
	ast.Entry{Rule: "Selector", New: newSelector},
	ast.Entry{Rule: "ActualParameters", New: newActualParameters},
	ast.Entry{Rule: "ExprList", New: newExprList},

	ast.Entry{Rule: "ident", New: newIdent},
	ast.Entry{Rule: "integer", New: newInteger},
	ast.Entry{Rule: "real", New: newReal},
	ast.Entry{Rule: "character", New: newCharacter},
	ast.Entry{Rule: "string", New: newString},
)

// Registry returns the constructors for every rule of the grammar.
func Registry() *ast.Registry { return registry }

// Frontend parses Oberon-2 source into typed trees. It is safe for
// concurrent use.
type Frontend struct {
	rules *parse.Ruleset
}

// Options configure a Frontend.
type Options struct {
	// MaxDepth limits rule nesting; zero means parse.DefaultMaxDepth.
	MaxDepth int
}

// New compiles the grammar with opts and checks that every rule that can
// appear in a parse tree has a constructor.
func New(opts Options) (*Frontend, error) {
	gopts := []grammar.Option{
		grammar.ReserveKeywords("ident"),
		grammar.Comments("(*", "*)"),
		grammar.NotBefore("real", "."),
	}
	if opts.MaxDepth > 0 {
		gopts = append(gopts, grammar.MaxDepth(opts.MaxDepth))
	}
	rules, err := grammar.Load("oberon2.ebnf", strings.NewReader(grammarText), EntryRule, gopts...)
	if err != nil {
		return nil, err
	}
	if missing := registry.Missing(rules.Tagged()); len(missing) > 0 {
		return nil, fmt.Errorf("rules without constructors: %s", strings.Join(missing, ", "))
	}
	return &Frontend{rules: rules}, nil
}

var (
	defaultOnce     sync.Once
	defaultFrontend *Frontend
)

// Default returns the shared Frontend with default options.
func Default() *Frontend {
	defaultOnce.Do(func() {
		fe, err := New(Options{})
		if err != nil {
			panic(fmt.Sprintf("oberon: embedded grammar: %v", err))
		}
		defaultFrontend = fe
	})
	return defaultFrontend
}

// Grammar returns the compiled Oberon-2 ruleset shared by Default.
func Grammar() *parse.Ruleset { return Default().rules }

// Rules returns the compiled ruleset.
func (fe *Frontend) Rules() *parse.Ruleset { return fe.rules }

// Parse parses a module. Syntax errors and literal range errors are
// returned as *parse.Error.
func (fe *Frontend) Parse(src string) (*Module, error) {
	n, err := fe.ParseRule(EntryRule, src)
	if err != nil {
		return nil, err
	}
	mod, ok := n.(*Module)
	if !ok {
		return nil, fmt.Errorf("parse module: got %T", n)
	}
	return mod, nil
}

// ParseRule parses src as the named rule and returns its typed node.
func (fe *Frontend) ParseRule(rule, src string) (parse.Node, error) {
	tree, err := fe.rules.ParseRule(rule, src)
	if err != nil {
		return nil, err
	}
	return registry.Substitute(tree)
}

// Parse parses a module with the default Frontend.
func Parse(src string) (*Module, error) { return Default().Parse(src) }

// ParseRule parses a fragment with the default Frontend.
func ParseRule(rule, src string) (parse.Node, error) { return Default().ParseRule(rule, src) }
