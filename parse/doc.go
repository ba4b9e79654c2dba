// Package parse is a backtracking parser-combinator engine over ordered
// alternatives.
//
// A grammar is a Ruleset: named rule bodies built from a closed set of
// matchers (Terminal, RuleRef, Concat, EitherOr and Repeat). Every matcher
// supports three operations:
//
//	IsMatch          speculative test, builds no nodes
//	Parse            builds a Leaf/Branch tree, consuming exactly what IsMatch consumes
//	FindSyntaxError  explores every partial path and returns the furthest failure
//
// Rules are referenced by name and resolved against the Ruleset at match
// time, so rules may be mutually recursive. Left recursion is not supported;
// a depth limit and an in-progress set stop runaway recursion.
//
// A Ruleset is immutable after Freeze and may be shared by concurrent
// parses. All per-parse state lives in an unexported run value.
package parse
