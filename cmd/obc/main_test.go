package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/obc/oberon"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTree(t *testing.T) {
	path := writeFile(t, t.TempDir(), "M.Mod", "MODULE M; END M.\n")

	stdout, _, err := run(t, "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "Module 1:1-1:17\n"+
		"  ident 1:8-1:9 \"M\"\n"+
		"  ident 1:15-1:16 \"M\"\n", stdout)
}

func TestParseRaw(t *testing.T) {
	path := writeFile(t, t.TempDir(), "seven.txt", "7")

	stdout, _, err := run(t, "parse", "--raw", "--rule", "ConstExpr", path)
	require.NoError(t, err)
	assert.Equal(t, "ConstExpr 1:1-1:2\n"+
		"  Expr 1:1-1:2\n"+
		"    SimpleExpr 1:1-1:2\n"+
		"      Term 1:1-1:2\n"+
		"        Factor 1:1-1:2\n"+
		"          integer 1:1-1:2 \"7\"\n", stdout)
}

func TestParseJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expr.txt", "1 + 2")

	stdout, _, err := run(t, "parse", "--rule", "ConstExpr", "--format", "json", path)
	require.NoError(t, err)

	var root struct {
		Kind string `json:"kind"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &root))
	assert.Equal(t, "ConstExpr", root.Kind)
	assert.Equal(t, "BYTE", root.Type)
}

func TestParseSyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "M.Mod", "MODULE M; BEGIN x := END M.")

	stdout, _, err := run(t, "parse", path)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "M.Mod:1:22: syntax error: expected Expr")
}

func TestParseUnknownFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "M.Mod", "MODULE M; END M.")

	_, _, err := run(t, "parse", "--format", "xml", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
}

func checkProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "obc.yaml", "sources: ['*.Mod']\njobs: 2\n")
	writeFile(t, dir, "Good.Mod", "MODULE Good; IMPORT Warn; END Good.")
	writeFile(t, dir, "Bad.Mod", "MODULE M; BEGIN x := END M.")
	writeFile(t, dir, "Warn.Mod", "MODULE W; END X.")
	return dir
}

func TestCheck(t *testing.T) {
	dir := checkProject(t)

	stdout, stderr, err := run(t, "check", "--config", filepath.Join(dir, "obc.yaml"))
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "Bad.Mod:1:22: syntax error: expected Expr")
	assert.Contains(t, stdout, "Warn.Mod:1:15: semantic error: module W ends with END X")
	assert.Contains(t, stderr, "checked 3 files")
	assert.Contains(t, stderr, "2 with errors")
}

func TestCheckJSON(t *testing.T) {
	dir := checkProject(t)

	stdout, _, err := run(t, "check", "--format", "json", "--jobs", "1", "--config", filepath.Join(dir, "obc.yaml"))
	require.ErrorIs(t, err, errReported)

	var categories []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		var d struct {
			Category string `json:"category"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &d))
		categories = append(categories, d.Category)
	}
	assert.Equal(t, []string{"syntax", "semantic"}, categories)
}

func TestCheckFiles(t *testing.T) {
	dir := checkProject(t)

	_, stderr, err := run(t, "check", "--config", filepath.Join(dir, "obc.yaml"), filepath.Join(dir, "Good.Mod"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "checked 1 file ")

	_, _, err = run(t, "check", "--config", filepath.Join(dir, "obc.yaml"), filepath.Join(dir, "*.Missing"))
	require.Error(t, err)
}

func TestModules(t *testing.T) {
	dir := checkProject(t)
	writeFile(t, dir, "Warn.Mod", "MODULE Warn; END Warn.")

	stdout, _, err := run(t, "modules", "--config", filepath.Join(dir, "obc.yaml"))
	require.NoError(t, err)

	warn := strings.Index(stdout, "  Warn\n")
	good := strings.Index(stdout, "  Good\n")
	require.NotEqual(t, -1, warn)
	require.NotEqual(t, -1, good)
	assert.Less(t, warn, good, "imported module listed first")
	assert.Contains(t, stdout, "imports: Warn")
	assert.Contains(t, stdout, "Not parsed:\n  "+filepath.Join(dir, "Bad.Mod"))
}

func TestGrammarCheck(t *testing.T) {
	stdout, _, err := run(t, "grammar", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "oberon2.ebnf: ok")

	dir := t.TempDir()
	good := writeFile(t, dir, "expr.ebnf", "Expr = Term { \"+\" Term } .\nTerm = digit .\ndigit = \"0\" … \"9\" .\n")
	stdout, _, err = run(t, "grammar", "check", "--start", "Expr", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok, 3 productions (1 lexical), start Expr")

	_, _, err = run(t, "grammar", "check", good)
	require.Error(t, err)

	bad := writeFile(t, dir, "bad.ebnf", "Expr \"a\" .\n")
	_, stderr, err := run(t, "grammar", "check", "--start", "Expr", bad)
	require.ErrorIs(t, err, errReported)
	assert.NotEmpty(t, stderr)
}

func TestGrammarShow(t *testing.T) {
	stdout, _, err := run(t, "grammar", "show")
	require.NoError(t, err)
	assert.Equal(t, oberon.GrammarText(), stdout)
}
