// Package lsp is a language server that reports Oberon syntax and
// semantic errors as diagnostics.
package lsp

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/obc/format"
	"github.com/dhamidi/obc/oberon"
	"github.com/dhamidi/obc/parse"
)

const lsName = "obc"

var log = commonlog.GetLogger("obc.lsp")

type Server struct {
	frontend *oberon.Frontend
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

func NewServer(version string, fe *oberon.Frontend) *Server {
	ls := &Server{
		frontend: fe,
		version:  version,
		docs:     make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

// update stores the document text and publishes its diagnostics.
func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	ls.docs[uri] = text
	ls.mu.Unlock()

	name := uriToPath(uri)
	diagnostics := Diagnostics(ls.frontend, format.NewSource(name, text))
	log.Debugf("%s: %d diagnostics", name, len(diagnostics))

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Text returns the last known text of an open document.
func (ls *Server) Text(uri protocol.DocumentUri) (string, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	text, ok := ls.docs[uri]
	return text, ok
}

// Diagnostics parses src and converts the result to LSP diagnostics: the
// single syntax error if the module does not parse, otherwise the semantic
// errors found by oberon.Check.
func Diagnostics(fe *oberon.Frontend, src *format.Source) []protocol.Diagnostic {
	mod, err := fe.Parse(src.Text)
	if err != nil {
		var perr *parse.Error
		if !errors.As(err, &perr) {
			perr = parse.Errorf(0, 0, "%v", err)
		}
		return []protocol.Diagnostic{toDiagnostic(src, perr, protocol.DiagnosticSeverityError)}
	}

	diagnostics := []protocol.Diagnostic{}
	for _, e := range oberon.Check(mod) {
		diagnostics = append(diagnostics, toDiagnostic(src, e, protocol.DiagnosticSeverityWarning))
	}
	return diagnostics
}

func toDiagnostic(src *format.Source, err *parse.Error, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	source := lsName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: toPosition(src, err.Index),
			End:   toPosition(src, err.Index+err.Length),
		},
		Severity: &severity,
		Source:   &source,
		Message:  err.Message,
	}
}

// toPosition converts a byte offset to an LSP position, whose character
// counts UTF-16 code units.
func toPosition(src *format.Source, offset int) protocol.Position {
	offset = min(max(offset, 0), len(src.Text))
	line := src.Position(offset).Line
	var units int
	for _, r := range src.Text[src.LineStart(line):offset] {
		units += utf16.RuneLen(r)
	}
	return protocol.Position{
		Line:      protocol.UInteger(line - 1),
		Character: protocol.UInteger(units),
	}
}

func uriToPath(uri protocol.DocumentUri) string {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
