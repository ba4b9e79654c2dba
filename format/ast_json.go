package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/obc/parse"
	"github.com/dhamidi/obc/types"
)

type ASTJSONEncoder struct {
	w   io.Writer
	src *Source
}

func NewASTJSONEncoder(w io.Writer, src *Source) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w, src: src}
}

func (e *ASTJSONEncoder) Encode(node parse.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(node parse.Node) ([]byte, error) {
	return json.MarshalIndent(e.nodeToJSON(node), "", "  ")
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Type     string         `json:"type,omitempty"`
	Span     astJSONSpan    `json:"span"`
	Token    string         `json:"token,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type typed interface {
	FinalType() types.Type
}

type texter interface {
	Text() string
}

func (e *ASTJSONEncoder) nodeToJSON(n parse.Node) *astJSONNode {
	if n == nil {
		return nil
	}
	span := n.Span()
	jn := &astJSONNode{
		Kind: kindOf(n),
		Span: astJSONSpan{
			Start: e.src.Position(span.Start),
			End:   e.src.Position(span.End()),
		},
		Token: tokenText(n),
	}
	if t, ok := n.(typed); ok {
		if ft := t.FinalType(); ft != nil {
			jn.Type = ft.String()
		}
	}

	children := n.Children()
	if len(children) > 0 {
		jn.Children = make([]*astJSONNode, 0, len(children))
		for _, child := range children {
			if child != nil {
				jn.Children = append(jn.Children, e.nodeToJSON(child))
			}
		}
	}
	return jn
}

// kindOf names a node by its rule. Untagged leaves are terminals and
// untagged branches are plain sequences.
func kindOf(n parse.Node) string {
	if rule := n.Token(); rule != "" {
		return rule
	}
	if _, ok := n.(*parse.Leaf); ok {
		return "terminal"
	}
	return "sequence"
}

func tokenText(n parse.Node) string {
	switch n := n.(type) {
	case *parse.Leaf:
		return n.Text
	case texter:
		return n.Text()
	}
	return ""
}
