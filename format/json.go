package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/obc/parse"
)

// DiagnosticJSONEncoder writes one JSON object per diagnostic, one per
// line.
type DiagnosticJSONEncoder struct {
	enc *json.Encoder
}

func NewDiagnosticJSONEncoder(w io.Writer) *DiagnosticJSONEncoder {
	return &DiagnosticJSONEncoder{enc: json.NewEncoder(w)}
}

func (e *DiagnosticJSONEncoder) Encode(src *Source, err *parse.Error) error {
	return e.enc.Encode(src.Diagnostic(err))
}
