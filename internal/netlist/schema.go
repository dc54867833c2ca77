package netlist

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Schema checks design documents against the embedded CUE schema before
// they are decoded. A Schema is not safe for concurrent use; create one per
// goroutine.
type Schema struct {
	ctx    *cue.Context
	design cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return nil, fmt.Errorf("netlist: compiling schema: %w", schema.Err())
	}
	design := schema.LookupPath(cue.ParsePath("#Design"))
	if design.Err() != nil {
		return nil, fmt.Errorf("netlist: looking up #Design: %w", design.Err())
	}
	return &Schema{ctx: ctx, design: design}, nil
}

// ValidateJSON checks a JSON encoded document.
func (s *Schema) ValidateJSON(data []byte) error {
	doc := s.ctx.CompileBytes(data)
	if doc.Err() != nil {
		return fmt.Errorf("netlist: compiling document: %w", doc.Err())
	}
	unified := s.design.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Issues: issues(err)}
	}
	return nil
}

// SchemaError lists every schema violation of a document.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "netlist: schema validation failed: " + strings.Join(e.Issues, "; ")
}

func issues(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
