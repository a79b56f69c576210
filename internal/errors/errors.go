package errors

import (
	"fmt"
	"strings"

	"gasguard/internal/ir"
)

// Positioned is implemented by every scan error that can point at a
// location in the scanned file.
type Positioned interface {
	error
	Code() string
	Pos() ir.Position
}

// IOError reports a file that could not be read. It aborts the scan of that
// file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Code() string { return CodeIO }

func (e *IOError) Pos() ir.Position {
	return ir.Position{Filename: e.Path, Line: 1, Column: 1}
}

// GrammarParseError reports Rust source rejected by the grammar parser.
type GrammarParseError struct {
	Position ir.Position
	Message  string
}

func (e *GrammarParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

func (e *GrammarParseError) Code() string { return CodeGrammarParse }

func (e *GrammarParseError) Pos() ir.Position { return e.Position }

// StructuralParseError reports text that does not have the shape a contract
// builder expects. Unit is the declaration being recovered ("type Foo",
// "fn bar") or empty when the whole file is affected.
type StructuralParseError struct {
	Position ir.Position
	Unit     string
	Message  string
	Causes   []error
}

func (e *StructuralParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d: ", e.Position.Filename, e.Position.Line)
	if e.Unit != "" {
		fmt.Fprintf(&b, "%s: ", e.Unit)
	}
	b.WriteString(e.Message)
	if len(e.Causes) > 0 {
		fmt.Fprintf(&b, " (%d unit errors, first: %v)", len(e.Causes), e.Causes[0])
	}
	return b.String()
}

func (e *StructuralParseError) Unwrap() []error { return e.Causes }

func (e *StructuralParseError) Code() string { return CodeStructuralParse }

func (e *StructuralParseError) Pos() ir.Position { return e.Position }

// FieldParseError reports a field fragment without a name/type separator.
type FieldParseError struct {
	Position ir.Position
	TypeName string
	Fragment string
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("%s:%d: type %s: field %q has no ':' separator", e.Position.Filename, e.Position.Line, e.TypeName, e.Fragment)
}

func (e *FieldParseError) Code() string { return CodeFieldParse }

func (e *FieldParseError) Pos() ir.Position { return e.Position }

// ToDiagnostic converts a positioned scan error into a reportable diagnostic.
func ToDiagnostic(err Positioned) Diagnostic {
	builder := NewDiagnostic(Error, err.Code(), err.Error(), err.Pos())

	switch e := err.(type) {
	case *FieldParseError:
		builder.WithHelp(fmt.Sprintf("write the field as 'name: Type' inside %s", e.TypeName)).
			WithLength(len(e.Fragment))
	case *StructuralParseError:
		for _, cause := range e.Causes {
			builder.WithNote(cause.Error())
		}
	}

	return builder.Build()
}
