package lsp

import (
	stderrors "errors"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gasguard/internal/errors"
	"gasguard/internal/parser"
	"gasguard/internal/report"
	"gasguard/internal/rules"
)

const diagnosticSource = "gasguard"

// SeverityFor maps a rule severity onto the LSP scale.
func SeverityFor(severity rules.Severity) protocol.DiagnosticSeverity {
	switch {
	case severity.AtLeast(rules.High):
		return protocol.DiagnosticSeverityError
	case severity.AtLeast(rules.Warning):
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// ResultDiagnostics converts a scan of text into the diagnostics published
// for the document. A failed scan yields a single error diagnostic, except
// for Rust files that declare no contract, which yield none.
func ResultDiagnostics(result report.ScanResult, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	if result.Failed() {
		if stderrors.Is(result.Err, parser.ErrNoContract) {
			return diagnostics
		}
		return append(diagnostics, ErrorDiagnostic(result.Err, text))
	}

	for _, v := range result.Violations {
		diagnostics = append(diagnostics, ViolationDiagnostic(v, text))
	}
	for _, unit := range result.Diagnostics {
		d := ErrorDiagnostic(unit, text)
		d.Severity = ptrSeverity(protocol.DiagnosticSeverityWarning)
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

// ViolationDiagnostic spans the rest of the violation's line.
func ViolationDiagnostic(v rules.Violation, text string) protocol.Diagnostic {
	message := v.Description
	if v.Suggestion != "" {
		message += "\n" + v.Suggestion
	}
	return protocol.Diagnostic{
		Range:    lineRange(text, v.Line, v.Column),
		Severity: ptrSeverity(SeverityFor(v.Severity)),
		Code:     &protocol.IntegerOrString{Value: v.RuleID},
		Source:   ptrString(diagnosticSource),
		Message:  message,
	}
}

// ErrorDiagnostic places err at its recorded position, or at the top of the
// document when it has none.
func ErrorDiagnostic(err error, text string) protocol.Diagnostic {
	line, column, code := 1, 1, ""

	var positioned errors.Positioned
	if stderrors.As(err, &positioned) {
		pos := positioned.Pos()
		line, column, code = max(pos.Line, 1), max(pos.Column, 1), positioned.Code()
	}

	d := protocol.Diagnostic{
		Range:    lineRange(text, line, column),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString(diagnosticSource),
		Message:  err.Error(),
	}
	if code != "" {
		d.Code = &protocol.IntegerOrString{Value: code}
	}
	return d
}

// lineRange converts 1-based line/column into a zero-based range ending at
// the end of that line.
func lineRange(text string, line, column int) protocol.Range {
	start := protocol.Position{
		Line:      protocol.UInteger(max(line-1, 0)),
		Character: protocol.UInteger(max(column-1, 0)),
	}
	end := start

	lines := strings.Split(text, "\n")
	if line >= 1 && line <= len(lines) {
		width := utf8.RuneCountInString(strings.TrimRight(lines[line-1], "\r"))
		end.Character = protocol.UInteger(max(width, column-1))
	}
	return protocol.Range{Start: start, End: end}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
