package report

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/rules"
)

// LevelFor maps a severity onto the console diagnostic level.
func LevelFor(severity rules.Severity) errors.Level {
	switch {
	case severity.AtLeast(rules.High):
		return errors.Error
	case severity.AtLeast(rules.Warning):
		return errors.Warning
	default:
		return errors.Info
	}
}

// ToDiagnostic converts a violation into a console diagnostic located in
// path.
func ToDiagnostic(path string, v rules.Violation) errors.Diagnostic {
	pos := ir.Position{Filename: path, Line: v.Line, Column: v.Column}
	return errors.NewDiagnostic(LevelFor(v.Severity), v.Code(), v.Description, pos).
		WithSuggestion(v.Suggestion).
		Build()
}

// ConsoleWriter renders results for a terminal.
type ConsoleWriter struct {
	w io.Writer
}

func NewConsoleWriter(w io.Writer) *ConsoleWriter {
	return &ConsoleWriter{w: w}
}

var (
	errorHeader   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningHeader = color.New(color.FgYellow, color.Bold).SprintFunc()
	infoHeader    = color.New(color.FgBlue, color.Bold).SprintFunc()
	success       = color.New(color.FgGreen).SprintFunc()
	bold          = color.New(color.Bold).SprintFunc()
	italic        = color.New(color.Italic).SprintFunc()
)

// WriteResult renders one file: its failure, or its violations grouped by
// tier followed by the summary line and, when fields are unused, the
// savings estimate.
func (cw *ConsoleWriter) WriteResult(result ScanResult) error {
	var out strings.Builder
	cw.formatResult(&out, result)
	if !result.Failed() {
		out.WriteString(Summary(result.Violations) + "\n")
		if savings := StorageSavings(result.Violations); savings.UnusedFields > 0 {
			out.WriteString("\n" + savings.String() + "\n")
		}
	}
	_, err := io.WriteString(cw.w, out.String())
	return err
}

// WriteReport renders every file that failed or has findings, then the
// totals across the report.
func (cw *ConsoleWriter) WriteReport(r *Report) error {
	var out strings.Builder
	violations := r.Violations()

	if len(violations) == 0 && len(r.Failed()) == 0 {
		out.WriteString(success("✅ No violations found in any files!") + "\n")
		_, err := io.WriteString(cw.w, out.String())
		return err
	}

	for _, result := range r.Results {
		if !result.Failed() && !result.HasViolations() {
			continue
		}
		fmt.Fprintf(&out, "\n📁 File: %s\n", result.Source)
		cw.formatResult(&out, result)
	}

	fmt.Fprintf(&out, "\n%s\n", bold(fmt.Sprintf("📊 Total violations across %d files: %d", len(r.Results), len(violations))))
	if failed := len(r.Failed()); failed > 0 {
		fmt.Fprintf(&out, "%s\n", errorHeader(fmt.Sprintf("%d file(s) could not be scanned", failed)))
	}
	out.WriteString("\n" + StorageSavings(violations).String() + "\n")

	_, err := io.WriteString(cw.w, out.String())
	return err
}

// WriteAnalysis renders the storage analysis: totals, savings, per-rule
// counts and recommendations.
func (cw *ConsoleWriter) WriteAnalysis(r *Report) error {
	var out strings.Builder
	violations := r.Violations()

	if len(violations) == 0 {
		out.WriteString(success("✅ No optimization opportunities found!") + "\n")
		_, err := io.WriteString(cw.w, out.String())
		return err
	}

	out.WriteString("\n🎯 Storage Analysis Report\n")
	out.WriteString("========================\n")
	fmt.Fprintf(&out, "Files analyzed: %d\n", len(r.Results))
	fmt.Fprintf(&out, "Total violations: %d\n", len(violations))
	out.WriteString("\n" + StorageSavings(violations).String() + "\n")

	out.WriteString("\n📋 Findings by rule:\n")
	for _, rc := range CountByRule(violations) {
		fmt.Fprintf(&out, "  • %-30s %d\n", rc.RuleID, rc.Count)
	}

	if advice := Recommendations(violations); len(advice) > 0 {
		out.WriteString("\n🔧 Recommendations:\n")
		for _, line := range advice {
			fmt.Fprintf(&out, "  • %s\n", line)
		}
	}

	_, err := io.WriteString(cw.w, out.String())
	return err
}

func (cw *ConsoleWriter) formatResult(out *strings.Builder, result ScanResult) {
	if result.Failed() {
		var positioned errors.Positioned
		if stderrors.As(result.Err, &positioned) {
			reporter := errors.NewReporter(result.Source, result.Text)
			out.WriteString(reporter.Format(errors.ToDiagnostic(positioned)))
		} else {
			fmt.Fprintf(out, "%s %v\n", errorHeader("error:"), result.Err)
		}
		return
	}

	if !result.HasViolations() {
		out.WriteString(success("✅ No violations found! Your contract is optimized.") + "\n")
		return
	}

	c := Categorize(result.Violations)
	tiers := []struct {
		header     string
		violations []rules.Violation
		paint      func(...interface{}) string
	}{
		{fmt.Sprintf("🚨 %d Errors:", len(c.Errors)), c.Errors, errorHeader},
		{fmt.Sprintf("⚠️  %d Warnings:", len(c.Warnings)), c.Warnings, warningHeader},
		{fmt.Sprintf("ℹ️  %d Info:", len(c.Info)), c.Info, infoHeader},
	}

	reporter := errors.NewReporter(result.Source, result.Text)
	for _, tier := range tiers {
		if len(tier.violations) == 0 {
			continue
		}
		out.WriteString(tier.paint(tier.header) + "\n")
		for _, v := range tier.violations {
			if result.Text != "" {
				out.WriteString(reporter.Format(ToDiagnostic(result.Source, v)))
				continue
			}
			fmt.Fprintf(out, "  [%s]\n  📍 Line %d: %s\n  📝 %s\n  💡 %s\n\n",
				strings.ToUpper(v.Severity.String()), v.Line, bold(v.Subject), v.Description, italic(v.Suggestion))
		}
	}
}
