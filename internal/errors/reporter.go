package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"gasguard/internal/ir"
)

// Level represents how a diagnostic is labelled in console output
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Info    Level = "info"
	Note    Level = "note"
	Help    Level = "help"
)

// Diagnostic is a located finding or failure with optional remediation text
type Diagnostic struct {
	Level       Level
	Code        string       // Code like G0101
	Message     string       // Primary message
	Position    ir.Position  // Location in source
	Length      int          // Length of the highlighted region
	Suggestions []Suggestion // Suggested fixes
	Notes       []string     // Additional context notes
	HelpText    string       // Help text
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message string
}

// Reporter renders diagnostics against the source they refer to
type Reporter struct {
	filename string
	source   string
	lines    []string
}

// NewReporter creates a new reporter for a file
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders a diagnostic with Rust-like styling and suggestions
func (r *Reporter) Format(d Diagnostic) string {
	var result strings.Builder

	levelColor := r.getLevelColor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	// Header: warning[G0101]: message
	if d.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
			levelColor(string(d.Level)), d.Code, d.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n",
			levelColor(string(d.Level)), d.Message))
	}

	// Location line: --> filename:line:column
	lineNumberWidth := r.getLineNumberWidth(d.Position.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	column := d.Position.Column
	if column <= 0 {
		column = 1
	}
	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
		indent, dim("-->"), r.filename, d.Position.Line, column))

	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	// Context line before
	if d.Position.Line > 1 && d.Position.Line-1 <= len(r.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", lineNumberWidth, d.Position.Line-1)),
			dim("│"),
			r.lines[d.Position.Line-2]))
	}

	// Main line with marker
	if d.Position.Line <= len(r.lines) && d.Position.Line > 0 {
		lineContent := r.lines[d.Position.Line-1]
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, d.Position.Line)),
			dim("│"),
			lineContent))

		length := d.Length
		if length <= 1 {
			length = markerLength(lineContent, column)
		}
		marker := r.createMarker(column, length, d.Level)
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			indent, dim("│"), marker))
	}

	if len(d.Suggestions) > 0 {
		result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		suggestionColor := color.New(color.FgCyan).SprintFunc()
		for i, suggestion := range d.Suggestions {
			if i == 0 {
				result.WriteString(fmt.Sprintf("%s %s %s: %s\n",
					indent, suggestionColor("help"), suggestionColor("try"), suggestion.Message))
			} else {
				result.WriteString(fmt.Sprintf("%s %s %s\n",
					indent, suggestionColor("    "), suggestion.Message))
			}
		}
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), noteColor("note:"), note))
	}

	if d.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s %s\n",
			indent, dim("│"), helpColor("help:"), d.HelpText))
	}

	result.WriteString("\n")
	return result.String()
}

// markerLength underlines the rest of the trimmed line when no explicit
// length was given.
func markerLength(line string, column int) int {
	if column-1 >= len(line) {
		return 1
	}
	rest := strings.TrimRight(line[column-1:], " \t\r")
	if rest == "" {
		return 1
	}
	return len(rest)
}

// getLevelColor returns the appropriate color function for a level
func (r *Reporter) getLevelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Info, Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// createMarker creates the underline marker
func (r *Reporter) createMarker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}

	spaces := strings.Repeat(" ", max(0, column-1))
	markerColor := r.getLevelColor(level)

	return spaces + markerColor(strings.Repeat("^", length))
}

// getLineNumberWidth calculates the width needed for line numbers
func (r *Reporter) getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3 // minimum width for visual alignment
	}
	return width
}
