package structural

import (
	"regexp"
	"strings"
)

// Line is one physical line of source with its starting byte offset.
type Line struct {
	Number int // 1-based
	Offset int
	Text   string
}

// Indent returns the number of leading spaces and tabs.
func (l Line) Indent() int {
	return len(l.Text) - len(strings.TrimLeft(l.Text, " \t"))
}

// Trimmed returns the line without surrounding whitespace.
func (l Line) Trimmed() string {
	return strings.TrimSpace(l.Text)
}

// SplitLines breaks text into lines. A trailing carriage return is dropped
// from each line.
func SplitLines(text string) []Line {
	var lines []Line
	offset := 0
	for number := 1; ; number++ {
		end := strings.IndexByte(text[offset:], '\n')
		if end < 0 {
			lines = append(lines, Line{Number: number, Offset: offset, Text: strings.TrimSuffix(text[offset:], "\r")})
			return lines
		}
		lines = append(lines, Line{Number: number, Offset: offset, Text: strings.TrimSuffix(text[offset:offset+end], "\r")})
		offset += end + 1
	}
}

// LineAt returns the 1-based line number containing offset.
func LineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// MatchLinePattern matches line against pattern and returns the capture
// groups (index 0 is the whole match).
func MatchLinePattern(line string, pattern *regexp.Regexp) ([]string, bool) {
	captures := pattern.FindStringSubmatch(line)
	if captures == nil {
		return nil, false
	}
	return captures, true
}

var (
	attributePattern = regexp.MustCompile(`^#!?\[\s*([A-Za-z_][A-Za-z0-9_:]*)`)
	decoratorPattern = regexp.MustCompile(`^@(\w+)`)
)

// AttributeName returns the name of a Rust-style attribute line such as
// #[contracttype] or #[contract(name = "x")].
func AttributeName(line string) (string, bool) {
	captures, ok := MatchLinePattern(strings.TrimSpace(line), attributePattern)
	if !ok {
		return "", false
	}
	return captures[1], true
}

// DecoratorName returns the name of a decorator line such as @external.
func DecoratorName(line string) (string, bool) {
	captures, ok := MatchLinePattern(strings.TrimSpace(line), decoratorPattern)
	if !ok {
		return "", false
	}
	return captures[1], true
}

// IsCommentLine reports whether a trimmed line holds only a comment.
func IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//") {
		return true
	}
	return strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#[") && !strings.HasPrefix(trimmed, "#![")
}
