// Package structural recovers nested structure from raw source text without
// a grammar: balanced delimiter extraction, depth-aware splitting and line
// pattern helpers shared by every contract format.
package structural

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"gasguard/grammar"
)

// Syntax binds the delimiter helpers to one dialect's comment and literal
// rules.
type Syntax struct {
	dialect grammar.Dialect
}

var (
	Rust  = Syntax{dialect: grammar.Rust}
	Vyper = Syntax{dialect: grammar.Vyper}
)

// Span is a half-open byte range [Start, End) into the scanned text.
type Span struct {
	Start int
	End   int
}

// Text returns the slice of text covered by the span.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// ExtractBalanced finds the first open delimiter at or after from and returns
// the span strictly between it and its matching close delimiter. The second
// result is false when there is no open delimiter or the input is unbalanced.
func (sx Syntax) ExtractBalanced(text string, open, close rune, from int) (Span, bool) {
	if from < 0 {
		from = 0
	}
	if from >= len(text) {
		return Span{}, false
	}

	openStr, closeStr := string(open), string(close)
	depth := 0
	start := -1

	for _, tok := range sx.dialect.Tokenize(text[from:]) {
		if grammar.IsOpaque(tok.Type) {
			continue
		}
		switch tok.Value {
		case openStr:
			if depth == 0 && start < 0 {
				start = from + tok.Pos.Offset + len(tok.Value)
			}
			depth++
		case closeStr:
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return Span{Start: start, End: from + tok.Pos.Offset}, true
			}
		}
	}

	return Span{}, false
}

// SplitTopLevel splits text on delim wherever the delimiter sits outside
// every (), [] and {} pair. Segments are trimmed and empty ones dropped.
func (sx Syntax) SplitTopLevel(text string, delim rune) []string {
	return sx.split(text, delim, false)
}

// SplitTopLevelGeneric behaves like SplitTopLevel but also treats <> as a
// nesting pair, so generic arguments such as Map<Address, i128> stay whole.
// Arrows (-> and =>) never close a generic.
func (sx Syntax) SplitTopLevelGeneric(text string, delim rune) []string {
	return sx.split(text, delim, true)
}

func (sx Syntax) split(text string, delim rune, generics bool) []string {
	delimStr := string(delim)
	var parens, brackets, braces, angles int
	var segments []string
	last := 0

	for _, tok := range sx.dialect.Tokenize(text) {
		if grammar.IsOpaque(tok.Type) {
			continue
		}

		if tok.Value == delimStr && parens == 0 && brackets == 0 && braces == 0 && angles == 0 {
			segments = appendSegment(segments, text[last:tok.Pos.Offset])
			last = tok.Pos.Offset + len(tok.Value)
			continue
		}

		switch tok.Value {
		case "(":
			parens++
		case ")":
			parens = decrement(parens)
		case "[":
			brackets++
		case "]":
			brackets = decrement(brackets)
		case "{":
			braces++
		case "}":
			braces = decrement(braces)
		case "<":
			if generics {
				angles++
			}
		case ">":
			if generics {
				angles = decrement(angles)
			}
		}
	}

	return appendSegment(segments, text[last:])
}

func appendSegment(segments []string, segment string) []string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return segments
	}
	return append(segments, segment)
}

func decrement(depth int) int {
	if depth > 0 {
		return depth - 1
	}
	return 0
}

// SplitOnce splits a "name: type" fragment on its first single colon.
// Path separators (::) are not split points. ok is false when the fragment
// has no such colon.
func (sx Syntax) SplitOnce(fragment string) (name, rest string, ok bool) {
	for _, tok := range sx.dialect.Tokenize(fragment) {
		if tok.Type == grammar.TokenPunct && tok.Value == ":" {
			name = strings.TrimSpace(fragment[:tok.Pos.Offset])
			rest = strings.TrimSpace(fragment[tok.Pos.Offset+1:])
			return name, rest, true
		}
	}
	return "", "", false
}

// StripComments removes comment tokens from text, keeping everything else
// byte for byte.
func (sx Syntax) StripComments(text string) string {
	var b strings.Builder
	last := 0
	for _, tok := range sx.dialect.Tokenize(text) {
		if tok.Type != grammar.TokenComment {
			continue
		}
		b.WriteString(text[last:tok.Pos.Offset])
		last = tok.Pos.Offset + len(tok.Value)
	}
	b.WriteString(text[last:])
	return b.String()
}

// Tokens exposes the underlying token stream for callers that need to walk
// identifiers without re-implementing literal handling.
func (sx Syntax) Tokens(text string) []lexer.Token {
	return sx.dialect.Tokenize(text)
}
