package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Dialect selects the comment and literal rules of one contract language.
type Dialect int

const (
	Rust Dialect = iota
	Vyper
)

// Token kinds shared by every dialect. Tokenize rewrites the lexer's own
// symbols to these so callers never depend on rule order.
const (
	TokenComment lexer.TokenType = iota + 1
	TokenString
	TokenChar
	TokenIdent
	TokenArrow
	TokenPathSep
	TokenPunct
	TokenOther
)

// RustLexer tokenizes Rust source just far enough for structural recovery:
// literals and comments become single tokens so that delimiters inside them
// are never counted. The trailing catch-all rule means lexing cannot fail on
// arbitrary input.
var RustLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},

	// Raw strings close on a quote followed by as many '#' as opened them
	{Name: "RawString", Pattern: `b?r(?:###"(?s:.*?)"###|##"(?s:.*?)"##|#"(?s:.*?)"#|"[^"]*")`},
	{Name: "String", Pattern: `b?"(?:\\.|[^"\\])*"`},
	// Single character literals only, so lifetimes stay out of the way
	{Name: "Char", Pattern: `b?'(?:\\.|[^'\\])'`},

	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	// Multi-character punctuation must come before the single-character set
	{Name: "Arrow", Pattern: `->|=>`},
	{Name: "PathSep", Pattern: `::`},
	{Name: "Punct", Pattern: `[(){}\[\]<>,:;@.]`},

	{Name: "whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `(?s:.)`},
})

// VyperLexer is the Vyper counterpart of RustLexer. '#' starts a comment,
// both quote styles delimit strings and '//' is floor division.
var VyperLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},

	{Name: "String", Pattern: `"""(?s:.*?)"""|'''(?s:.*?)'''|"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`},

	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Arrow", Pattern: `->`},
	{Name: "Punct", Pattern: `[(){}\[\]<>,:;@.]`},

	{Name: "whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `(?s:.)`},
})

var kindsByRule = map[string]lexer.TokenType{
	"Comment":   TokenComment,
	"RawString": TokenString,
	"String":    TokenString,
	"Char":      TokenChar,
	"Ident":     TokenIdent,
	"Arrow":     TokenArrow,
	"PathSep":   TokenPathSep,
	"Punct":     TokenPunct,
	"Other":     TokenOther,
}

type dialectLexer struct {
	def   *lexer.StatefulDefinition
	kinds map[lexer.TokenType]lexer.TokenType
}

func newDialectLexer(def *lexer.StatefulDefinition) dialectLexer {
	kinds := map[lexer.TokenType]lexer.TokenType{}
	for name, symbol := range def.Symbols() {
		if kind, ok := kindsByRule[name]; ok {
			kinds[symbol] = kind
		}
	}
	return dialectLexer{def: def, kinds: kinds}
}

var dialectLexers = map[Dialect]dialectLexer{
	Rust:  newDialectLexer(RustLexer),
	Vyper: newDialectLexer(VyperLexer),
}

// IsOpaque reports whether a token kind hides its contents from
// delimiter tracking.
func IsOpaque(t lexer.TokenType) bool {
	return t == TokenComment || t == TokenString || t == TokenChar
}

// Tokenize lexes source with the dialect's lexer. Offsets in the returned
// tokens are byte offsets into source and types are the shared Token kinds.
// The trailing EOF token is not included.
func (d Dialect) Tokenize(source string) []lexer.Token {
	dl, ok := dialectLexers[d]
	if !ok {
		dl = dialectLexers[Rust]
	}
	lex, err := dl.def.LexString("", source)
	if err != nil {
		return nil
	}

	var tokens []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			return tokens
		}
		if kind, ok := dl.kinds[tok.Type]; ok {
			tok.Type = kind
		} else {
			tok.Type = TokenOther
		}
		tokens = append(tokens, tok)
	}
}
