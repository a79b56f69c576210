package structural

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		open   rune
		close  rune
		from   int
		want   string
		wantOK bool
	}{
		{"simple parens", "fn f(a, (b, c)) {}", '(', ')', 0, "a, (b, c)", true},
		{"nested braces", "struct S { a: u32, inner: { x } } tail", '{', '}', 0, " a: u32, inner: { x } ", true},
		{"starts from offset", "(a) (b)", '(', ')', 1, "b", true},
		{"close before open is ignored", ") (x)", '(', ')', 0, "x", true},
		{"delimiters inside strings", `f("(", ')')`, '(', ')', 0, `"(", ')'`, true},
		{"delimiters inside comments", "f(a /* ) */, b // )\n)", '(', ')', 0, "a /* ) */, b // )\n", true},
		{"empty interior", "f()", '(', ')', 0, "", true},
		{"unbalanced", "fn f(a, b", '(', ')', 0, "", false},
		{"no open delimiter", "abc", '(', ')', 0, "", false},
		{"offset past end", "(a)", '(', ')', 10, "", false},
		{"negative offset", "(a)", '(', ')', -4, "a", true},
		{"delimiters inside raw strings", `fn f() { let s = r#"}"#; x }`, '{', '}', 0, ` let s = r#"}"#; x `, true},
		{"raw string with inner quote", `f(r##"a"#)"##, b)`, '(', ')', 0, `r##"a"#)"##, b`, true},
		{"lifetimes are not literals", "fn f<'a>(x: &'a str) {}", '(', ')', 0, "x: &'a str", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := Rust.ExtractBalanced(tt.text, tt.open, tt.close, tt.from)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, span.Text(tt.text))
			} else {
				assert.Equal(t, Span{}, span)
			}
		})
	}
}

func TestExtractBalancedNeverPanics(t *testing.T) {
	inputs := []string{"", "{", "}", "{{{", "}}}", "\"{", "'{'", "/* {", "{ \"unterminated"}
	for _, input := range inputs {
		assert.NotPanics(t, func() {
			Rust.ExtractBalanced(input, '{', '}', 0)
		}, input)
	}
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		delim rune
		want  []string
	}{
		{"flat", "a, b, c", ',', []string{"a", "b", "c"}},
		{"nested families", "a(1, 2), b[3, 4], c{5, 6}", ',', []string{"a(1, 2)", "b[3, 4]", "c{5, 6}"}},
		{"drops empty segments", " , a,, b , ", ',', []string{"a", "b"}},
		{"quoted delimiter", `"x,y", z`, ',', []string{`"x,y"`, "z"}},
		{"empty input", "   ", ',', nil},
		{"generic arguments split without generic tracking", "m: Map<Address, i128>, o: Address", ',', []string{"m: Map<Address", "i128>", "o: Address"}},
		{"other delimiter", "a | (b | c) | d", '|', []string{"a", "(b | c)", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rust.SplitTopLevel(tt.text, tt.delim))
		})
	}
}

func TestSplitTopLevelGeneric(t *testing.T) {
	t.Run("keeps generic arguments together", func(t *testing.T) {
		got := Rust.SplitTopLevelGeneric("balances: Map<Address, i128>, owner: Address", ',')
		assert.Equal(t, []string{"balances: Map<Address, i128>", "owner: Address"}, got)
	})

	t.Run("arrows do not close generics", func(t *testing.T) {
		got := Rust.SplitTopLevelGeneric("f: fn(u32) -> u32, g: Vec<Result<u8, Error>>", ',')
		assert.Equal(t, []string{"f: fn(u32) -> u32", "g: Vec<Result<u8, Error>>"}, got)
	})
}

func TestSplitOnce(t *testing.T) {
	name, rest, ok := Rust.SplitOnce("pub admin: Address")
	require.True(t, ok)
	assert.Equal(t, "pub admin", name)
	assert.Equal(t, "Address", rest)

	name, rest, ok = Rust.SplitOnce("to: soroban_sdk::Address")
	require.True(t, ok)
	assert.Equal(t, "to", name)
	assert.Equal(t, "soroban_sdk::Address", rest)

	_, _, ok = Rust.SplitOnce("Vec<u32>")
	assert.False(t, ok)

	_, _, ok = Rust.SplitOnce("std::collections::Map")
	assert.False(t, ok)
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "a \nb ", Rust.StripComments("a // one\nb /* two */"))
	assert.Equal(t, "#[contracttype]\nx # note", Rust.StripComments("#[contracttype]\nx # note"))
	assert.Equal(t, "x ", Vyper.StripComments("x # note"))
	assert.Equal(t, "a // b ", Vyper.StripComments("a // b # floor division"))
}

func TestVyperLiterals(t *testing.T) {
	t.Run("single quoted strings are opaque", func(t *testing.T) {
		text := "def f(s: String[4] = 'ab)', n: uint256):"
		span, ok := Vyper.ExtractBalanced(text, '(', ')', 0)
		require.True(t, ok)
		assert.Equal(t, "s: String[4] = 'ab)', n: uint256", span.Text(text))

		got := Vyper.SplitTopLevel("a: String[8] = 'x,(y', b: uint256", ',')
		assert.Equal(t, []string{"a: String[8] = 'x,(y'", "b: uint256"}, got)
	})

	t.Run("triple quoted docstrings", func(t *testing.T) {
		text := "def f():\n    '''doc ( with ) parens'''\n    return (1)\n"
		span, ok := Vyper.ExtractBalanced(text, '(', ')', 6)
		require.True(t, ok)
		assert.Equal(t, "1", span.Text(text))
	})

	t.Run("hash comments hide delimiters", func(t *testing.T) {
		text := "f(a, # )\n b)"
		span, ok := Vyper.ExtractBalanced(text, '(', ')', 0)
		require.True(t, ok)
		assert.Equal(t, "a, # )\n b", span.Text(text))
	})
}

func TestLines(t *testing.T) {
	text := "first\r\n  second\nthird"
	lines := SplitLines(text)
	require.Len(t, lines, 3)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, 2, lines[1].Number)
	assert.Equal(t, 2, lines[1].Indent())
	assert.Equal(t, "second", lines[1].Trimmed())
	assert.Equal(t, len("first\r\n  second\n"), lines[2].Offset)

	assert.Equal(t, 1, LineAt(text, 0))
	assert.Equal(t, 2, LineAt(text, lines[1].Offset))
	assert.Equal(t, 3, LineAt(text, len(text)+5))
}

func TestLinePatterns(t *testing.T) {
	name, ok := AttributeName("  #[contracttype]")
	require.True(t, ok)
	assert.Equal(t, "contracttype", name)

	name, ok = AttributeName(`#[contract(name = "token")]`)
	require.True(t, ok)
	assert.Equal(t, "contract", name)

	_, ok = AttributeName("// #[contracttype]")
	assert.False(t, ok)

	name, ok = DecoratorName("@external")
	require.True(t, ok)
	assert.Equal(t, "external", name)

	_, ok = DecoratorName("x = a @ b")
	assert.False(t, ok)

	captures, ok := MatchLinePattern("def transfer(to: address):", regexp.MustCompile(`^def\s+(\w+)\s*\(`))
	require.True(t, ok)
	assert.Equal(t, "transfer", captures[1])

	assert.True(t, IsCommentLine("   # note"))
	assert.True(t, IsCommentLine("/// doc"))
	assert.False(t, IsCommentLine("#[contractimpl]"))
}
