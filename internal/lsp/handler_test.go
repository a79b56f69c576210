package lsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gasguard/internal/ir"
	"gasguard/internal/lsp"
	"gasguard/internal/rules"
	"gasguard/internal/scanner"
)

const storeSource = `#[contracttype]
pub struct Store {
    pub usedVar: u64,
    pub unusedVar: u64,
}

#[contractimpl]
impl Store {
    pub fn get_used(&self) -> u64 {
        self.usedVar
    }
}
`

const fixedSource = `#[contracttype]
pub struct Store {
    pub usedVar: u64,
}

#[contractimpl]
impl Store {
    pub fn get_used(&self) -> u64 {
        self.usedVar
    }
}
`

const brokenSource = `#[contracttype]
pub struct Store {
    pub usedVar: u64,
}

#[contractimpl]
impl Store {
    pub fn get_used(&self) -> u64 {
        self.usedVar +
    }
}
`

type published struct {
	params []*protocol.PublishDiagnosticsParams
}

func (p *published) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				p.params = append(p.params, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (p *published) last(t *testing.T) []protocol.Diagnostic {
	t.Helper()
	require.NotEmpty(t, p.params)
	return p.params[len(p.params)-1].Diagnostics
}

func unusedOnlyHandler() *lsp.Handler {
	engine := rules.NewEngine(ir.FormatSoroban, rules.NewUnusedStateVariableRule())
	return lsp.NewHandler(scanner.New(scanner.WithEngine(engine.Format(), engine)))
}

func TestDocumentLifecycle(t *testing.T) {
	handler := unusedOnlyHandler()
	var sink published
	ctx := sink.context()
	uri := protocol.DocumentUri("file:///work/store.rs")

	require.NoError(t, handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "rust", Version: 1, Text: storeSource},
	}))

	diagnostics := sink.last(t)
	require.Len(t, diagnostics, 1)
	d := diagnostics[0]
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	assert.Equal(t, rules.RuleUnusedStateVariable, d.Code.Value)
	assert.Equal(t, "gasguard", *d.Source)
	assert.Equal(t, protocol.UInteger(3), d.Range.Start.Line, "zero-based line of the field")
	assert.Equal(t, protocol.UInteger(0), d.Range.Start.Character)
	assert.Equal(t, protocol.UInteger(len("    pub unusedVar: u64,")), d.Range.End.Character)
	assert.Contains(t, d.Message, "State variable 'unusedVar' appears to be unused")

	t.Run("change", func(t *testing.T) {
		require.NoError(t, handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                2,
			},
			ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: fixedSource}},
		}))
		assert.Empty(t, sink.last(t))

		text, ok := handler.Text(uri)
		require.True(t, ok)
		assert.Equal(t, fixedSource, text)
	})

	t.Run("save with broken text", func(t *testing.T) {
		broken := brokenSource
		require.NoError(t, handler.TextDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Text:         &broken,
		}))
		diagnostics := sink.last(t)
		require.Len(t, diagnostics, 1)
		assert.Equal(t, protocol.DiagnosticSeverityError, *diagnostics[0].Severity)
		assert.GreaterOrEqual(t, diagnostics[0].Range.Start.Line, protocol.UInteger(5), "reported inside the impl block")
	})

	t.Run("close", func(t *testing.T) {
		require.NoError(t, handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		}))
		assert.Empty(t, sink.last(t))
		_, ok := handler.Text(uri)
		assert.False(t, ok)
	})
}

func TestDiagnosticsForOtherFiles(t *testing.T) {
	handler := lsp.NewHandler(nil)

	t.Run("rust without contract", func(t *testing.T) {
		diagnostics, err := handler.Diagnostics("file:///work/lib.rs", "pub fn helper() -> u32 {\n    1\n}\n")
		require.NoError(t, err)
		assert.Empty(t, diagnostics)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		diagnostics, err := handler.Diagnostics("file:///work/README.md", "# notes")
		require.NoError(t, err)
		assert.Empty(t, diagnostics)
	})

	t.Run("vyper", func(t *testing.T) {
		source := "@external\ndef _helper():\n    pass\n"
		diagnostics, err := handler.Diagnostics("file:///work/vault.vy", source)
		require.NoError(t, err)
		require.NotEmpty(t, diagnostics)
		assert.Equal(t, rules.RuleRedundantExternalDecorator, diagnostics[0].Code.Value)
		assert.Equal(t, protocol.UInteger(0), diagnostics[0].Range.Start.Line)
	})
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, protocol.DiagnosticSeverityError, lsp.SeverityFor(rules.Error))
	assert.Equal(t, protocol.DiagnosticSeverityError, lsp.SeverityFor(rules.High))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, lsp.SeverityFor(rules.Medium))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, lsp.SeverityFor(rules.Warning))
	assert.Equal(t, protocol.DiagnosticSeverityInformation, lsp.SeverityFor(rules.Info))
}
