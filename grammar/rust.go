package grammar

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
)

// ParseRust parses Rust source into a tree-sitter syntax tree. Source that
// the grammar rejects yields a GrammarParseError pointing at the first
// erroneous node. Cancelling ctx aborts the parse.
func ParseRust(ctx context.Context, path string, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, reportParseError(path, source, firstError(root))
	}

	return tree, nil
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing() || child.Type() == "ERROR") {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return n
}

func reportParseError(path string, source []byte, n *sitter.Node) error {
	point := n.StartPoint()
	pos := ir.Position{
		Filename: path,
		Offset:   int(n.StartByte()),
		Line:     int(point.Row) + 1,
		Column:   int(point.Column) + 1,
	}

	var message string
	if n.IsMissing() {
		message = fmt.Sprintf("missing %s", n.Type())
	} else {
		snippet := strings.TrimSpace(n.Content(source))
		if idx := strings.IndexByte(snippet, '\n'); idx >= 0 {
			snippet = snippet[:idx]
		}
		if len(snippet) > 40 {
			snippet = snippet[:40] + "..."
		}
		message = fmt.Sprintf("unexpected %q", snippet)
	}

	return &errors.GrammarParseError{Position: pos, Message: message}
}
