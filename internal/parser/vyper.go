package parser

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/structural"
)

var (
	defPattern      = regexp.MustCompile(`^def\s+(\w+)\s*\(`)
	selfCallPattern = regexp.MustCompile(`self\.(\w+)\s*\(`)
	storagePattern  = regexp.MustCompile(`^([A-Za-z_]\w*)\s*:\s*(.+)$`)
	wrapperPattern  = regexp.MustCompile(`^(public|constant|immutable|transient)\s*\((.*)\)$`)
)

// Module-level statements that share the "name: value" shape of storage
var vyperDirectives = map[string]bool{
	"implements":  true,
	"uses":        true,
	"initializes": true,
	"exports":     true,
}

// decoratorState is the automaton's only carried state: the decorators
// seen since the last declaration. It is passed into and returned from
// every step so the scan loop holds no hidden state.
type decoratorState struct {
	decorators []ir.Decorator
}

func (s decoratorState) push(d ir.Decorator) decoratorState {
	return decoratorState{decorators: append(slices.Clip(s.decorators), d)}
}

func (s decoratorState) pending() bool {
	return len(s.decorators) > 0
}

// startLine is the line of the first pending decorator, or fallback.
func (s decoratorState) startLine(fallback int) int {
	if len(s.decorators) == 0 {
		return fallback
	}
	return s.decorators[0].Line
}

type vyperBuilder struct {
	path    string
	source  string
	lines   []structural.Line
	units   unitRecorder
	storage *ir.DeclaredType
	impl    *ir.ImplBlock
}

// ParseVyper recovers a Contract from Vyper source. The contract is named
// after the file stem; storage variables form a single declared type and all
// functions a single implementation block, both carrying that name.
func ParseVyper(path, source string) (*ParseResult, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b := &vyperBuilder{
		path:    path,
		source:  source,
		lines:   structural.SplitLines(source),
		units:   unitRecorder{path: path},
		storage: &ir.DeclaredType{Name: name, Line: 1},
		impl:    &ir.ImplBlock{Target: name, Line: 1},
	}

	state := decoratorState{}
	for i := 0; i < len(b.lines); {
		state, i = b.step(state, i)
	}
	if state.pending() {
		log.Debugf("%s: dropping decorators without a following def", path)
	}

	if b.units.allFailed() {
		return nil, b.units.wholeFileError("no function or storage declaration could be recovered")
	}

	contract := &ir.Contract{
		Name:   name,
		Format: ir.FormatVyper,
		Types:  []*ir.DeclaredType{b.storage},
		Impls:  []*ir.ImplBlock{b.impl},
		Source: source,
		Path:   path,
	}
	return &ParseResult{Contract: contract, Diagnostics: b.units.failed}, nil
}

// step consumes the line at index i (and, for a def, its whole body) and
// returns the updated decorator state with the next line index.
func (b *vyperBuilder) step(state decoratorState, i int) (decoratorState, int) {
	line := b.lines[i]
	trimmed := line.Trimmed()

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return state, i + 1
	}

	if name, ok := structural.DecoratorName(trimmed); ok {
		return state.push(ir.Decorator{Name: name, Line: line.Number}), i + 1
	}

	// Vyper has no nested functions; indented defs are interface stubs
	if captures, ok := structural.MatchLinePattern(trimmed, defPattern); ok && line.Indent() == 0 {
		return decoratorState{}, b.parseDef(state, i, captures[1])
	}

	if line.Indent() == 0 {
		b.parseStorage(line)
	}
	if state.pending() {
		log.Debugf("%s:%d: decorators not followed by a def", b.path, line.Number)
	}
	return decoratorState{}, i + 1
}

func (b *vyperBuilder) parseStorage(line structural.Line) {
	text := strings.TrimSpace(structural.Vyper.StripComments(line.Text))
	captures, ok := structural.MatchLinePattern(text, storagePattern)
	if !ok {
		return
	}

	name := captures[1]
	if vyperDirectives[name] {
		return
	}
	typeName := captures[2]
	if parts := structural.Vyper.SplitTopLevel(typeName, '='); len(parts) > 0 {
		typeName = parts[0]
	}

	visibility := ir.Private
	if wrapper, ok := structural.MatchLinePattern(typeName, wrapperPattern); ok {
		switch wrapper[1] {
		case "constant", "immutable":
			// compiled into bytecode, never stored
			return
		case "public":
			visibility = ir.Public
		}
		typeName = strings.TrimSpace(wrapper[2])
	}

	b.units.attempt()
	b.storage.Fields = append(b.storage.Fields, &ir.Field{
		Name:       name,
		Type:       typeName,
		Visibility: visibility,
		Line:       line.Number,
	})
}

// parseDef recovers the function whose def line is at index i and returns
// the index of the first line after its body.
func (b *vyperBuilder) parseDef(state decoratorState, i int, name string) int {
	line := b.lines[i]
	b.units.attempt()

	params, ok := structural.Vyper.ExtractBalanced(b.source, '(', ')', line.Offset+line.Indent())
	if !ok {
		b.units.fail(&errors.StructuralParseError{
			Position: ir.Position{Filename: b.path, Line: line.Number, Column: line.Indent() + 1},
			Unit:     "def " + name,
			Message:  "unbalanced parameter list",
		})
		return i + 1
	}

	fn := &ir.Function{
		Name:          name,
		IsConstructor: name == "__init__" || ir.IsConstructorName(name),
		Line:          state.startLine(line.Number),
		Decorators:    state.decorators,
	}

	for _, fragment := range structural.Vyper.SplitTopLevel(params.Text(b.source), ',') {
		fragment = strings.TrimSpace(structural.Vyper.StripComments(fragment))
		if fragment == "" {
			continue
		}
		paramName, paramType, ok := structural.Vyper.SplitOnce(fragment)
		if !ok {
			b.units.fail(&errors.StructuralParseError{
				Position: ir.Position{Filename: b.path, Line: line.Number, Column: 1},
				Unit:     "def " + name,
				Message:  "parameter " + fragment + " has no ':' separator",
			})
			return i + 1
		}
		if parts := structural.Vyper.SplitTopLevel(paramType, '='); len(parts) > 0 {
			paramType = parts[0]
		}
		fn.Params = append(fn.Params, &ir.Param{Name: paramName, Type: paramType})
	}

	// The signature ends on the line holding the closing parenthesis
	sigLine := structural.LineAt(b.source, params.End)
	closing := b.lines[sigLine-1]
	tail := strings.TrimSpace(structural.Vyper.StripComments(b.source[params.End+1 : closing.Offset+len(closing.Text)]))
	if head, _, ok := structural.Vyper.SplitOnce(tail); ok {
		tail = head
	}
	if strings.HasPrefix(tail, "->") {
		ret := strings.TrimSpace(tail[2:])
		fn.ReturnType = &ret
	}

	next := b.bodyEnd(sigLine, line.Indent())
	if next > sigLine {
		end := len(b.source)
		if next < len(b.lines) {
			end = b.lines[next].Offset
		}
		fn.Body = strings.TrimRight(b.source[b.lines[sigLine].Offset:end], " \t\r\n")
	}

	seen := map[string]bool{}
	for _, call := range selfCallPattern.FindAllStringSubmatch(fn.Body, -1) {
		if !seen[call[1]] {
			seen[call[1]] = true
			fn.SelfCalls = append(fn.SelfCalls, call[1])
		}
	}

	b.impl.Functions = append(b.impl.Functions, fn)
	return next
}

// bodyEnd returns the index of the first line after start that is neither
// blank, a comment, nor indented deeper than defIndent.
func (b *vyperBuilder) bodyEnd(start, defIndent int) int {
	j := start
	for j < len(b.lines) {
		candidate := b.lines[j]
		trimmed := candidate.Trimmed()
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && candidate.Indent() <= defIndent {
			break
		}
		j++
	}
	return j
}
