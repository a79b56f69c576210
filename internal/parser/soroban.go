package parser

import (
	"fmt"
	"regexp"
	"strings"

	"gasguard/grammar"
	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/structural"
)

var (
	structPattern   = regexp.MustCompile(`^(?:pub(?:\s*\([^)]*\))?\s+)?struct\s+([A-Za-z_]\w*)`)
	implPattern     = regexp.MustCompile(`^(?:unsafe\s+)?impl(?:\s*<[^{]*?>)?\s+(?:([\w:<>, ]+?)\s+for\s+)?([A-Za-z_][\w:]*)`)
	fnPattern       = regexp.MustCompile(`(?m)^\s*(pub(?:\s*\([^)]*\))?\s+)?(?:(?:const|async|unsafe)\s+|extern\s+"[^"]*"\s+)*fn\s+([A-Za-z_]\w*)`)
	pubPrefix       = regexp.MustCompile(`^pub(?:\s*\([^)]*\))?\s+`)
	receiverPattern = regexp.MustCompile(`^&?\s*(?:'\w+\s+)?(?:mut\s+)?self$`)
	identPattern    = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	wherePattern    = regexp.MustCompile(`\bwhere\b`)
)

const (
	attrContract     = "contract"
	attrContractType = "contracttype"
	attrContractImpl = "contractimpl"
)

// sorobanBuilder is the line automaton recovering a Soroban contract. It
// walks the file once; type and impl bodies are consumed whole so their
// contents are never mistaken for top-level declarations.
type sorobanBuilder struct {
	path     string
	source   string
	lines    []structural.Line
	units    unitRecorder
	contract *ir.Contract

	contractName string
	sawMarker    bool
}

// ParseSoroban recovers a Contract from Soroban (Rust) source.
func ParseSoroban(path, source string) (*ParseResult, error) {
	b := &sorobanBuilder{
		path:   path,
		source: source,
		lines:  structural.SplitLines(source),
		units:  unitRecorder{path: path},
		contract: &ir.Contract{
			Format: ir.FormatSoroban,
			Source: source,
			Path:   path,
		},
	}

	b.run()

	if !b.sawMarker {
		return nil, b.units.wholeFileError("no #[contract], #[contracttype] or #[contractimpl] marker", ErrNoContract)
	}
	if b.units.allFailed() {
		return nil, b.units.wholeFileError("no contract unit could be recovered")
	}

	b.contract.Name = b.resolveName()
	if b.contract.Name == "" {
		return nil, b.units.wholeFileError("contract markers are not followed by a declaration", ErrNoContract)
	}

	return &ParseResult{Contract: b.contract, Diagnostics: b.units.failed}, nil
}

func (b *sorobanBuilder) run() {
	var pending []string

	for i := 0; i < len(b.lines); i++ {
		line := b.lines[i]
		trimmed := line.Trimmed()
		offset := line.Offset + line.Indent()

		if name, ok := structural.AttributeName(trimmed); ok {
			pending = append(pending, name)
			if name == attrContract || name == attrContractType || name == attrContractImpl {
				b.sawMarker = true
			}

			// An attribute may share its line with the declaration it annotates
			span, closed := structural.Rust.ExtractBalanced(trimmed, '[', ']', 0)
			if !closed {
				continue
			}
			rest := strings.TrimSpace(trimmed[span.End+1:])
			if rest == "" || strings.HasPrefix(rest, "#[") {
				continue
			}
			offset += strings.Index(trimmed, rest)
			trimmed = rest
		}

		if trimmed == "" || structural.IsCommentLine(trimmed) {
			continue
		}

		end := -1
		switch {
		case hasAttribute(pending, attrContractType) || hasAttribute(pending, attrContract):
			end = b.parseStruct(trimmed, offset, hasAttribute(pending, attrContract))
		case hasAttribute(pending, attrContractImpl):
			end = b.parseImpl(trimmed, offset)
		}
		pending = nil

		if end > 0 {
			// Resume on the line after the unit's closing brace
			i = structural.LineAt(b.source, end) - 1
		}
	}
}

func hasAttribute(attrs []string, name string) bool {
	for _, attr := range attrs {
		if attr == name {
			return true
		}
	}
	return false
}

// parseStruct recovers a declared type starting at offset. It returns the
// offset of the closing brace, or -1 when nothing was consumed.
func (b *sorobanBuilder) parseStruct(decl string, offset int, isContract bool) int {
	captures, ok := structural.MatchLinePattern(decl, structPattern)
	if !ok {
		// enums, consts and functions carry contracttype too; they hold no fields
		return -1
	}
	name := captures[1]
	if isContract && b.contractName == "" {
		b.contractName = name
	}

	// Unit and tuple structs store nothing we can name
	nameEnd := offset + len(captures[0])
	if !b.opensBraceBody(nameEnd) {
		return -1
	}

	b.units.attempt()
	span, ok := structural.Rust.ExtractBalanced(b.source, '{', '}', nameEnd)
	if !ok {
		b.units.fail(&errors.StructuralParseError{
			Position: position(b.path, b.source, offset),
			Unit:     "type " + name,
			Message:  "unbalanced braces in type body",
		})
		return -1
	}

	declared := &ir.DeclaredType{Name: name, Line: structural.LineAt(b.source, offset)}
	if err := b.parseFields(declared, span); err != nil {
		b.units.fail(err)
		return span.End
	}

	b.contract.Types = append(b.contract.Types, declared)
	return span.End
}

// opensBraceBody reports whether the first of '{', ';' and '(' after from is
// an opening brace.
func (b *sorobanBuilder) opensBraceBody(from int) bool {
	idx := strings.IndexAny(b.source[from:], "{;(")
	return idx >= 0 && b.source[from+idx] == '{'
}

func (b *sorobanBuilder) parseFields(declared *ir.DeclaredType, body structural.Span) errors.Positioned {
	text := body.Text(b.source)
	cursor := 0

	for _, fragment := range structural.Rust.SplitTopLevelGeneric(text, ',') {
		idx := strings.Index(text[cursor:], fragment)
		fragmentOffset := body.Start + cursor + idx
		cursor += idx + len(fragment)

		skip := leadingTrivia(fragment)
		decl := strings.TrimSpace(structural.Rust.StripComments(fragment[skip:]))
		if decl == "" {
			continue
		}
		fieldOffset := fragmentOffset + skip

		visibility := ir.Private
		if loc := pubPrefix.FindStringIndex(decl); loc != nil {
			visibility = ir.Public
			decl = decl[loc[1]:]
		}

		name, typeName, ok := structural.Rust.SplitOnce(decl)
		if !ok || !identPattern.MatchString(name) || typeName == "" {
			return &errors.FieldParseError{
				Position: position(b.path, b.source, fieldOffset),
				TypeName: declared.Name,
				Fragment: decl,
			}
		}

		declared.Fields = append(declared.Fields, &ir.Field{
			Name:       name,
			Type:       typeName,
			Visibility: visibility,
			Line:       structural.LineAt(b.source, fieldOffset),
		})
	}

	return nil
}

// leadingTrivia returns how many bytes of comments and attributes precede
// the declaration in a fragment.
func leadingTrivia(fragment string) int {
	tokens := structural.Rust.Tokens(fragment)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Type == grammar.TokenComment:
			continue
		case tok.Value == "#":
			span, ok := structural.Rust.ExtractBalanced(fragment, '[', ']', tok.Pos.Offset)
			if !ok {
				return tok.Pos.Offset
			}
			for i+1 < len(tokens) && tokens[i+1].Pos.Offset <= span.End {
				i++
			}
		default:
			return tok.Pos.Offset
		}
	}
	return len(fragment)
}

// parseImpl recovers an implementation block starting at offset and returns
// the offset of its closing brace, or -1 when nothing was consumed.
func (b *sorobanBuilder) parseImpl(decl string, offset int) int {
	captures, ok := structural.MatchLinePattern(decl, implPattern)
	if !ok {
		return -1
	}

	b.units.attempt()
	target := lastPathSegment(captures[2])
	trait := strings.TrimSpace(captures[1])

	span, ok := structural.Rust.ExtractBalanced(b.source, '{', '}', offset+len(captures[0]))
	if !ok {
		b.units.fail(&errors.StructuralParseError{
			Position: position(b.path, b.source, offset),
			Unit:     "impl " + target,
			Message:  "unbalanced braces in impl body",
		})
		return -1
	}

	impl := &ir.ImplBlock{
		Target: target,
		Trait:  trait,
		Line:   structural.LineAt(b.source, offset),
	}
	b.parseFunctions(impl, span)
	b.contract.Impls = append(b.contract.Impls, impl)

	return span.End
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}

func (b *sorobanBuilder) parseFunctions(impl *ir.ImplBlock, body structural.Span) {
	text := body.Text(b.source)
	cursor := 0

	for cursor < len(text) {
		loc := fnPattern.FindStringSubmatchIndex(text[cursor:])
		if loc == nil {
			return
		}

		isPublic := loc[2] >= 0
		name := text[cursor+loc[4] : cursor+loc[5]]
		match := text[cursor+loc[0] : cursor+loc[1]]
		indent := len(match) - len(strings.TrimLeft(match, " \t\r\n"))
		nameEnd := cursor + loc[1]
		fnOffset := body.Start + cursor + loc[0] + indent

		end, fn, err := b.parseFunction(text, name, nameEnd, fnOffset, body.Start)
		if err != nil {
			b.units.skip(err)
			cursor = nameEnd
			continue
		}
		cursor = end

		if isPublic {
			impl.Functions = append(impl.Functions, fn)
		}
	}
}

// skipGenerics returns the offset just past a generic parameter list opening
// at from, or from itself when there is none. Arrows in bounds such as
// Fn(u32) -> u32 are single tokens and never close the list.
func skipGenerics(text string, from int) int {
	rest := text[from:]
	if !strings.HasPrefix(strings.TrimLeft(rest, " \t\r\n"), "<") {
		return from
	}
	depth := 0
	for _, tok := range structural.Rust.Tokens(rest) {
		if tok.Type != grammar.TokenPunct {
			continue
		}
		switch tok.Value {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return from + tok.Pos.Offset + 1
			}
		}
	}
	return from
}

// parseFunction recovers the signature and body of one function whose name
// ends at nameEnd within text. It returns the position just past the body.
func (b *sorobanBuilder) parseFunction(text, name string, nameEnd, fnOffset, base int) (int, *ir.Function, errors.Positioned) {
	unit := "fn " + name
	params, ok := structural.Rust.ExtractBalanced(text, '(', ')', skipGenerics(text, nameEnd))
	if !ok {
		return 0, nil, &errors.StructuralParseError{
			Position: position(b.path, b.source, fnOffset),
			Unit:     unit,
			Message:  "unbalanced parameter list",
		}
	}

	bodySpan, ok := structural.Rust.ExtractBalanced(text, '{', '}', params.End+1)
	if !ok {
		return 0, nil, &errors.StructuralParseError{
			Position: position(b.path, b.source, fnOffset),
			Unit:     unit,
			Message:  "missing or unbalanced function body",
		}
	}

	fn := &ir.Function{
		Name:          name,
		IsConstructor: ir.IsConstructorName(name),
		Line:          structural.LineAt(b.source, fnOffset),
		Body:          bodySpan.Text(text),
	}

	for _, fragment := range structural.Rust.SplitTopLevelGeneric(params.Text(text), ',') {
		fragment = strings.TrimSpace(structural.Rust.StripComments(fragment[leadingTrivia(fragment):]))
		if fragment == "" || receiverPattern.MatchString(fragment) {
			continue
		}
		paramName, paramType, ok := structural.Rust.SplitOnce(fragment)
		if !ok {
			return 0, nil, &errors.StructuralParseError{
				Position: position(b.path, b.source, base+params.Start),
				Unit:     unit,
				Message:  fmt.Sprintf("parameter %q has no ':' separator", fragment),
			}
		}
		paramName = strings.TrimSpace(strings.TrimPrefix(paramName, "mut "))
		if paramName == "self" {
			continue
		}
		fn.Params = append(fn.Params, &ir.Param{Name: paramName, Type: paramType})
	}

	// Return type sits between the parameter list and the body
	signatureTail := strings.TrimSpace(text[params.End+1 : bodySpan.Start-1])
	if strings.HasPrefix(signatureTail, "->") {
		ret := strings.TrimSpace(signatureTail[2:])
		if loc := wherePattern.FindStringIndex(ret); loc != nil {
			ret = strings.TrimSpace(ret[:loc[0]])
		}
		fn.ReturnType = &ret
	}

	return bodySpan.End + 1, fn, nil
}

// resolveName picks the contract name: the #[contract] struct, else the
// first #[contractimpl] target, else the first declared type.
func (b *sorobanBuilder) resolveName() string {
	if b.contractName != "" {
		return b.contractName
	}
	if len(b.contract.Impls) > 0 {
		return b.contract.Impls[0].Target
	}
	if len(b.contract.Types) > 0 {
		return b.contract.Types[0].Name
	}
	return ""
}
