package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for a recovered contract
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the string representation of a contract
func Print(contract *Contract) string {
	p := NewPrinter()
	p.printContract(contract)
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printContract(contract *Contract) {
	p.writeLine("CONTRACT %s (%s)", contract.Name, contract.Format)
	if contract.Path != "" {
		p.writeLine("SOURCE %s", contract.Path)
	}
	p.writeLine("")

	if len(contract.Types) > 0 {
		p.writeLine("TYPES:")
		p.indent++
		for _, t := range contract.Types {
			p.printType(t)
		}
		p.indent--
		p.writeLine("")
	}

	if len(contract.Impls) > 0 {
		p.writeLine("IMPLEMENTATIONS:")
		p.indent++
		for _, impl := range contract.Impls {
			p.printImpl(impl)
		}
		p.indent--
	}
}

func (p *Printer) printType(t *DeclaredType) {
	p.writeLine("%s (line %d)", t.Name, t.Line)
	p.indent++
	for _, f := range t.Fields {
		p.writeLine("%s %s: %s (line %d)", f.Visibility, f.Name, f.Type, f.Line)
	}
	p.indent--
}

func (p *Printer) printImpl(impl *ImplBlock) {
	if impl.Trait != "" {
		p.writeLine("%s for %s (line %d)", impl.Trait, impl.Target, impl.Line)
	} else {
		p.writeLine("%s (line %d)", impl.Target, impl.Line)
	}

	p.indent++
	for _, fn := range impl.Functions {
		p.printFunction(fn)
	}
	p.indent--
}

func (p *Printer) printFunction(fn *Function) {
	for _, d := range fn.Decorators {
		p.writeLine("@%s", d.Name)
	}

	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.Name + ": " + param.Type
	}

	signature := fmt.Sprintf("fn %s(%s)", fn.Name, strings.Join(params, ", "))
	if fn.ReturnType != nil {
		signature += " -> " + *fn.ReturnType
	}
	if fn.IsConstructor {
		signature += " [constructor]"
	}
	p.writeLine("%s (line %d)", signature, fn.Line)

	if len(fn.SelfCalls) > 0 {
		p.indent++
		p.writeLine("calls: %s", strings.Join(fn.SelfCalls, ", "))
		p.indent--
	}
}
