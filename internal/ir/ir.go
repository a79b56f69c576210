package ir

import "strings"

// This file holds the format-independent contract representation recovered
// from source text. A Contract is built once per file by a parser and is
// read-only afterwards.

// Format identifies the contract source format a Contract was recovered from
type Format string

const (
	FormatUnknown Format = ""
	FormatSoroban Format = "soroban"
	FormatVyper   Format = "vyper"
)

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Visibility of a declared field
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Contract is the recovered shape of one contract source file
// Example: a Soroban file with "#[contracttype] pub struct Token { ... }" and
// "#[contractimpl] impl Token { ... }"
type Contract struct {
	Name   string
	Format Format
	Types  []*DeclaredType
	Impls  []*ImplBlock
	Source string
	Path   string
}

// DeclaredType is a persisted-state record with its fields
// Example: "pub struct Vault { pub admin: Address, total: i128 }"
type DeclaredType struct {
	Name   string
	Fields []*Field
	Line   int
}

// Field is a single declared state field
// Example: "pub balance: i128"
type Field struct {
	Name       string
	Type       string
	Visibility Visibility
	Line       int
}

// ImplBlock groups the functions implemented for a target type
// Example: "impl Token { pub fn mint(...) {...} }" or "impl Interface for Token { ... }"
type ImplBlock struct {
	Target    string
	Trait     string
	Functions []*Function
	Line      int
}

// Function is one recovered function with its raw body text
// Example: "pub fn transfer(env: Env, to: Address, amount: i128) -> Result<(), Error> { ... }"
type Function struct {
	Name          string
	Params        []*Param
	ReturnType    *string
	IsConstructor bool
	Line          int
	Body          string

	// Vyper only
	Decorators []Decorator
	SelfCalls  []string
}

// Param is a function parameter
type Param struct {
	Name string
	Type string
}

// Decorator is a "@name" line attached to a function
type Decorator struct {
	Name string
	Line int
}

// IsConstructorName applies the constructor naming convention: "new" or a
// name ending in "_init".
func IsConstructorName(name string) bool {
	return name == "new" || strings.HasSuffix(name, "_init")
}

// Functions returns every function across all implementation blocks in
// declaration order.
func (c *Contract) Functions() []*Function {
	var functions []*Function
	for _, impl := range c.Impls {
		functions = append(functions, impl.Functions...)
	}
	return functions
}

// Fields returns every field across all declared types in declaration order.
func (c *Contract) Fields() []*Field {
	var fields []*Field
	for _, t := range c.Types {
		fields = append(fields, t.Fields...)
	}
	return fields
}

// HasDecorator reports whether the function carries the named decorator.
func (f *Function) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Return returns the return type or the empty string when absent.
func (f *Function) Return() string {
	if f.ReturnType == nil {
		return ""
	}
	return *f.ReturnType
}
