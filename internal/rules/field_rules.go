package rules

import (
	"fmt"
	"strings"

	"gasguard/internal/builtins"
	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

type unusedStateVariableRule struct {
	*baseRule
}

// NewUnusedStateVariableRule flags state fields that nothing references.
//
// Without grammar usage the check is textual: a field whose name occurs at
// most once in the whole source is unused. With usage, the field's type usage
// set decides; types without an implementation block of their own are
// checked against the union of all blocks.
func NewUnusedStateVariableRule() Rule {
	return &unusedStateVariableRule{newBaseRule(
		RuleUnusedStateVariable,
		"Unused State Variables",
		"Detects state variables that are declared but never used",
		Warning,
	)}
}

func (r *unusedStateVariableRule) Apply(c *ir.Contract, usage semantic.Usage) []Violation {
	if len(usage) == 0 {
		return r.applyTextual(c)
	}
	return r.applyWithUsage(c, usage)
}

func (r *unusedStateVariableRule) applyTextual(c *ir.Contract) []Violation {
	var violations []Violation
	for _, t := range c.Types {
		for _, field := range t.Fields {
			if strings.Count(c.Source, field.Name) <= 1 {
				violations = append(violations, r.unused(field))
			}
		}
	}
	return violations
}

func (r *unusedStateVariableRule) applyWithUsage(c *ir.Contract, usage semantic.Usage) []Violation {
	all := usage.All()

	var violations []Violation
	for _, t := range c.Types {
		set, ok := usage.For(t.Name)
		if !ok {
			set = all
		}
		for _, field := range t.Fields {
			if !set.Uses(field.Name) {
				violations = append(violations, r.unused(field))
			}
		}
	}
	return violations
}

func (r *unusedStateVariableRule) unused(field *ir.Field) Violation {
	return r.violation(field.Line, field.Name,
		fmt.Sprintf("State variable '%s' appears to be unused", field.Name),
		fmt.Sprintf("Remove unused state variable '%s' to save ledger storage costs", field.Name))
}

// fieldRule flags every field matching a predicate.
type fieldRule struct {
	*baseRule
	matches  func(*ir.Field) bool
	describe func(*ir.Field) (description, suggestion string)
}

func (r *fieldRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	var violations []Violation
	for _, field := range c.Fields() {
		if r.matches(field) {
			description, suggestion := r.describe(field)
			violations = append(violations, r.violation(field.Line, field.Name, description, suggestion))
		}
	}
	return violations
}

// NewInefficientIntegerTypeRule flags u128 and i128 fields.
func NewInefficientIntegerTypeRule() Rule {
	return &fieldRule{
		baseRule: newBaseRule(
			RuleInefficientIntegerType,
			"Inefficient Integer Types",
			"Detects use of unnecessarily large integer types",
			Info,
		),
		matches: func(f *ir.Field) bool { return builtins.IsWideInteger(f.Type) },
		describe: func(f *ir.Field) (string, string) {
			return fmt.Sprintf("Field '%s' uses %s which may be unnecessarily large", f.Name, f.Type),
				"Consider using a smaller integer type like u64 or u32 if the range permits"
		},
	}
}

// NewStringInsteadOfSymbolRule flags String fields.
func NewStringInsteadOfSymbolRule() Rule {
	return &fieldRule{
		baseRule: newBaseRule(
			RuleStringInsteadOfSymbol,
			"String Instead Of Symbol",
			"Detects String fields that could be stored as the cheaper Symbol type",
			Info,
		),
		matches: func(f *ir.Field) bool { return builtins.IsStringType(f.Type) },
		describe: func(f *ir.Field) (string, string) {
			return fmt.Sprintf("Field '%s' uses String type", f.Name),
				"Consider using Symbol for fixed string values to save storage costs"
		},
	}
}

// NewPrivateContractFieldRule flags fields without pub.
func NewPrivateContractFieldRule() Rule {
	return &fieldRule{
		baseRule: newBaseRule(
			RulePrivateContractField,
			"Private Contract Field",
			"Detects contract type fields that are not publicly accessible",
			Warning,
		),
		matches: func(f *ir.Field) bool { return f.Visibility == ir.Private },
		describe: func(f *ir.Field) (string, string) {
			return fmt.Sprintf("Field '%s' is private but contract fields should typically be public", f.Name),
				fmt.Sprintf("Change '%s' to 'pub %s' to make it accessible", f.Name, f.Name)
		},
	}
}
