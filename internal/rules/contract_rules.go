package rules

import (
	"strings"

	"gasguard/internal/builtins"
	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

type missingConstructorRule struct {
	*baseRule
}

// NewMissingConstructorRule flags contracts where no implementation block
// declares a constructor. Contracts without any functions are flagged too.
func NewMissingConstructorRule() Rule {
	return &missingConstructorRule{newBaseRule(
		RuleMissingConstructor,
		"Missing Constructor",
		"Detects contracts without constructor functions for initialization",
		Warning,
	)}
}

func (r *missingConstructorRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	for _, fn := range c.Functions() {
		if fn.IsConstructor {
			return nil
		}
	}
	return []Violation{r.violation(1, c.Name,
		"Contract lacks a constructor function for initialization",
		"Add a 'new' function that initializes the contract state properly")}
}

type missingAdminPatternRule struct {
	*baseRule
}

// NewMissingAdminPatternRule suggests an admin field when no field looks
// like one.
func NewMissingAdminPatternRule() Rule {
	return &missingAdminPatternRule{newBaseRule(
		RuleMissingAdminPattern,
		"Admin Pattern Suggestion",
		"Suggests adding admin/owner pattern for access control",
		Info,
	)}
}

func (r *missingAdminPatternRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	for _, field := range c.Fields() {
		if strings.Contains(field.Name, "admin") || strings.Contains(field.Name, "owner") {
			return nil
		}
		if builtins.MentionsAddress(field.Type) {
			return nil
		}
	}
	return []Violation{r.violation(1, c.Name,
		"Consider adding an admin/owner field for access control",
		"Add an 'admin: Address' field to your contract state for administrative functions")}
}
