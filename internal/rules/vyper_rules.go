package rules

import (
	"fmt"
	"strings"

	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

// Entry points that are legitimately external even when called internally.
var externalEntryPoints = map[string]bool{
	"__init__":    true,
	"__default__": true,
	"initialize":  true,
	"setup":       true,
}

// Name fragments that mark a function as a helper.
var helperFragments = []string{
	"helper", "util", "compute", "calculate", "validate", "check",
	"get_", "set_", "update_", "process_", "handle_",
}

type redundantExternalDecoratorRule struct {
	*baseRule
}

// NewRedundantExternalDecoratorRule flags @external functions that look
// internal: either named with a single leading underscore, or self-called
// helpers.
func NewRedundantExternalDecoratorRule() Rule {
	return &redundantExternalDecoratorRule{newBaseRule(
		RuleRedundantExternalDecorator,
		"Redundant External Decorator",
		"Detects internal functions that are accidentally marked as @external, which leads to higher gas consumption and potential security gaps.",
		Warning,
	)}
}

func (r *redundantExternalDecoratorRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	functions := c.Functions()

	selfCalled := map[string]bool{}
	for _, fn := range functions {
		for _, call := range fn.SelfCalls {
			selfCalled[call] = true
		}
	}

	var violations []Violation
	for _, fn := range functions {
		if !fn.HasDecorator("external") {
			continue
		}

		if hasInternalPrefix(fn.Name) {
			violations = append(violations, r.violation(fn.Line, fn.Name,
				fmt.Sprintf("Function '%s' is marked @external but uses internal naming convention (_prefix). This may expose internal logic unnecessarily and increase gas costs.", fn.Name),
				fmt.Sprintf("Consider changing @external to @internal for function '%s'. Internal functions save gas by not generating external interface code and improve security by not exposing internal logic.", fn.Name)))
		} else if selfCalled[fn.Name] && !externalEntryPoints[fn.Name] && looksLikeHelper(fn.Name) {
			violations = append(violations, r.violation(fn.Line, fn.Name,
				fmt.Sprintf("Function '%s' is marked @external but appears to only be called internally (via self.%s()). This wastes gas and may expose internal logic unnecessarily.", fn.Name, fn.Name),
				fmt.Sprintf("Consider changing @external to @internal for function '%s' if it's not meant to be called externally. Internal functions are more gas-efficient and don't expose the function in the contract's ABI.", fn.Name)))
		}
	}
	return violations
}

// hasInternalPrefix reports a single leading underscore; dunder methods are
// excluded.
func hasInternalPrefix(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}

func looksLikeHelper(name string) bool {
	return containsAny(strings.ToLower(name), helperFragments...)
}
