package rules

import (
	"fmt"
	"strings"

	"gasguard/internal/builtins"
	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

// functionRule flags every function matching a predicate. The subject of
// each finding is the function name.
type functionRule struct {
	*baseRule
	matches  func(*ir.Function) bool
	describe func(*ir.Function) (description, suggestion string)
}

func (r *functionRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	var violations []Violation
	for _, fn := range c.Functions() {
		if r.matches(fn) {
			description, suggestion := r.describe(fn)
			violations = append(violations, r.violation(fn.Line, fn.Name, description, suggestion))
		}
	}
	return violations
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// NewExpensiveStringOperationRule flags bodies that build strings at runtime.
func NewExpensiveStringOperationRule() Rule {
	return &functionRule{
		baseRule: newBaseRule(
			RuleExpensiveStringOperation,
			"Expensive String Operations",
			"Detects expensive string operations that increase gas/storage costs",
			Medium,
		),
		matches: func(fn *ir.Function) bool {
			return containsAny(fn.Body, ".to_string()", "String::from(", "format!(")
		},
		describe: func(fn *ir.Function) (string, string) {
			return fmt.Sprintf("Function '%s' uses expensive string operations", fn.Name),
				"Consider using Symbol or Bytes for fixed data, or minimize string operations to reduce gas costs"
		},
	}
}

// NewVecWithoutCapacityRule flags Vec::new() when no capacity is reserved
// anywhere in the body.
func NewVecWithoutCapacityRule() Rule {
	return &functionRule{
		baseRule: newBaseRule(
			RuleVecWithoutCapacity,
			"Vec Without Capacity",
			"Detects vectors created without pre-allocated capacity",
			Medium,
		),
		matches: func(fn *ir.Function) bool {
			return strings.Contains(fn.Body, "Vec::new()") && !strings.Contains(fn.Body, "with_capacity")
		},
		describe: func(*ir.Function) (string, string) {
			return "Vec::new() without capacity can cause multiple reallocations",
				"Use Vec::with_capacity() to pre-allocate memory when size is known"
		},
	}
}

// NewUnnecessaryCloneRule flags any .clone() call.
func NewUnnecessaryCloneRule() Rule {
	return &functionRule{
		baseRule: newBaseRule(
			RuleUnnecessaryClone,
			"Unnecessary Clone",
			"Detects clone operations that copy data where a reference would do",
			Medium,
		),
		matches: func(fn *ir.Function) bool { return strings.Contains(fn.Body, ".clone()") },
		describe: func(*ir.Function) (string, string) {
			return "Clone operations increase resource usage and gas costs",
				"Avoid unnecessary cloning, use references where possible"
		},
	}
}

// NewMissingErrorHandlingRule flags state-changing functions that do not
// return a Result.
func NewMissingErrorHandlingRule() Rule {
	return &functionRule{
		baseRule: newBaseRule(
			RuleMissingErrorHandling,
			"Missing Error Handling",
			"Detects functions that should return Result but don't",
			Medium,
		),
		matches: func(fn *ir.Function) bool {
			if !containsAny(fn.Name, "transfer", "mint", "burn", "set") {
				return false
			}
			return fn.ReturnType == nil || !strings.Contains(*fn.ReturnType, "Result")
		},
		describe: func(fn *ir.Function) (string, string) {
			return fmt.Sprintf("Function '%s' should return Result for proper error handling", fn.Name),
				"Return Result<(), Error> to properly handle operation failures and provide better error reporting"
		},
	}
}

// NewUnboundedLoopRule flags loops with no visible bound.
func NewUnboundedLoopRule() Rule {
	return &functionRule{
		baseRule: newBaseRule(
			RuleUnboundedLoop,
			"Unbounded Loop Detection",
			"Detects loops without clear termination conditions that could exhaust CPU limits",
			High,
		),
		matches: func(fn *ir.Function) bool {
			if !containsAny(fn.Body, "loop {", "while ", "for ") {
				return false
			}
			return !containsAny(fn.Body, ".len()", "range(", "..")
		},
		describe: func(fn *ir.Function) (string, string) {
			return fmt.Sprintf("Function '%s' contains potentially unbounded loop", fn.Name),
				"Ensure loops have clear termination conditions to prevent CPU limit exhaustion"
		},
	}
}

// storageOperations are the ledger accessors counted per body.
var storageOperations = []string{".get(", ".set(", ".load(", ".store("}

// maxStorageOperations is the number of ledger accesses a body may make
// before caching is suggested.
const maxStorageOperations = 3

func countStorageOperations(body string) int {
	total := 0
	for _, op := range storageOperations {
		total += strings.Count(body, op)
	}
	return total
}

type inefficientStorageAccessRule struct {
	*baseRule
}

// NewInefficientStorageAccessRule flags bodies with more than three ledger
// accesses.
func NewInefficientStorageAccessRule() Rule {
	return &inefficientStorageAccessRule{newBaseRule(
		RuleInefficientStorageAccess,
		"Inefficient Storage Access",
		"Detects multiple reads/writes to the same storage key without caching",
		Medium,
	)}
}

func (r *inefficientStorageAccessRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	var violations []Violation
	for _, fn := range c.Functions() {
		if total := countStorageOperations(fn.Body); total > maxStorageOperations {
			violations = append(violations, r.violation(fn.Line, fn.Name,
				fmt.Sprintf("Function '%s' performs %d storage operations - consider caching", fn.Name, total),
				"Cache frequently accessed storage values in local variables to reduce ledger interactions"))
		}
	}
	return violations
}

type missingAddressValidationRule struct {
	*baseRule
}

// NewMissingAddressValidationRule flags setter and transfer functions once
// per Address parameter.
func NewMissingAddressValidationRule() Rule {
	return &missingAddressValidationRule{newBaseRule(
		RuleMissingAddressValidation,
		"Missing Address Validation",
		"Detects setter and transfer functions taking Address parameters without validation",
		Medium,
	)}
}

func (r *missingAddressValidationRule) Apply(c *ir.Contract, _ semantic.Usage) []Violation {
	var violations []Violation
	for _, fn := range c.Functions() {
		if !containsAny(fn.Name, "set", "transfer") {
			continue
		}
		for _, param := range fn.Params {
			if builtins.MentionsAddress(param.Type) {
				violations = append(violations, r.violation(fn.Line, fn.Name,
					fmt.Sprintf("Function '%s' takes Address parameter but may lack validation", fn.Name),
					"Validate Address parameters to prevent invalid addresses"))
			}
		}
	}
	return violations
}
