package rules

import (
	"sync"

	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

// Rule identifiers
const (
	RuleUnusedStateVariable        = "unused-state-variable"
	RuleInefficientIntegerType     = "inefficient-integer-type"
	RuleStringInsteadOfSymbol      = "string-instead-of-symbol"
	RulePrivateContractField       = "private-contract-field"
	RuleExpensiveStringOperation   = "expensive-string-operation"
	RuleVecWithoutCapacity         = "vec-without-capacity"
	RuleUnnecessaryClone           = "unnecessary-clone"
	RuleMissingAddressValidation   = "missing-address-validation"
	RuleMissingErrorHandling       = "missing-error-handling"
	RuleUnboundedLoop              = "unbounded-loop"
	RuleInefficientStorageAccess   = "inefficient-storage-access"
	RuleMissingConstructor         = "missing-constructor"
	RuleMissingAdminPattern        = "missing-admin-pattern"
	RuleRedundantExternalDecorator = "redundant-external-decorator"
)

// Rule is one heuristic check over a recovered contract. Apply must not
// modify the contract. usage is nil when no grammar analysis was performed.
type Rule interface {
	ID() string
	Name() string
	Description() string
	Severity() Severity
	Enabled() bool
	SetEnabled(enabled bool)
	Apply(c *ir.Contract, usage semantic.Usage) []Violation
}

// baseRule carries the descriptive metadata and the enabled flag, the only
// mutable state a rule has. Engines are shared across concurrent scans, so
// the flag is guarded.
type baseRule struct {
	id          string
	name        string
	description string
	severity    Severity

	mu       sync.RWMutex
	disabled bool
}

func newBaseRule(id, name, description string, severity Severity) *baseRule {
	return &baseRule{id: id, name: name, description: description, severity: severity}
}

func (r *baseRule) ID() string          { return r.id }
func (r *baseRule) Name() string        { return r.name }
func (r *baseRule) Description() string { return r.description }
func (r *baseRule) Severity() Severity  { return r.severity }

func (r *baseRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled
}

func (r *baseRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled = !enabled
}

// violation builds a finding carrying this rule's id and severity.
func (r *baseRule) violation(line int, subject, description, suggestion string) Violation {
	return Violation{
		RuleID:      r.id,
		Description: description,
		Severity:    r.severity,
		Line:        line,
		Column:      1,
		Subject:     subject,
		Suggestion:  suggestion,
	}
}
