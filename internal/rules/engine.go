package rules

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"gasguard/internal/ir"
	"gasguard/internal/semantic"
)

var log = commonlog.GetLogger("gasguard.rules")

// ErrUnknownRule is returned when enabling or disabling an id no rule has.
var ErrUnknownRule = errors.New("unknown rule")

// Engine evaluates an ordered set of rules. Registration order is
// evaluation order, and Analyze never reorders the combined output.
type Engine struct {
	format ir.Format
	rules  []Rule
	byID   map[string]Rule
}

// NewEngine creates an engine for contracts of the given format.
func NewEngine(format ir.Format, rules ...Rule) *Engine {
	e := &Engine{format: format, byID: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		e.Register(rule)
	}
	return e
}

// SorobanRules returns fresh instances of the Soroban catalogue in
// evaluation order.
func SorobanRules() []Rule {
	return []Rule{
		NewUnusedStateVariableRule(),
		NewInefficientIntegerTypeRule(),
		NewStringInsteadOfSymbolRule(),
		NewPrivateContractFieldRule(),
		NewExpensiveStringOperationRule(),
		NewVecWithoutCapacityRule(),
		NewUnnecessaryCloneRule(),
		NewMissingAddressValidationRule(),
		NewMissingErrorHandlingRule(),
		NewUnboundedLoopRule(),
		NewInefficientStorageAccessRule(),
		NewMissingConstructorRule(),
		NewMissingAdminPatternRule(),
	}
}

// VyperRules returns fresh instances of the Vyper catalogue in evaluation
// order.
func VyperRules() []Rule {
	return []Rule{
		NewRedundantExternalDecoratorRule(),
		NewUnusedStateVariableRule(),
	}
}

func NewSorobanEngine() *Engine {
	return NewEngine(ir.FormatSoroban, SorobanRules()...)
}

func NewVyperEngine() *Engine {
	return NewEngine(ir.FormatVyper, VyperRules()...)
}

// Register appends a rule. A rule with an id already registered replaces
// the earlier one in place.
func (e *Engine) Register(rule Rule) {
	if _, exists := e.byID[rule.ID()]; exists {
		for i, existing := range e.rules {
			if existing.ID() == rule.ID() {
				e.rules[i] = rule
			}
		}
	} else {
		e.rules = append(e.rules, rule)
	}
	e.byID[rule.ID()] = rule
}

func (e *Engine) Format() ir.Format {
	return e.format
}

// Analyze applies every enabled rule to the contract and concatenates the
// findings in registration order.
func (e *Engine) Analyze(c *ir.Contract, usage semantic.Usage) []Violation {
	violations := []Violation{}
	for _, rule := range e.rules {
		if !rule.Enabled() {
			continue
		}
		found := rule.Apply(c, usage)
		if len(found) > 0 {
			log.Debugf("%s: %s reported %d violation(s)", c.Name, rule.ID(), len(found))
		}
		violations = append(violations, found...)
	}
	return violations
}

func (e *Engine) Enable(id string) error {
	return e.setEnabled(id, true)
}

func (e *Engine) Disable(id string) error {
	return e.setEnabled(id, false)
}

func (e *Engine) setEnabled(id string, enabled bool) error {
	rule, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	rule.SetEnabled(enabled)
	return nil
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Rule looks up a registered rule by id.
func (e *Engine) Rule(id string) (Rule, bool) {
	rule, ok := e.byID[id]
	return rule, ok
}

// Has reports whether id names a registered rule.
func (e *Engine) Has(id string) bool {
	_, ok := e.byID[id]
	return ok
}

// KnownRuleIDs returns the id of every rule in either catalogue.
func KnownRuleIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, rule := range append(SorobanRules(), VyperRules()...) {
		if !seen[rule.ID()] {
			seen[rule.ID()] = true
			ids = append(ids, rule.ID())
		}
	}
	return ids
}
