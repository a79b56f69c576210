package report

import (
	"fmt"
	"sort"

	"gasguard/internal/rules"
)

// Storage estimates are fixed heuristics, not measurements.
const (
	KBPerUnusedField = 2.5
	RentPerKB        = 0.001
)

// Categories partitions violations into presentation tiers. Every violation
// lands in exactly one tier.
type Categories struct {
	Errors   []rules.Violation
	Warnings []rules.Violation
	Info     []rules.Violation
}

// Categorize sorts violations into tiers: error and high are errors,
// warning and medium are warnings, info is info. Order within a tier follows
// the input.
func Categorize(violations []rules.Violation) Categories {
	var c Categories
	for _, v := range violations {
		switch {
		case v.Severity.AtLeast(rules.High):
			c.Errors = append(c.Errors, v)
		case v.Severity.AtLeast(rules.Warning):
			c.Warnings = append(c.Warnings, v)
		default:
			c.Info = append(c.Info, v)
		}
	}
	return c
}

// Savings estimates what removing unused state would save.
type Savings struct {
	UnusedFields int     `json:"unusedFields"`
	EstimatedKB  float64 `json:"estimatedKB"`
	MonthlyRent  float64 `json:"monthlyRent"`
}

// StorageSavings counts unused-state-variable findings and derives the
// storage and monthly rent estimates from them.
func StorageSavings(violations []rules.Violation) Savings {
	unused := 0
	for _, v := range violations {
		if v.RuleID == rules.RuleUnusedStateVariable {
			unused++
		}
	}
	kb := float64(unused) * KBPerUnusedField
	return Savings{
		UnusedFields: unused,
		EstimatedKB:  kb,
		MonthlyRent:  kb * RentPerKB,
	}
}

func (s Savings) String() string {
	return fmt.Sprintf("💰 Storage Optimization Potential:\n   • %d unused state variables\n   • %.1f KB storage savings\n   • %.4f XLM/month ledger rent savings",
		s.UnusedFields, s.EstimatedKB, s.MonthlyRent)
}

// Summary renders a one-line tally of violations.
func Summary(violations []rules.Violation) string {
	if len(violations) == 0 {
		return "No issues found"
	}
	c := Categorize(violations)
	return fmt.Sprintf("Found %d issues: %d errors, %d warnings, %d info",
		len(violations), len(c.Errors), len(c.Warnings), len(c.Info))
}

// RuleCount is the number of findings one rule produced.
type RuleCount struct {
	RuleID string
	Count  int
}

// CountByRule tallies findings per rule, most frequent first; ties are
// ordered by rule id.
func CountByRule(violations []rules.Violation) []RuleCount {
	tally := map[string]int{}
	for _, v := range violations {
		tally[v.RuleID]++
	}
	counts := make([]RuleCount, 0, len(tally))
	for id, n := range tally {
		counts = append(counts, RuleCount{RuleID: id, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].RuleID < counts[j].RuleID
	})
	return counts
}

// Recommendations returns remediation advice for a set of findings.
func Recommendations(violations []rules.Violation) []string {
	var advice []string
	if savings := StorageSavings(violations); savings.UnusedFields > 0 {
		advice = append(advice,
			fmt.Sprintf("Remove %d unused state variables to reduce storage costs", savings.UnusedFields),
			"Consider using more efficient data types where possible",
			"Implement lazy loading patterns for rarely accessed data",
		)
	}
	for _, rc := range CountByRule(violations) {
		switch rc.RuleID {
		case rules.RuleInefficientStorageAccess:
			advice = append(advice, "Cache storage reads in local variables instead of repeated ledger access")
		case rules.RuleUnboundedLoop:
			advice = append(advice, "Bound every loop by a collection length or explicit range")
		case rules.RuleRedundantExternalDecorator:
			advice = append(advice, "Mark helper functions @internal to shrink the external ABI")
		}
	}
	return advice
}
