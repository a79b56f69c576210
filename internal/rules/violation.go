package rules

import (
	"fmt"

	"gasguard/internal/errors"
)

// Violation is one finding emitted by a rule. Violations are values: a rule
// builds each one completely and nothing modifies it afterwards.
type Violation struct {
	RuleID      string   `json:"ruleId"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Line        int      `json:"lineNumber"`
	Column      int      `json:"columnNumber"`
	Subject     string   `json:"subjectName"`
	Suggestion  string   `json:"suggestion"`
}

// Code returns the stable diagnostic code of the violation's rule.
func (v Violation) Code() string {
	return errors.CodeForRule(v.RuleID)
}

func (v Violation) String() string {
	return fmt.Sprintf("%d:%d: %s [%s] %s", v.Line, v.Column, v.Severity, v.RuleID, v.Description)
}
