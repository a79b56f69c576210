package rules

import (
	"fmt"
	"strings"
)

// Severity is a single totally ordered scale shared by every rule.
type Severity int

const (
	Info Severity = iota
	Warning
	Medium
	High
	Error
)

var severityNames = [...]string{
	Info:    "info",
	Warning: "warning",
	Medium:  "medium",
	High:    "high",
	Error:   "error",
}

func (s Severity) String() string {
	if s < Info || s > Error {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity accepts the lowercase severity names, case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, candidate := range severityNames {
		if candidate == name {
			return Severity(s), nil
		}
	}
	return Info, fmt.Errorf("unknown severity %q", name)
}

// AtLeast reports whether s is as severe as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s >= threshold
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < Info || s > Error {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
