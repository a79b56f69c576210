package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/rules"
)

// ScanResult is the outcome of scanning one file. A failed scan keeps Err
// and has no violations; a clean scan has an empty violation list.
type ScanResult struct {
	Source     string            `json:"source"`
	Format     ir.Format         `json:"format,omitempty"`
	Violations []rules.Violation `json:"violations"`
	ScanTime   time.Time         `json:"scanTime"`
	Elapsed    time.Duration     `json:"-"`

	// Err is set when the file could not be scanned
	Err error `json:"-"`

	// Diagnostics are the units skipped while recovering the contract
	Diagnostics []errors.Positioned `json:"-"`

	// Text is the scanned source, kept for console excerpts
	Text string `json:"-"`
}

// Failed reports whether the scan aborted.
func (r ScanResult) Failed() bool {
	return r.Err != nil
}

// HasViolations reports whether the scan produced any finding.
func (r ScanResult) HasViolations() bool {
	return len(r.Violations) > 0
}

func (r ScanResult) MarshalJSON() ([]byte, error) {
	type plain ScanResult
	doc := struct {
		plain
		ElapsedMS float64 `json:"elapsedMs"`
		Error     string  `json:"error,omitempty"`
	}{plain: plain(r), ElapsedMS: float64(r.Elapsed.Microseconds()) / 1000}

	if doc.Violations == nil {
		doc.Violations = []rules.Violation{}
	}
	if r.Err != nil {
		doc.Error = r.Err.Error()
	}
	return json.Marshal(doc)
}

// Report is the ordered collection of scan results of one invocation.
type Report struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Results     []ScanResult
}

// New creates an empty report with a fresh id.
func New() *Report {
	return &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
	}
}

// Merge appends a result, preserving file order and the order of violations
// within the file. It returns the report for chaining.
func (r *Report) Merge(result ScanResult) *Report {
	r.Results = append(r.Results, result)
	return r
}

// Violations returns every violation in file order.
func (r *Report) Violations() []rules.Violation {
	var all []rules.Violation
	for _, result := range r.Results {
		all = append(all, result.Violations...)
	}
	return all
}

// Failed returns the results whose scan aborted.
func (r *Report) Failed() []ScanResult {
	var failed []ScanResult
	for _, result := range r.Results {
		if result.Failed() {
			failed = append(failed, result)
		}
	}
	return failed
}

// Counts tallies violations per severity.
type Counts struct {
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Medium  int `json:"medium"`
	High    int `json:"high"`
	Error   int `json:"error"`
}

// Total returns the number of counted violations.
func (c Counts) Total() int {
	return c.Info + c.Warning + c.Medium + c.High + c.Error
}

func CountViolations(violations []rules.Violation) Counts {
	var counts Counts
	for _, v := range violations {
		switch v.Severity {
		case rules.Info:
			counts.Info++
		case rules.Warning:
			counts.Warning++
		case rules.Medium:
			counts.Medium++
		case rules.High:
			counts.High++
		case rules.Error:
			counts.Error++
		}
	}
	return counts
}

func (r *Report) Counts() Counts {
	return CountViolations(r.Violations())
}

// Exceeds reports whether any violation is at least as severe as threshold.
func (r *Report) Exceeds(threshold rules.Severity) bool {
	for _, v := range r.Violations() {
		if v.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}
