package report

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
	"gasguard/internal/rules"
)

func init() {
	color.NoColor = true
}

func violation(ruleID string, severity rules.Severity, subject string) rules.Violation {
	return rules.Violation{
		RuleID:      ruleID,
		Description: fmt.Sprintf("%s on %s", ruleID, subject),
		Severity:    severity,
		Line:        2,
		Column:      1,
		Subject:     subject,
		Suggestion:  "fix it",
	}
}

func unused(n int) []rules.Violation {
	violations := make([]rules.Violation, n)
	for i := range violations {
		violations[i] = violation(rules.RuleUnusedStateVariable, rules.Warning, fmt.Sprintf("field%d", i))
	}
	return violations
}

func TestReportMerge(t *testing.T) {
	r := New()
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", r.ID.String())

	files := []ScanResult{
		{Source: "a.rs", Violations: []rules.Violation{violation("x", rules.Info, "a1"), violation("y", rules.High, "a2")}},
		{Source: "b.rs"},
		{Source: "c.vy", Violations: []rules.Violation{violation("z", rules.Warning, "c1")}},
	}
	for _, f := range files {
		r.Merge(f)
	}

	require.Len(t, r.Results, 3)
	assert.Equal(t, "b.rs", r.Results[1].Source)

	subjects := []string{}
	for _, v := range r.Violations() {
		subjects = append(subjects, v.Subject)
	}
	assert.Equal(t, []string{"a1", "a2", "c1"}, subjects, "file order and within-file order are preserved")

	counts := r.Counts()
	assert.Equal(t, Counts{Info: 1, Warning: 1, High: 1}, counts)
	assert.Equal(t, 3, counts.Total())

	assert.True(t, r.Exceeds(rules.High))
	assert.False(t, r.Exceeds(rules.Error))
	assert.Empty(t, r.Failed())

	r.Merge(ScanResult{Source: "d.rs", Err: stderrors.New("boom")})
	require.Len(t, r.Failed(), 1)
	assert.Equal(t, "d.rs", r.Failed()[0].Source)
}

func TestCategorize(t *testing.T) {
	violations := []rules.Violation{
		violation("a", rules.Info, "1"),
		violation("b", rules.Warning, "2"),
		violation("c", rules.Medium, "3"),
		violation("d", rules.High, "4"),
		violation("e", rules.Error, "5"),
		violation("f", rules.Medium, "6"),
	}

	c := Categorize(violations)
	assert.Len(t, c.Errors, 2)
	assert.Len(t, c.Warnings, 3)
	assert.Len(t, c.Info, 1)
	assert.Equal(t, len(violations), len(c.Errors)+len(c.Warnings)+len(c.Info), "partition is exhaustive")
	assert.Equal(t, "6", c.Warnings[2].Subject, "input order is kept within a tier")

	assert.Empty(t, Categorize(nil).Errors)
}

func TestStorageSavings(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d unused", n), func(t *testing.T) {
			mixed := append(unused(n), violation(rules.RuleUnboundedLoop, rules.High, "spin"))
			savings := StorageSavings(mixed)
			assert.Equal(t, n, savings.UnusedFields)
			assert.InDelta(t, 2.5*float64(n), savings.EstimatedKB, 1e-9)
			assert.InDelta(t, 0.0025*float64(n), savings.MonthlyRent, 1e-9)
		})
	}

	t.Run("three unused fields", func(t *testing.T) {
		assert.InDelta(t, 7.5, StorageSavings(unused(3)).EstimatedKB, 1e-9)
	})

	t.Run("text", func(t *testing.T) {
		expected := "💰 Storage Optimization Potential:\n   • 1 unused state variables\n   • 2.5 KB storage savings\n   • 0.0025 XLM/month ledger rent savings"
		assert.Equal(t, expected, StorageSavings(unused(1)).String())
	})
}

func TestSummaryAndRecommendations(t *testing.T) {
	assert.Equal(t, "No issues found", Summary(nil))

	violations := append(unused(2),
		violation(rules.RuleUnboundedLoop, rules.High, "spin"),
		violation(rules.RuleMissingAdminPattern, rules.Info, "Token"),
	)
	assert.Equal(t, "Found 4 issues: 1 errors, 2 warnings, 1 info", Summary(violations))

	counts := CountByRule(violations)
	require.Len(t, counts, 3)
	assert.Equal(t, RuleCount{RuleID: rules.RuleUnusedStateVariable, Count: 2}, counts[0])
	assert.Equal(t, rules.RuleMissingAdminPattern, counts[1].RuleID, "ties are ordered by id")

	advice := Recommendations(violations)
	require.NotEmpty(t, advice)
	assert.Equal(t, "Remove 2 unused state variables to reduce storage costs", advice[0])
	assert.Contains(t, advice, "Bound every loop by a collection length or explicit range")

	assert.Empty(t, Recommendations(nil))
}

func TestWriteJSON(t *testing.T) {
	r := New()
	r.Merge(ScanResult{
		Source:     "token.rs",
		Format:     ir.FormatSoroban,
		Violations: unused(1),
		ScanTime:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:    1500 * time.Microsecond,
	})
	r.Merge(ScanResult{Source: "clean.vy", Format: ir.FormatVyper, ScanTime: time.Now()})
	r.Merge(ScanResult{Source: "broken.rs", ScanTime: time.Now(), Err: &errors.GrammarParseError{
		Position: ir.Position{Filename: "broken.rs", Line: 3, Column: 1},
		Message:  "unexpected token",
	}})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))
	require.NoError(t, ValidateJSON(buf.Bytes()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.ID.String(), decoded["id"])

	results := decoded["results"].([]any)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, "token.rs", first["source"])
	assert.Equal(t, "2026-01-02T03:04:05Z", first["scanTime"])
	assert.InDelta(t, 1.5, first["elapsedMs"], 1e-9)
	v := first["violations"].([]any)[0].(map[string]any)
	for _, key := range []string{"ruleId", "description", "severity", "lineNumber", "columnNumber", "subjectName", "suggestion"} {
		assert.Contains(t, v, key)
	}
	assert.Equal(t, "warning", v["severity"])

	clean := results[1].(map[string]any)
	assert.Equal(t, []any{}, clean["violations"], "clean files serialize an empty list")
	assert.NotContains(t, clean, "error")

	broken := results[2].(map[string]any)
	assert.Contains(t, broken["error"], "unexpected token")

	totals := decoded["totals"].(map[string]any)
	assert.EqualValues(t, 3, totals["files"])
	assert.EqualValues(t, 1, totals["failed"])
	assert.EqualValues(t, 1, totals["violations"])

	savings := decoded["storageSavings"].(map[string]any)
	assert.EqualValues(t, 2.5, savings["estimatedKB"])
}

func TestValidateJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[]`},
		{"missing results", `{"id":"00000000-0000-0000-0000-000000000000","generatedAt":"2026-01-01T00:00:00Z"}`},
		{"bad severity", `{
			"id":"00000000-0000-0000-0000-000000000000",
			"generatedAt":"2026-01-01T00:00:00Z",
			"results":[{"source":"a.rs","scanTime":"2026-01-01T00:00:00Z","violations":[
				{"ruleId":"x","description":"d","severity":"critical","lineNumber":1,"columnNumber":1,"subjectName":"s","suggestion":"g"}
			]}],
			"totals":{"files":1,"failed":0,"violations":1,"bySeverity":{"info":0,"warning":0,"medium":0,"high":0,"error":0}},
			"storageSavings":{"unusedFields":0,"estimatedKB":0,"monthlyRent":0}
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.doc))
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, stderrors.As(err, &validationErr))
			assert.NotEmpty(t, validationErr.Errors)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		assert.Error(t, ValidateJSON([]byte(`{`)))
	})
}

const consoleSource = `#[contracttype]
pub struct Token {
    pub ghost: u128,
}
`

func TestConsoleWriter(t *testing.T) {
	t.Run("result with source excerpts", func(t *testing.T) {
		var buf bytes.Buffer
		result := ScanResult{
			Source: "token.rs",
			Text:   consoleSource,
			Violations: []rules.Violation{
				{RuleID: rules.RuleUnusedStateVariable, Description: "State variable 'ghost' appears to be unused", Severity: rules.Warning, Line: 3, Column: 1, Subject: "ghost", Suggestion: "Remove unused state variable 'ghost' to save ledger storage costs"},
				{RuleID: rules.RuleUnboundedLoop, Description: "Function 'spin' contains potentially unbounded loop", Severity: rules.High, Line: 2, Column: 1, Subject: "spin", Suggestion: "bound it"},
			},
		}
		require.NoError(t, NewConsoleWriter(&buf).WriteResult(result))
		out := buf.String()

		assert.Contains(t, out, "🚨 1 Errors:")
		assert.Contains(t, out, "⚠️  1 Warnings:")
		assert.Contains(t, out, "warning[G0101]: State variable 'ghost' appears to be unused")
		assert.Contains(t, out, "error[G0206]")
		assert.Contains(t, out, "--> token.rs:3:1")
		assert.Contains(t, out, "pub ghost: u128,")
		assert.Contains(t, out, "Found 2 issues: 1 errors, 1 warnings, 0 info")
		assert.Contains(t, out, "💰 Storage Optimization Potential")
		assert.Less(t, bytes.Index(buf.Bytes(), []byte("Errors:")), bytes.Index(buf.Bytes(), []byte("Warnings:")))
	})

	t.Run("result without source text", func(t *testing.T) {
		var buf bytes.Buffer
		result := ScanResult{Source: "vault.vy", Violations: []rules.Violation{violation("x", rules.Info, "fee")}}
		require.NoError(t, NewConsoleWriter(&buf).WriteResult(result))
		assert.Contains(t, buf.String(), "📍 Line 2: fee")
		assert.Contains(t, buf.String(), "[INFO]")
	})

	t.Run("clean result", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteResult(ScanResult{Source: "ok.rs"}))
		assert.Contains(t, buf.String(), "No violations found! Your contract is optimized.")
		assert.Contains(t, buf.String(), "No issues found")
	})

	t.Run("report with failure", func(t *testing.T) {
		r := New()
		r.Merge(ScanResult{Source: "a.rs", Violations: unused(2)})
		r.Merge(ScanResult{Source: "clean.rs"})
		r.Merge(ScanResult{Source: "bad.rs", Text: "pub struct {\n", Err: &errors.GrammarParseError{
			Position: ir.Position{Filename: "bad.rs", Line: 1, Column: 12},
			Message:  "unexpected \"{\"",
		}})

		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteReport(r))
		out := buf.String()
		assert.Contains(t, out, "📁 File: a.rs")
		assert.NotContains(t, out, "📁 File: clean.rs")
		assert.Contains(t, out, "📁 File: bad.rs")
		assert.Contains(t, out, "error[G0902]")
		assert.Contains(t, out, "📊 Total violations across 3 files: 2")
		assert.Contains(t, out, "1 file(s) could not be scanned")
		assert.Contains(t, out, "• 5.0 KB storage savings")
	})

	t.Run("empty report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteReport(New()))
		assert.Contains(t, buf.String(), "No violations found in any files!")
	})

	t.Run("analysis", func(t *testing.T) {
		r := New().Merge(ScanResult{Source: "a.rs", Violations: unused(3)})
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteAnalysis(r))
		out := buf.String()
		assert.Contains(t, out, "🎯 Storage Analysis Report")
		assert.Contains(t, out, "Files analyzed: 1")
		assert.Contains(t, out, "Total violations: 3")
		assert.Contains(t, out, "• 7.5 KB storage savings")
		assert.Contains(t, out, "Remove 3 unused state variables to reduce storage costs")
	})
}
