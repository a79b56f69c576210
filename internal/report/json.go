package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/report.schema.json
var reportSchema string

// Schema returns the JSON schema every written report conforms to.
func Schema() string {
	return reportSchema
}

type totals struct {
	Files      int    `json:"files"`
	Failed     int    `json:"failed"`
	Violations int    `json:"violations"`
	BySeverity Counts `json:"bySeverity"`
}

type document struct {
	ID             string       `json:"id"`
	GeneratedAt    time.Time    `json:"generatedAt"`
	Results        []ScanResult `json:"results"`
	Totals         totals       `json:"totals"`
	StorageSavings Savings      `json:"storageSavings"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	violations := r.Violations()
	results := r.Results
	if results == nil {
		results = []ScanResult{}
	}
	return json.Marshal(document{
		ID:          r.ID.String(),
		GeneratedAt: r.GeneratedAt,
		Results:     results,
		Totals: totals{
			Files:      len(r.Results),
			Failed:     len(r.Failed()),
			Violations: len(violations),
			BySeverity: CountViolations(violations),
		},
		StorageSavings: StorageSavings(violations),
	})
}

// WriteJSON writes the report as indented JSON after checking it against
// the report schema.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := ValidateJSON(data); err != nil {
		return fmt.Errorf("report does not match its schema: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one schema violation at a document path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateJSON checks a report document against the embedded schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to load report for validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
