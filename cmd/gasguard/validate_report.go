package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gasguard/internal/report"
)

var printSchema bool

var validateReportCmd = &cobra.Command{
	Use:   "validate-report <report.json>",
	Short: "Validate a saved JSON report",
	Long:  "Checks a report written with --format json against the report schema.",
	Args: func(cmd *cobra.Command, args []string) error {
		if printSchema {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runValidateReport,
}

func init() {
	validateReportCmd.Flags().BoolVar(&printSchema, "schema", false, "print the report JSON schema instead of validating")
	rootCmd.AddCommand(validateReportCmd)
}

func runValidateReport(cmd *cobra.Command, args []string) error {
	if printSchema {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(report.Schema()))
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.ValidateJSON(data); err != nil {
		var validationErr *report.ValidationError
		if stderrors.As(err, &validationErr) {
			for _, fe := range validationErr.Errors {
				fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return fmt.Errorf("%s is not a valid report: %w", args[0], err)
	}

	fmt.Fprintln(out, color.GreenString("✅ %s is a valid report", args[0]))
	return nil
}
