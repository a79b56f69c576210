package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Summarize storage savings and recommendations",
	Long: "Scans a file or directory and prints the storage analysis: violation totals, estimated " +
		"ledger storage and rent savings, findings per rule and recommendations.",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	s, err := newScanner(cfg)
	if err != nil {
		return err
	}

	r, err := s.Scan(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return emit(cmd, cfg, r, viewAnalysis)
}
