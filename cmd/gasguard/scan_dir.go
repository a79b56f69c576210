package main

import (
	"github.com/spf13/cobra"
)

var scanDirCmd = &cobra.Command{
	Use:   "scan-dir <directory>",
	Short: "Scan every contract under a directory",
	Long: "Recursively scans .rs and .vy files under a directory with a bounded worker pool. " +
		"Hidden directories, target/ and node_modules/ are skipped, as are Rust files without contract markers.",
	Args: cobra.ExactArgs(1),
	RunE: runScanDir,
}

var scanDirExclude []string

func init() {
	scanDirCmd.Flags().StringSliceVar(&scanDirExclude, "exclude", nil, "Glob patterns to skip, matched against names and relative paths")
	rootCmd.AddCommand(scanDirCmd)
}

func runScanDir(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, args[0])
	if err != nil {
		return err
	}
	cfg.Exclude = append(cfg.Exclude, scanDirExclude...)

	s, err := newScanner(cfg)
	if err != nil {
		return err
	}

	r, err := s.ScanDirectory(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return emit(cmd, cfg, r, viewDirectory)
}
