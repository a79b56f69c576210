package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Scan a single contract file",
	Long:  "Scans one .rs (Soroban) or .vy (Vyper) file and reports its violations grouped by severity.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot scan %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; use scan-dir", path)
	}

	cfg, err := loadSettings(cmd, path)
	if err != nil {
		return err
	}
	s, err := newScanner(cfg)
	if err != nil {
		return err
	}

	r, err := s.Scan(cmd.Context(), path)
	if err != nil {
		return err
	}
	return emit(cmd, cfg, r, viewFile)
}
