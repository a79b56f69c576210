package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gasguard/internal/ir"
)

var irCmd = &cobra.Command{
	Use:   "ir <file>",
	Short: "Print the recovered contract model",
	Long:  "Prints the contract model recovered from a file: declared types, fields, impl blocks and functions, followed by the identifiers each Rust impl block uses.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)
}

func runIR(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := loadSettings(cmd, path)
	if err != nil {
		return err
	}
	s, err := newScanner(cfg)
	if err != nil {
		return err
	}

	recovered, err := s.Recover(cmd.Context(), path, string(source))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, ir.Print(recovered.Contract))

	printed := map[string]bool{}
	for _, impl := range recovered.Contract.Impls {
		usage, ok := recovered.Usage.For(impl.Target)
		if !ok || printed[impl.Target] {
			continue
		}
		printed[impl.Target] = true
		fmt.Fprintf(out, "\nusage %s: %s\n", impl.Target, strings.Join(usage.Sorted(), ", "))
	}
	for _, d := range recovered.Diagnostics {
		fmt.Fprintf(out, "\nwarning: %v\n", d)
	}
	return nil
}
