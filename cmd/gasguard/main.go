// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("gasguard.cli")

var rootCmd = &cobra.Command{
	Use:   "gasguard",
	Short: "Storage and gas analyzer for Soroban and Vyper contracts",
	Long: "GasGuard scans Soroban (Rust) and Vyper contract sources for storage waste and " +
		"gas-expensive patterns and reports violations with suggested fixes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	formatFlag  string
	verbosity   int
	disableFlag []string
	workersFlag int
	failOnFlag  string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a .gasguard.yaml file (default: next to the scanned path, then the working directory)")
	flags.StringVarP(&formatFlag, "format", "f", "", "Output format: console or json")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.StringSliceVar(&disableFlag, "disable", nil, "Rule ids to disable (comma separated)")
	flags.IntVar(&workersFlag, "workers", 0, "Number of files scanned concurrently")
	flags.StringVar(&failOnFlag, "fail-on", "", "Exit non-zero when a violation at or above this severity is found")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
