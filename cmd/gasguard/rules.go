package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gasguard/internal/config"
	"gasguard/internal/ir"
	"gasguard/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalogue",
	Long:  "Lists every rule of the Soroban and Vyper engines with its severity and whether the current configuration enables it.",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

type ruleEntry struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Format      ir.Format      `json:"format"`
	Severity    rules.Severity `json:"severity"`
	Enabled     bool           `json:"enabled"`
	Description string         `json:"description"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, "")
	if err != nil {
		return err
	}
	s, err := newScanner(cfg)
	if err != nil {
		return err
	}

	var entries []ruleEntry
	for _, engine := range s.Engines() {
		for _, rule := range engine.Rules() {
			entries = append(entries, ruleEntry{
				ID:          rule.ID(),
				Name:        rule.Name(),
				Format:      engine.Format(),
				Severity:    rule.Severity(),
				Enabled:     rule.Enabled(),
				Description: rule.Description(),
			})
		}
	}

	out := cmd.OutOrStdout()
	if cfg.Format == config.FormatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tRULE\tSEVERITY\tENABLED\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", e.Format, e.ID, e.Severity, e.Enabled, e.Description)
	}
	return w.Flush()
}
