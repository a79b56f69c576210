package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"gasguard/internal/config"
	"gasguard/internal/report"
	"gasguard/internal/scanner"
)

// loadSettings resolves the configuration for a command scanning target:
// file, then environment, then flags that were set explicitly.
func loadSettings(cmd *cobra.Command, target string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Find(configDir(target))
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = formatFlag
	}
	if flags.Changed("verbose") {
		cfg.Verbosity = verbosity
	}
	if flags.Changed("disable") {
		cfg.Disable = append(cfg.Disable, disableFlag...)
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("fail-on") {
		cfg.FailOn = failOnFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	commonlog.Configure(cfg.Verbosity, nil)
	if path != "" {
		log.Debugf("using configuration %s", path)
	}
	return cfg, nil
}

func configDir(target string) string {
	if target == "" {
		return ""
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

func newScanner(cfg *config.Config) (*scanner.Scanner, error) {
	s := scanner.New(
		scanner.WithWorkers(cfg.Workers),
		scanner.WithExclude(cfg.Exclude...),
	)
	if err := cfg.Apply(s.Engines()...); err != nil {
		return nil, err
	}
	return s, nil
}

type view int

const (
	viewFile view = iota
	viewDirectory
	viewAnalysis
)

// emit writes r in the configured format and then reports whether the run
// should fail.
func emit(cmd *cobra.Command, cfg *config.Config, r *report.Report, v view) error {
	out := cmd.OutOrStdout()

	var err error
	switch {
	case cfg.Format == config.FormatJSON:
		err = report.WriteJSON(out, r)
	case v == viewAnalysis:
		err = report.NewConsoleWriter(out).WriteAnalysis(r)
	case v == viewFile && len(r.Results) == 1:
		err = report.NewConsoleWriter(out).WriteResult(r.Results[0])
	default:
		err = report.NewConsoleWriter(out).WriteReport(r)
	}
	if err != nil {
		return err
	}

	return exitStatus(cfg, r)
}

func exitStatus(cfg *config.Config, r *report.Report) error {
	if failed := r.Failed(); len(failed) > 0 {
		if len(r.Results) == 1 {
			return failed[0].Err
		}
		return fmt.Errorf("%d file(s) could not be scanned", len(failed))
	}
	if threshold, ok := cfg.FailOnSeverity(); ok && r.Exceeds(threshold) {
		return fmt.Errorf("found violations at or above %s severity", threshold)
	}
	return nil
}
