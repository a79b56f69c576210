package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"gasguard/internal/rules"
)

var log = commonlog.GetLogger("gasguard.config")

// FileName is the configuration file looked up next to the scanned path and
// in the working directory.
const FileName = ".gasguard.yaml"

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Environment overrides.
const (
	EnvFormat    = "GASGUARD_FORMAT"
	EnvWorkers   = "GASGUARD_WORKERS"
	EnvVerbosity = "GASGUARD_VERBOSITY"
	EnvDisable   = "GASGUARD_DISABLE"
)

type Config struct {
	Format    string   `yaml:"format" validate:"oneof=console json"`
	Workers   int      `yaml:"workers" validate:"min=1,max=256"`
	Verbosity int      `yaml:"verbosity" validate:"min=0,max=5"`
	Disable   []string `yaml:"disable" validate:"dive,ruleid"`
	Enable    []string `yaml:"enable" validate:"dive,ruleid"`
	Exclude   []string `yaml:"exclude" validate:"dive,required"`
	FailOn    string   `yaml:"failOn" validate:"omitempty,severity"`
}

func Default() *Config {
	return &Config{
		Format:  FormatConsole,
		Workers: min(max(runtime.NumCPU(), 1), 256),
	}
}

// Find returns the first configuration file in dir or the working
// directory, or "" when neither has one.
func Find(dir string) string {
	candidates := []string{}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, FileName))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the configuration at path over the defaults. A .env file beside
// it is loaded into the environment without overriding variables that are
// already set. The result is not validated; call Validate once environment
// overrides and flags have been applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	log.Infof("loaded configuration from %s", path)

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err == nil {
		log.Debugf("loaded environment from %s", envFile)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from the GASGUARD_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvVerbosity); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbosity, err)
		}
		c.Verbosity = n
	}
	if v, ok := lookup(EnvDisable); ok {
		c.Disable = append(c.Disable, SplitList(v)...)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ruleid", func(fl validator.FieldLevel) bool {
		return slices.Contains(rules.KnownRuleIDs(), fl.Field().String())
	})
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		_, err := rules.ParseSeverity(fl.Field().String())
		return err == nil
	})
	return v
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Errorf("%s: %v does not satisfy %q", fe.Namespace(), fe.Value(), describeTag(fe)))
	}
	return fmt.Errorf("invalid configuration: %w", stderrors.Join(problems...))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "ruleid":
		return "known rule id"
	case "severity":
		return "info|warning|medium|high|error"
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// FailOnSeverity returns the exit code threshold, if one is set.
func (c *Config) FailOnSeverity() (rules.Severity, bool) {
	if c.FailOn == "" {
		return 0, false
	}
	severity, err := rules.ParseSeverity(c.FailOn)
	if err != nil {
		return 0, false
	}
	return severity, true
}

// Apply switches rules on the engines that carry them: disabled ids first,
// then explicitly enabled ones.
func (c *Config) Apply(engines ...*rules.Engine) error {
	for _, id := range c.Disable {
		if err := setOnAny(engines, id, (*rules.Engine).Disable); err != nil {
			return err
		}
	}
	for _, id := range c.Enable {
		if err := setOnAny(engines, id, (*rules.Engine).Enable); err != nil {
			return err
		}
	}
	return nil
}

func setOnAny(engines []*rules.Engine, id string, set func(*rules.Engine, string) error) error {
	found := false
	for _, engine := range engines {
		if engine == nil || !engine.Has(id) {
			continue
		}
		if err := set(engine, id); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return fmt.Errorf("%w: %s", rules.ErrUnknownRule, id)
	}
	return nil
}
