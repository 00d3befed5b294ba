// Package config loads tactician configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"tactician/internal/logging"
)

// Config holds all tactician configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Engine settings
	Engine EngineConfig `yaml:"engine"`

	// Decidability oracle
	Oracle OracleConfig `yaml:"oracle"`

	// Run ledger
	Ledger LedgerConfig `yaml:"ledger"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the combinator engine defaults.
type EngineConfig struct {
	// MaxSteps caps total step applications per script run. Exceeding it
	// is a fatal error, not an ordinary failure. 0 means unlimited.
	MaxSteps uint `yaml:"max_steps"`

	// Classical enables the classical fallback strategies (by_contra on
	// undecidable targets, by_cases on compound propositions).
	Classical bool `yaml:"classical"`
}

// OracleConfig points at a Mangle ruleset shared by every problem that does
// not declare its own oracle.
type OracleConfig struct {
	RulesetPath string `yaml:"ruleset_path"`
}

// LedgerConfig configures the SQLite run ledger.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures debug logging.
type LoggingConfig struct {
	Debug      bool     `yaml:"debug"`
	Level      string   `yaml:"level"`
	Categories []string `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "tactician",
		Version: "0.1.0",
		Engine: EngineConfig{
			MaxSteps:  10000,
			Classical: false,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    filepath.Join(".tactician", "runs.db"),
		},
		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TACTICIAN_MAX_STEPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Engine.MaxSteps = uint(n)
		}
	}
	if v := os.Getenv("TACTICIAN_CLASSICAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.Classical = b
		}
	}
	if path := os.Getenv("TACTICIAN_RULESET"); path != "" {
		c.Oracle.RulesetPath = path
	}
	if path := os.Getenv("TACTICIAN_DB"); path != "" {
		c.Ledger.Path = path
	}
	if v := os.Getenv("TACTICIAN_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Debug = b
		}
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Oracle.RulesetPath != "" {
		if _, err := os.Stat(c.Oracle.RulesetPath); err != nil {
			return fmt.Errorf("oracle ruleset %s: %w", c.Oracle.RulesetPath, err)
		}
	}
	return nil
}

// LogSettings converts the logging block into logger settings.
func (c *Config) LogSettings() logging.Settings {
	return logging.Settings{
		Debug:      c.Logging.Debug,
		Level:      c.Logging.Level,
		Categories: c.Logging.Categories,
	}
}
