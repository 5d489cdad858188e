// Package config loads dispatch configuration from .dispatch/config.yaml,
// merging file values over defaults and CLI flags over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents delegation history persistence configuration.
type HistoryConfig struct {
	// Enabled enables recording of wave passes and plan outcomes
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents dispatch configuration options.
type Config struct {
	// MaxConcurrency is the maximum number of concurrent tasks per wave (0 = unlimited)
	MaxConcurrency int `yaml:"max_concurrency"`

	// WorkerTimeout is the maximum execution time for a single worker invocation
	WorkerTimeout time.Duration `yaml:"worker_timeout"`

	// InvokeRetries is the number of extra invocation attempts after a failure
	InvokeRetries int `yaml:"invoke_retries"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// RosterPath is the path to the worker roster YAML (empty = built-in roster)
	RosterPath string `yaml:"roster_path"`

	// SnapshotPath is where live progress snapshots are written (empty = disabled)
	SnapshotPath string `yaml:"snapshot_path"`

	// WorkerCommand is the agent CLI binary used to invoke workers
	WorkerCommand string `yaml:"worker_command"`

	// History contains delegation history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 4,
		WorkerTimeout:  30 * time.Minute,
		InvokeRetries:  1,
		LogLevel:       "info",
		RosterPath:     "",
		SnapshotPath:   ".dispatch/progress.json",
		WorkerCommand:  "claude",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  ".dispatch/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path. A missing
// file returns defaults without error; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations come in as strings, so unmarshal into a shadow struct first.
	type yamlConfig struct {
		MaxConcurrency int           `yaml:"max_concurrency"`
		WorkerTimeout  string        `yaml:"worker_timeout"`
		InvokeRetries  *int          `yaml:"invoke_retries"`
		LogLevel       string        `yaml:"log_level"`
		RosterPath     string        `yaml:"roster_path"`
		SnapshotPath   *string       `yaml:"snapshot_path"`
		WorkerCommand  string        `yaml:"worker_command"`
		History        HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.MaxConcurrency != 0 {
		cfg.MaxConcurrency = yamlCfg.MaxConcurrency
	}
	if yamlCfg.WorkerTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.WorkerTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid worker_timeout format %q: %w", yamlCfg.WorkerTimeout, err)
		}
		cfg.WorkerTimeout = timeout
	}
	if yamlCfg.InvokeRetries != nil {
		cfg.InvokeRetries = *yamlCfg.InvokeRetries
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.RosterPath != "" {
		cfg.RosterPath = yamlCfg.RosterPath
	}
	if yamlCfg.SnapshotPath != nil {
		// Explicitly set snapshot_path, even if empty (disables snapshots)
		cfg.SnapshotPath = *yamlCfg.SnapshotPath
	}
	if yamlCfg.WorkerCommand != "" {
		cfg.WorkerCommand = yamlCfg.WorkerCommand
	}

	// The history section only overrides defaults when present in the file.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .dispatch/config.yaml in the
// specified directory. A missing directory or file returns defaults.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".dispatch", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration. Non-nil flag
// values override config file settings.
func (c *Config) MergeWithFlags(maxConcurrency *int, workerTimeout *time.Duration, rosterPath *string, workerCommand *string) {
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if workerTimeout != nil {
		c.WorkerTimeout = *workerTimeout
	}
	if rosterPath != nil {
		c.RosterPath = *rosterPath
	}
	if workerCommand != nil {
		c.WorkerCommand = *workerCommand
	}
}

// Validate checks configuration values, returning an error for any invalid
// setting.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}
	if c.WorkerTimeout < 0 {
		return fmt.Errorf("worker_timeout must be >= 0, got %v", c.WorkerTimeout)
	}
	if c.InvokeRetries < 0 {
		return fmt.Errorf("invoke_retries must be >= 0, got %d", c.InvokeRetries)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.WorkerCommand == "" {
		return fmt.Errorf("worker_command cannot be empty")
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
