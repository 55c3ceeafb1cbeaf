package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/forbidscan/internal/constants"
)

// Default output and performance settings
const (
	// DefaultOutputFormat is used when no format is configured
	DefaultOutputFormat = "text"

	// DefaultSortBy orders violations by file, line and column
	DefaultSortBy = "location"

	// DefaultTimeoutSeconds bounds a whole analysis run
	DefaultTimeoutSeconds = 300
)

// ConfigEnvVar names the environment variable consulted last during discovery
const ConfigEnvVar = constants.EnvVarPrefix + "_CONFIG"

// Config represents the main configuration structure
type Config struct {
	// ForbiddenCalls holds the rule sources and the constructor switch
	ForbiddenCalls ForbiddenCallsConfig `json:"forbidden_calls" mapstructure:"forbidden_calls" yaml:"forbidden_calls"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Analysis holds file selection configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Performance holds concurrency configuration
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// ForbiddenCallsConfig holds the forbidden call rule configuration
type ForbiddenCallsConfig struct {
	// CheckConstructors enables evaluation of constructor call sites
	CheckConstructors bool `json:"check_constructors" mapstructure:"check_constructors" yaml:"check_constructors"`

	// File is an external rule file, as a path or a file: URI
	File string `json:"file" mapstructure:"file" yaml:"file"`

	// Optional turns a missing rule file into an empty rule set
	Optional bool `json:"optional" mapstructure:"optional" yaml:"optional"`

	// Rules are the declarative rule blocks in declaration order.
	// They stay raw so unknown attributes are rejected when the rules are compiled.
	Rules []map[string]any `json:"rules" mapstructure:"rules" yaml:"rules"`
}

// HasRuleSource reports whether any rule is configured
func (c *ForbiddenCallsConfig) HasRuleSource() bool {
	return len(c.Rules) > 0 || c.File != ""
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// SortBy specifies how to sort violations: location, rule, name
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// RespectGitignore skips files ignored by .gitignore files under the analyzed paths
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// PerformanceConfig holds concurrency settings
type PerformanceConfig struct {
	// MaxGoroutines limits concurrent file analysis; 0 uses the number of CPUs
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole analysis run
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultIncludePatterns lists every source language the checker understands
var DefaultIncludePatterns = []string{
	"**/*.java",
	"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
	"**/*.ts", "**/*.tsx", "**/*.mts", "**/*.cts",
	"**/*.go",
}

// DefaultExcludePatterns skips dependency, build and generated output
var DefaultExcludePatterns = []string{
	"node_modules",
	"vendor",
	"dist",
	"build",
	"out",
	"target",
	".gradle",
	".git",
	"coverage",
	"*.min.js",
	"*.bundle.js",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ForbiddenCalls: ForbiddenCallsConfig{
			CheckConstructors: false,
			Optional:          false,
			Rules:             []map[string]any{},
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			SortBy: DefaultSortBy,
		},
		Analysis: AnalysisConfig{
			IncludePatterns:  append([]string(nil), DefaultIncludePatterns...),
			ExcludePatterns:  append([]string(nil), DefaultExcludePatterns...),
			Recursive:        true,
			RespectGitignore: true,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a file from targetPath
// upward when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per load keeps concurrent loads independent
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.resolveRuleFile(filepath.Dir(configPath))

	return config, nil
}

// resolveRuleFile makes a relative rule file path relative to the config file
func (c *Config) resolveRuleFile(configDir string) {
	file := c.ForbiddenCalls.File
	if file == "" || filepath.IsAbs(file) || strings.HasPrefix(file, "file:") {
		return
	}
	c.ForbiddenCalls.File = filepath.Join(configDir, file)
}

// configCandidates are the file names searched in every directory, in order
var configCandidates = []string{
	"forbidscan.yaml",
	"forbidscan.yml",
	".forbidscan.yaml",
	".forbidscan.yml",
	".forbidscan.toml",
	"forbidscan.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "forbidscan"), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "forbidscan")
		if config := searchConfigInDirectory(configDir, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values.
// Rule blocks are validated when they are compiled, not here.
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	validSortBy := map[string]bool{
		"location": true,
		"rule":     true,
		"name":     true,
	}

	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: location, rule, name", c.Output.SortBy)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("forbidden_calls", config.ForbiddenCalls)
	v.Set("output", config.Output)
	v.Set("analysis", config.Analysis)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
