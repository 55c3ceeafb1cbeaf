package service

import (
	"fmt"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.ForbiddenCallsRequest, error) {
	return c.LoadConfigWithTarget(path, "")
}

// LoadConfigWithTarget loads configuration from path, or discovers it from targetPath upward
func (c *ConfigurationLoaderImpl) LoadConfigWithTarget(path, targetPath string) (*domain.ForbiddenCallsRequest, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	req := c.convertToRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// LoadDefaultConfig loads the discovered configuration, or the built-in defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.ForbiddenCallsRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return c.convertToRequest(cfg)
}

// MergeConfig merges CLI flags with configuration file.
// Rule sources from the override are appended after the base rules.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.ForbiddenCallsRequest, override *domain.ForbiddenCallsRequest) *domain.ForbiddenCallsRequest {
	merged := *base

	// Paths always come from the command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}

	if len(override.Rules) > 0 {
		merged.Rules = append(append([]map[string]any(nil), base.Rules...), override.Rules...)
	}
	if override.RulesFile != "" {
		merged.RulesFile = override.RulesFile
	}
	if override.RulesFileOptional {
		merged.RulesFileOptional = true
	}
	if override.CheckConstructors {
		merged.CheckConstructors = true
	}

	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}

	if override.MaxGoroutines > 0 {
		merged.MaxGoroutines = override.MaxGoroutines
	}
	if override.TimeoutSeconds > 0 {
		merged.TimeoutSeconds = override.TimeoutSeconds
	}

	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// convertToRequest converts a Config to a ForbiddenCallsRequest
func (c *ConfigurationLoaderImpl) convertToRequest(cfg *config.Config) *domain.ForbiddenCallsRequest {
	return &domain.ForbiddenCallsRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		SortBy:       domain.SortCriteria(cfg.Output.SortBy),

		Rules:             cfg.ForbiddenCalls.Rules,
		RulesFile:         cfg.ForbiddenCalls.File,
		RulesFileOptional: cfg.ForbiddenCalls.Optional,
		CheckConstructors: cfg.ForbiddenCalls.CheckConstructors,

		Recursive:        cfg.Analysis.Recursive,
		IncludePatterns:  cfg.Analysis.IncludePatterns,
		ExcludePatterns:  cfg.Analysis.ExcludePatterns,
		RespectGitignore: cfg.Analysis.RespectGitignore,

		MaxGoroutines:  cfg.Performance.MaxGoroutines,
		TimeoutSeconds: cfg.Performance.TimeoutSeconds,
	}
}

// PerformanceConfig extracts the executor settings of a request
func PerformanceConfig(req domain.ForbiddenCallsRequest) *config.PerformanceConfig {
	return &config.PerformanceConfig{
		MaxGoroutines:  req.MaxGoroutines,
		TimeoutSeconds: req.TimeoutSeconds,
	}
}

// ValidateConfig validates the request-level settings
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.ForbiddenCallsRequest) error {
	validFormats := map[domain.OutputFormat]bool{
		domain.OutputFormatText: true,
		domain.OutputFormatJSON: true,
		domain.OutputFormatYAML: true,
		domain.OutputFormatCSV:  true,
	}
	if !validFormats[req.OutputFormat] {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv)", req.OutputFormat)
	}

	validSortBy := map[domain.SortCriteria]bool{
		domain.SortByLocation: true,
		domain.SortByRule:     true,
		domain.SortByName:     true,
	}
	if req.SortBy != "" && !validSortBy[req.SortBy] {
		return fmt.Errorf("invalid sort criteria: %s (must be one of: location, rule, name)", req.SortBy)
	}

	if req.MaxGoroutines < 0 {
		return fmt.Errorf("max_goroutines cannot be negative, got %d", req.MaxGoroutines)
	}

	return nil
}
