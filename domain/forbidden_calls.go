package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for sorting violations
type SortCriteria string

const (
	SortByLocation SortCriteria = "location"
	SortByRule     SortCriteria = "rule"
	SortByName     SortCriteria = "name"
)

// ForbiddenCallsRequest represents a request for forbidden call analysis
type ForbiddenCallsRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	SortBy       SortCriteria

	// Configuration
	ConfigPath string

	// Rule sources. Declarative rules come first, then the side file's rules.
	Rules             []map[string]any
	RulesFile         string
	RulesFileOptional bool
	CheckConstructors bool

	// Analysis options
	Recursive        bool
	IncludePatterns  []string
	ExcludePatterns  []string
	RespectGitignore bool

	// Performance
	MaxGoroutines  int
	TimeoutSeconds int
}

// Violation is one call site that matched a forbidden call rule
type Violation struct {
	FilePath string `json:"file_path" yaml:"file_path"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Language string `json:"language" yaml:"language"`

	// Call identity
	CallName      string `json:"call_name" yaml:"call_name"`
	ArgumentCount int    `json:"argument_count" yaml:"argument_count"`
	CallKind      string `json:"call_kind" yaml:"call_kind"`
	Scope         string `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Matching rule
	Rule            string `json:"rule,omitempty" yaml:"rule,omitempty"`
	RuleForm        string `json:"rule_form" yaml:"rule_form"`
	MethodPattern   string `json:"method_pattern" yaml:"method_pattern"`
	ArgCountPattern string `json:"arg_count_pattern,omitempty" yaml:"arg_count_pattern,omitempty"`
	Reason          string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Diagnostic
	MessageKey string `json:"message_key" yaml:"message_key"`
	Message    string `json:"message" yaml:"message"`
}

// ForbiddenCallsSummary represents aggregate statistics
type ForbiddenCallsSummary struct {
	FilesAnalyzed       int            `json:"files_analyzed" yaml:"files_analyzed"`
	FilesWithViolations int            `json:"files_with_violations" yaml:"files_with_violations"`
	TotalViolations     int            `json:"total_violations" yaml:"total_violations"`
	RulesLoaded         int            `json:"rules_loaded" yaml:"rules_loaded"`
	ViolationsByRule    map[string]int `json:"violations_by_rule,omitempty" yaml:"violations_by_rule,omitempty"`
}

// HasViolations reports whether any violation was found
func (s ForbiddenCallsSummary) HasViolations() bool {
	return s.TotalViolations > 0
}

// ForbiddenCallsResponse represents the complete analysis result
type ForbiddenCallsResponse struct {
	Violations []Violation           `json:"violations" yaml:"violations"`
	Summary    ForbiddenCallsSummary `json:"summary" yaml:"summary"`

	// Warnings and issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
	Config      any    `json:"config,omitempty" yaml:"config,omitempty"`
}

// RuleInfo describes one compiled rule for listing
type RuleInfo struct {
	Index           int    `json:"index" yaml:"index"`
	Name            string `json:"name" yaml:"name"`
	Form            string `json:"form" yaml:"form"`
	MethodPattern   string `json:"method_pattern" yaml:"method_pattern"`
	ArgCountPattern string `json:"arg_count_pattern,omitempty" yaml:"arg_count_pattern,omitempty"`
	Reason          string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ForbiddenCallsService defines the core business logic for forbidden call analysis
type ForbiddenCallsService interface {
	// Analyze checks every file in req.Paths
	Analyze(ctx context.Context, req ForbiddenCallsRequest) (*ForbiddenCallsResponse, error)

	// AnalyzeFile checks a single source file
	AnalyzeFile(ctx context.Context, filePath string, req ForbiddenCallsRequest) (*ForbiddenCallsResponse, error)
}

// SourceFileReader defines file operations over the supported languages
type SourceFileReader interface {
	CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidSourceFile(path string) bool
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting analysis results
type OutputFormatter interface {
	// Format formats the analysis response according to the specified format
	Format(response *ForbiddenCallsResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *ForbiddenCallsResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*ForbiddenCallsRequest, error)

	// LoadDefaultConfig loads the discovered or built-in configuration
	LoadDefaultConfig() *ForbiddenCallsRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *ForbiddenCallsRequest, override *ForbiddenCallsRequest) *ForbiddenCallsRequest
}
