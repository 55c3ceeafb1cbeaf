package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the kind of project a config is generated for
type ProjectType string

const (
	ProjectTypeGeneric ProjectType = "generic"
	ProjectTypeJava    ProjectType = "java"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypeGo      ProjectType = "go"
)

// Strictness represents how many starter rules a generated config carries
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StarterRule is a declarative rule offered by the init templates
type StarterRule struct {
	Name          string
	MethodName    string
	ArgumentCount string
	Reason        string
}

// ProjectPreset holds configuration presets for different project types
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
	Rules           []StarterRule
}

// StrictnessPreset decides how much of a project's starter rules are enabled
type StrictnessPreset struct {
	MaxRules          int // 0: all
	CheckConstructors bool
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: DefaultIncludePatterns,
			ExcludePatterns: DefaultExcludePatterns,
			Rules: []StarterRule{
				{Name: "no-exit", MethodName: "exit", Reason: "Terminating the process skips cleanup and hides the failure from callers"},
				{Name: "no-eval", MethodName: "eval", Reason: "Evaluating strings as code is a code injection risk"},
			},
		},
		ProjectTypeJava: {
			IncludePatterns: []string{"**/*.java"},
			ExcludePatterns: []string{"target", "build", ".gradle", ".git", "**/generated/**"},
			Rules: []StarterRule{
				{Name: "no-system-exit", MethodName: "exit", Reason: "Terminates the JVM"},
				{Name: "assert-with-message", MethodName: "assert(True|False)", ArgumentCount: "1", Reason: "Give the assertion a failure message"},
				{Name: "no-thread-sleep", MethodName: "sleep", Reason: "Use a scheduler or await a condition instead of sleeping"},
				{Name: "no-print-stack-trace", MethodName: "printStackTrace", ArgumentCount: "0", Reason: "Log the exception instead"},
			},
		},
		ProjectTypeNode: {
			IncludePatterns: []string{
				"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
				"**/*.ts", "**/*.tsx", "**/*.mts", "**/*.cts",
			},
			ExcludePatterns: []string{"node_modules", "dist", "build", "coverage", ".next", "*.min.js", "*.bundle.js"},
			Rules: []StarterRule{
				{Name: "no-process-exit", MethodName: "exit", Reason: "Throw or set process.exitCode instead of exiting"},
				{Name: "no-eval", MethodName: "eval", Reason: "Evaluating strings as code is a code injection risk"},
				{Name: "no-sync-fs", MethodName: "(read|write)FileSync", Reason: "Blocks the event loop"},
				{Name: "no-function-constructor", MethodName: "Function", Reason: "Equivalent to eval"},
			},
		},
		ProjectTypeGo: {
			IncludePatterns: []string{"**/*.go"},
			ExcludePatterns: []string{"vendor", ".git", "testdata"},
			Rules: []StarterRule{
				{Name: "no-os-exit", MethodName: "Exit", Reason: "Return an error to main instead"},
				{Name: "no-panic", MethodName: "panic", ArgumentCount: "1", Reason: "Return an error instead of panicking"},
				{Name: "no-fatal-log", MethodName: "Fatal(f|ln)?", Reason: "Fatal logging exits the process"},
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxRules: 1,
		},
		StrictnessStandard: {
			MaxRules: 2,
		},
		StrictnessStrict: {
			MaxRules:          0,
			CheckConstructors: true,
		},
	}
}

// SelectRules returns the starter rules enabled for a project type and strictness
func SelectRules(projectType ProjectType, strictness Strictness) []StarterRule {
	rules := GetProjectPresets()[projectType].Rules
	limit := GetStrictnessPresets()[strictness].MaxRules
	if limit > 0 && limit < len(rules) {
		rules = rules[:limit]
	}
	return rules
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset := GetProjectPresets()[projectType]
	strict := GetStrictnessPresets()[strictness]

	return `# forbidscan configuration
# Documentation: https://github.com/ludo-technologies/forbidscan

# ============================================================================
# FORBIDDEN CALLS
# ============================================================================
# A call is reported when its bare name matches method_name and, if given,
# its argument count matches argument_count. Both are regular expressions
# matched against the whole value. The first matching rule wins.
forbidden_calls:
  # Also check constructor calls such as "new Foo(1)"
  check_constructors: ` + strconv.FormatBool(strict.CheckConstructors) + `

  # External rule file (XML <ForbiddenMethods> or YAML forbidden_methods),
  # as a path or a file: URI. Its rules are checked after the rules below.
  file: ""

  # Treat a missing rule file as an empty rule list
  optional: false

  rules:
` + formatYAMLRules(SelectRules(projectType, strictness)) + `
# ============================================================================
# OUTPUT SETTINGS
# ============================================================================
output:
  # Output format: text, json, yaml, csv
  format: text

  # Sort violations by: location, rule, name
  sort_by: location

# ============================================================================
# ANALYSIS SCOPE
# ============================================================================
analysis:
  # File patterns to include (glob patterns)
  include_patterns:
` + formatYAMLList(preset.IncludePatterns) + `
  # File patterns to exclude (glob patterns)
  exclude_patterns:
` + formatYAMLList(preset.ExcludePatterns) + `
  recursive: true

  # Skip files ignored by .gitignore
  respect_gitignore: true

# ============================================================================
# PERFORMANCE
# ============================================================================
performance:
  # Number of parallel workers (0 = auto-detect based on CPU)
  max_goroutines: 0

  # Abort the run after this many seconds
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return DefaultConfigYAML
}

// formatYAMLList formats a string slice as an indented YAML sequence
func formatYAMLList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("    - " + strconv.Quote(item) + "\n")
	}
	return sb.String()
}

// formatYAMLRules formats starter rules as an indented YAML sequence
func formatYAMLRules(rules []StarterRule) string {
	if len(rules) == 0 {
		return "    []\n"
	}

	var sb strings.Builder
	for _, r := range rules {
		sb.WriteString("    - name: " + strconv.Quote(r.Name) + "\n")
		sb.WriteString("      method_name: " + strconv.Quote(r.MethodName) + "\n")
		if r.ArgumentCount != "" {
			sb.WriteString("      argument_count: " + strconv.Quote(r.ArgumentCount) + "\n")
		}
		sb.WriteString("      reason: " + strconv.Quote(r.Reason) + "\n")
	}
	return sb.String()
}
