package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	// Constructor call sites are not evaluated unless enabled
	if config.ForbiddenCalls.CheckConstructors {
		t.Error("CheckConstructors should be false by default")
	}
	if config.ForbiddenCalls.Optional {
		t.Error("Optional should be false by default")
	}
	if config.ForbiddenCalls.HasRuleSource() {
		t.Error("Default config should not carry any rules")
	}

	if config.Output.Format != DefaultOutputFormat {
		t.Errorf("Expected Format '%s', got '%s'", DefaultOutputFormat, config.Output.Format)
	}
	if config.Output.SortBy != DefaultSortBy {
		t.Errorf("Expected SortBy '%s', got '%s'", DefaultSortBy, config.Output.SortBy)
	}

	if !config.Analysis.Recursive {
		t.Error("Recursive should be true by default")
	}
	if !config.Analysis.RespectGitignore {
		t.Error("RespectGitignore should be true by default")
	}
	if len(config.Analysis.IncludePatterns) == 0 {
		t.Error("IncludePatterns should not be empty")
	}
	if config.Performance.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("Expected TimeoutSeconds %d, got %d", DefaultTimeoutSeconds, config.Performance.TimeoutSeconds)
	}
}

func TestDefaultConfig_IndependentSlices(t *testing.T) {
	a := DefaultConfig()
	a.Analysis.IncludePatterns[0] = "changed"

	if DefaultConfig().Analysis.IncludePatterns[0] == "changed" {
		t.Error("DefaultConfig should not share pattern slices between calls")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"yaml format", func(c *Config) { c.Output.Format = "yaml" }, false},
		{"csv format", func(c *Config) { c.Output.Format = "csv" }, false},
		{"html format", func(c *Config) { c.Output.Format = "html" }, true},
		{"sort by rule", func(c *Config) { c.Output.SortBy = "rule" }, false},
		{"sort by name", func(c *Config) { c.Output.SortBy = "name" }, false},
		{"sort by complexity", func(c *Config) { c.Output.SortBy = "complexity" }, true},
		{"empty include patterns", func(c *Config) { c.Analysis.IncludePatterns = nil }, true},
		{"negative goroutines", func(c *Config) { c.Performance.MaxGoroutines = -1 }, true},
		{"negative timeout", func(c *Config) { c.Performance.TimeoutSeconds = -1 }, true},
		{
			"rule blocks are not validated here",
			func(c *Config) { c.ForbiddenCalls.Rules = []map[string]any{{"bogus": true}} },
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_Default(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with empty path failed: %v", err)
	}
	if config == nil {
		t.Fatal("Config should not be nil")
	}
}

func TestLoadConfig_NonExistent(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/forbidscan.yaml")
	if err == nil {
		t.Error("Expected error for non-existent config file")
	}
}

func TestLoadConfig_YAMLRules(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "forbidscan.yaml", `
forbidden_calls:
  check_constructors: true
  file: rules/forbidden.xml
  rules:
    - name: no-exit
      method_name: exit
      reason: Terminates the JVM
    - name: assert-message
      method_name: assert(True|False)
      argument_count: 1
      reason: Add a message
output:
  format: json
  sort_by: rule
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	fc := config.ForbiddenCalls
	if !fc.CheckConstructors {
		t.Error("Expected check_constructors to be true")
	}
	if len(fc.Rules) != 2 {
		t.Fatalf("Expected 2 rule blocks, got %d", len(fc.Rules))
	}
	if fc.Rules[0]["name"] != "no-exit" || fc.Rules[1]["method_name"] != "assert(True|False)" {
		t.Errorf("Rule blocks lost their order or content: %v", fc.Rules)
	}
	if fc.File != filepath.Join(dir, "rules", "forbidden.xml") {
		t.Errorf("Expected rule file relative to the config, got %s", fc.File)
	}
	if config.Output.Format != "json" || config.Output.SortBy != "rule" {
		t.Errorf("Unexpected output config: %+v", config.Output)
	}

	// Unset sections keep their defaults
	if !config.Analysis.Recursive || len(config.Analysis.IncludePatterns) == 0 {
		t.Error("Analysis defaults should survive a partial config")
	}
}

func TestLoadConfig_RuleFileLocations(t *testing.T) {
	tests := []struct {
		name string
		file string
		want func(dir string) string
	}{
		{"absolute", "/etc/forbidden.xml", func(string) string { return "/etc/forbidden.xml" }},
		{"file uri", "file:///etc/forbidden.xml", func(string) string { return "file:///etc/forbidden.xml" }},
		{"relative", "forbidden.yaml", func(dir string) string { return filepath.Join(dir, "forbidden.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, "forbidscan.yaml", "forbidden_calls:\n  file: \""+tt.file+"\"\n")

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if got := config.ForbiddenCalls.File; got != tt.want(dir) {
				t.Errorf("Expected %s, got %s", tt.want(dir), got)
			}
		})
	}
}

func TestLoadConfig_JSONAndTOML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := writeConfig(t, dir, "forbidscan.json", `{
  "forbidden_calls": {
    "rules": [{"name": "no-eval", "method_name": "eval", "reason": "injection"}]
  },
  "output": {"format": "csv", "sort_by": "name"}
}`)
	config, err := LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig JSON failed: %v", err)
	}
	if len(config.ForbiddenCalls.Rules) != 1 || config.Output.Format != "csv" {
		t.Errorf("Unexpected JSON config: %+v", config)
	}

	tomlPath := writeConfig(t, dir, ".forbidscan.toml", `
[forbidden_calls]
optional = true
file = "missing.xml"

[performance]
max_goroutines = 2
`)
	config, err = LoadConfig(tomlPath)
	if err != nil {
		t.Fatalf("LoadConfig TOML failed: %v", err)
	}
	if !config.ForbiddenCalls.Optional || config.Performance.MaxGoroutines != 2 {
		t.Errorf("Unexpected TOML config: %+v", config)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	badFormat := writeConfig(t, dir, "format.yaml", "output:\n  format: html\n")
	if _, err := LoadConfig(badFormat); err == nil {
		t.Error("Expected error for unsupported output format")
	}

	badSyntax := writeConfig(t, dir, "syntax.json", "{ not json")
	if _, err := LoadConfig(badSyntax); err == nil {
		t.Error("Expected error for malformed config file")
	}
}

func TestSearchConfigInDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := writeConfig(t, tempDir, ".forbidscan.yml", "output:\n  format: json\n")

	result := searchConfigInDirectory(tempDir, configCandidates)
	if result != configPath {
		t.Errorf("Expected %s, got %s", configPath, result)
	}

	// Earlier candidates win
	preferred := writeConfig(t, tempDir, "forbidscan.yaml", "output:\n  format: json\n")
	if result := searchConfigInDirectory(tempDir, configCandidates); result != preferred {
		t.Errorf("Expected %s, got %s", preferred, result)
	}

	if result := searchConfigInDirectory(t.TempDir(), configCandidates); result != "" {
		t.Error("Expected empty string for directory without config")
	}
}

func TestLoadConfigWithTarget_DiscoversUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "forbidscan.yaml", "output:\n  sort_by: name\n")

	nested := filepath.Join(root, "src", "main", "java")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create directories: %v", err)
	}
	target := writeConfig(t, nested, "App.java", "class App {}")

	config, err := LoadConfigWithTarget("", target)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if config.Output.SortBy != "name" {
		t.Errorf("Expected discovered config to be loaded, got sort_by %s", config.Output.SortBy)
	}
}

func TestFindDefaultConfig_EnvVar(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", "output:\n  format: yaml\n")

	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(ConfigEnvVar, path)

	if found := findDefaultConfig(""); found != path {
		t.Errorf("Expected %s, got %q", path, found)
	}

	t.Setenv(ConfigEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if found := findDefaultConfig(""); found != "" {
		t.Errorf("Expected no config for a missing env path, got %s", found)
	}
}

func TestSaveConfig(t *testing.T) {
	config := DefaultConfig()
	config.ForbiddenCalls.CheckConstructors = true
	config.Output.Format = "json"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}
	if !loaded.ForbiddenCalls.CheckConstructors {
		t.Error("Expected check_constructors to survive a save")
	}
	if loaded.Output.Format != "json" {
		t.Errorf("Expected format json, got %s", loaded.Output.Format)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	embedded, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig failed: %v", err)
	}
	defaults := DefaultConfig()

	if embedded.Output != defaults.Output {
		t.Errorf("Embedded output %+v differs from %+v", embedded.Output, defaults.Output)
	}
	if embedded.Performance != defaults.Performance {
		t.Errorf("Embedded performance %+v differs from %+v", embedded.Performance, defaults.Performance)
	}
	if embedded.ForbiddenCalls.CheckConstructors != defaults.ForbiddenCalls.CheckConstructors ||
		len(embedded.ForbiddenCalls.Rules) != 0 {
		t.Errorf("Unexpected embedded forbidden_calls: %+v", embedded.ForbiddenCalls)
	}
	if len(embedded.Analysis.IncludePatterns) != len(defaults.Analysis.IncludePatterns) {
		t.Errorf("Expected %d include patterns, got %d",
			len(defaults.Analysis.IncludePatterns), len(embedded.Analysis.IncludePatterns))
	}
	for i, p := range defaults.Analysis.IncludePatterns {
		if embedded.Analysis.IncludePatterns[i] != p {
			t.Errorf("Include pattern %d: expected %s, got %s", i, p, embedded.Analysis.IncludePatterns[i])
		}
	}
	if len(embedded.Analysis.ExcludePatterns) != len(defaults.Analysis.ExcludePatterns) {
		t.Errorf("Expected %d exclude patterns, got %d",
			len(defaults.Analysis.ExcludePatterns), len(embedded.Analysis.ExcludePatterns))
	}
}

func TestGetFullConfigTemplate(t *testing.T) {
	for projectType := range GetProjectPresets() {
		for strictness, preset := range GetStrictnessPresets() {
			t.Run(string(projectType)+"/"+string(strictness), func(t *testing.T) {
				var config Config
				if err := yaml.Unmarshal([]byte(GetFullConfigTemplate(projectType, strictness)), &config); err != nil {
					t.Fatalf("Template is not valid YAML: %v", err)
				}
				if err := config.Validate(); err != nil {
					t.Errorf("Template config is invalid: %v", err)
				}

				want := SelectRules(projectType, strictness)
				if len(config.ForbiddenCalls.Rules) != len(want) {
					t.Fatalf("Expected %d rules, got %d", len(want), len(config.ForbiddenCalls.Rules))
				}
				for i, r := range want {
					block := config.ForbiddenCalls.Rules[i]
					if block["name"] != r.Name || block["method_name"] != r.MethodName || block["reason"] != r.Reason {
						t.Errorf("Rule %d mismatch: %v", i, block)
					}
				}
				if config.ForbiddenCalls.CheckConstructors != preset.CheckConstructors {
					t.Errorf("Expected check_constructors %v", preset.CheckConstructors)
				}
			})
		}
	}
}

func TestSelectRules(t *testing.T) {
	all := GetProjectPresets()[ProjectTypeJava].Rules

	if got := SelectRules(ProjectTypeJava, StrictnessRelaxed); len(got) != 1 {
		t.Errorf("Relaxed should enable 1 rule, got %d", len(got))
	}
	if got := SelectRules(ProjectTypeJava, StrictnessStandard); len(got) != 2 {
		t.Errorf("Standard should enable 2 rules, got %d", len(got))
	}
	if got := SelectRules(ProjectTypeJava, StrictnessStrict); len(got) != len(all) {
		t.Errorf("Strict should enable all %d rules, got %d", len(all), len(got))
	}
}

func TestGetMinimalConfigTemplate(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "forbidscan.yaml", GetMinimalConfigTemplate())

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Minimal template should load: %v", err)
	}
	if config.Output.Format != DefaultOutputFormat {
		t.Errorf("Expected format %s, got %s", DefaultOutputFormat, config.Output.Format)
	}
}
