package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/forbidscan/app"
	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/constants"
	"github.com/ludo-technologies/forbidscan/service"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report forbidden method and constructor calls",
		Long: `Check source files against the configured forbidden call rules.

Rules come from the forbidden_calls section of the configuration file, from
--rule flags (appended after the configured rules) and from an external rule
file. The first rule that matches a call is the one reported.

Exit codes:
  0 - No forbidden calls found
  1 - Forbidden calls found
  2 - Configuration or analysis error (invalid rule, missing file, etc.)

Examples:
  # Check a project with the discovered forbidscan.yaml
  forbidscan check .

  # Use an XML or YAML rule file
  forbidscan check --rules-file forbidden.xml src/

  # Add a rule on the command line
  forbidscan check --rule "name=no-exit,method_name=exit,reason=Stops the JVM" src/

  # Include constructor calls such as new Thread(r)
  forbidscan check --check-constructors src/

  # JSON output for machine parsing
  forbidscan check --format json src/`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml, csv")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().String("sort", "", "Sort violations by: location, rule, name")
	cmd.Flags().StringArray("rule", nil, "Declarative rule as key=value pairs: name, method_name, argument_count, reason")
	cmd.Flags().String("rules-file", "", "External rule file (XML or YAML), path or file: URI")
	cmd.Flags().Bool("rules-file-optional", false, "Treat a missing rule file as an empty rule list")
	cmd.Flags().Bool("check-constructors", false, "Also check constructor calls")
	cmd.Flags().Bool("recursive", true, "Descend into directories")
	cmd.Flags().Bool("gitignore", true, "Skip files ignored by .gitignore")
	cmd.Flags().StringSlice("include", nil, "Include glob patterns (replace the configured ones)")
	cmd.Flags().StringSlice("exclude", nil, "Exclude glob patterns (replace the configured ones)")
	cmd.Flags().Int("max-goroutines", 0, "Number of parallel workers (0 = number of CPUs)")
	cmd.Flags().Int("timeout", 0, "Abort the run after this many seconds")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &CheckExitError{Code: constants.ExitCodeError, Message: "no paths specified"}
	}

	logger := newLogger(cmd)

	req, err := buildCheckRequest(cmd, args)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	logger.Debug().Strs("paths", req.Paths).Str("config", req.ConfigPath).Msg("starting check")

	outputPath, _ := cmd.Flags().GetString("output")
	writer, closeWriter, err := openOutput(cmd.OutOrStdout(), outputPath)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	defer closeWriter()
	req.OutputWriter = writer

	// Progress is drawn on stderr and only in interactive terminals
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	pm := service.NewProgressManager(!noProgress)
	defer pm.Close()

	uc, err := app.NewForbiddenCallsUseCaseBuilder().
		WithService(service.NewForbiddenCallsServiceWithProgress(pm).WithLogger(logger)).
		WithFormatter(service.NewOutputFormatter()).
		WithFileHelper(app.NewFileHelper()).
		Build()
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := uc.Execute(ctx, *req)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	if code := checkExitCode(resp); code != constants.ExitCodeClean {
		return &CheckExitError{Code: code}
	}
	return nil
}

// checkExitCode maps a finished run to the process exit code.
// Violations take precedence over per-file errors.
func checkExitCode(resp *domain.ForbiddenCallsResponse) int {
	switch {
	case resp.Summary.HasViolations():
		return constants.ExitCodeViolations
	case len(resp.Errors) > 0:
		return constants.ExitCodeError
	default:
		return constants.ExitCodeClean
	}
}

// buildCheckRequest loads the configuration for the first path and applies
// the flags that were set explicitly
func buildCheckRequest(cmd *cobra.Command, args []string) (*domain.ForbiddenCallsRequest, error) {
	flags := cmd.Flags()
	loader := service.NewConfigurationLoader()

	configPath, _ := flags.GetString("config")
	base, err := loader.LoadConfigWithTarget(configPath, args[0])
	if err != nil {
		return nil, err
	}

	override := &domain.ForbiddenCallsRequest{Paths: args}

	format, _ := flags.GetString("format")
	override.OutputFormat = domain.OutputFormat(format)
	sortBy, _ := flags.GetString("sort")
	override.SortBy = domain.SortCriteria(sortBy)

	ruleFlags, _ := flags.GetStringArray("rule")
	for _, raw := range ruleFlags {
		block, err := parseRuleFlag(raw)
		if err != nil {
			return nil, err
		}
		override.Rules = append(override.Rules, block)
	}
	override.RulesFile, _ = flags.GetString("rules-file")
	override.RulesFileOptional, _ = flags.GetBool("rules-file-optional")
	override.IncludePatterns, _ = flags.GetStringSlice("include")
	override.ExcludePatterns, _ = flags.GetStringSlice("exclude")
	override.MaxGoroutines, _ = flags.GetInt("max-goroutines")
	override.TimeoutSeconds, _ = flags.GetInt("timeout")

	merged := loader.MergeConfig(base, override)

	// Booleans that can also switch a configured value off
	if flags.Changed("check-constructors") {
		merged.CheckConstructors, _ = flags.GetBool("check-constructors")
	}
	if flags.Changed("recursive") {
		merged.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("gitignore") {
		merged.RespectGitignore, _ = flags.GetBool("gitignore")
	}

	if err := loader.ValidateConfig(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// ruleKey matches the start of a key=value pair inside a --rule value
var ruleKey = regexp.MustCompile(`^\s*[A-Za-z_][A-Za-z0-9_]*\s*=`)

// parseRuleFlag turns "name=no-exit,method_name=exit,reason=..." into a rule block.
// A comma only starts a new pair when a key= follows it, so values such as
// "a{1,3}" or "Stops the JVM, use X" keep their commas.
func parseRuleFlag(raw string) (map[string]any, error) {
	var pairs []string
	for _, segment := range strings.Split(raw, ",") {
		if ruleKey.MatchString(segment) || len(pairs) == 0 {
			pairs = append(pairs, segment)
			continue
		}
		pairs[len(pairs)-1] += "," + segment
	}

	block := make(map[string]any)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --rule %q: expected key=value pairs", raw)
		}
		block[key] = strings.TrimSpace(value)
	}
	return block, nil
}

// openOutput returns the report writer: stdout, or the named file
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
