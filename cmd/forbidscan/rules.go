package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/constants"
	"github.com/ludo-technologies/forbidscan/service"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the forbidden call rules in evaluation order",
		Long: `Compile the configured forbidden call rules and list them in the order
they are evaluated. Declarative rules come first, then the rules of the
external rule file, labelled <file>#<n>.

The configuration is discovered from path (default: current directory)
unless --config is given. An invalid rule exits with code 2.

Examples:
  forbidscan rules
  forbidscan rules --rules-file forbidden.xml --format json`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runRules,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().String("rules-file", "", "External rule file (XML or YAML), path or file: URI")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	configPath, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	rulesFile, _ := cmd.Flags().GetString("rules-file")

	loader := service.NewConfigurationLoader()
	req, err := loader.LoadConfigWithTarget(configPath, target)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	if rulesFile != "" {
		req.RulesFile = rulesFile
	}

	ruleSet, err := service.CompileRuleSet(*req)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	logger.Debug().Int("rules", ruleSet.Len()).Msg("compiled forbidden call rules")

	infos := service.DescribeRules(ruleSet)
	if err := service.NewOutputFormatter().WriteRules(infos, domain.OutputFormat(format), cmd.OutOrStdout()); err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	return nil
}
