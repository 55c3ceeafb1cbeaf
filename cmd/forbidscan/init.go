package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/forbidscan/internal/config"
	"github.com/ludo-technologies/forbidscan/internal/constants"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a forbidscan configuration file",
		Long: `Generate a documented forbidscan configuration file with starter rules.

By default, creates forbidscan.yaml in the current directory for a generic
project with the standard rule selection. Use --interactive for a guided
setup wizard.

Examples:
  # Create forbidscan.yaml in current directory
  forbidscan init

  # Starter rules for a Java project, every rule enabled
  forbidscan init --project java --strictness strict

  # Custom output path
  forbidscan init --config config/forbidscan.yaml

  # Overwrite existing file
  forbidscan init --force

  # Defaults only, no rules
  forbidscan init --minimal

  # Interactive setup wizard
  forbidscan init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with defaults only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().String("project", string(config.ProjectTypeGeneric),
		"Project type for starter rules: generic, java, node, go")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"How many starter rules to enable: relaxed, standard, strict")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	project, _ := cmd.Flags().GetString("project")
	strict, _ := cmd.Flags().GetString("strictness")

	projectType := config.ProjectType(project)
	if _, ok := config.GetProjectPresets()[projectType]; !ok {
		return fmt.Errorf("unknown project type %q (must be one of: generic, java, node, go)", project)
	}
	strictness := config.Strictness(strict)
	if _, ok := config.GetStrictnessPresets()[strictness]; !ok {
		return fmt.Errorf("unknown strictness %q (must be one of: relaxed, standard, strict)", strict)
	}

	out := cmd.OutOrStdout()

	if interactive {
		var err error
		projectType, strictness, configPath, err = runInteractiveSetup(out, configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(projectType, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'forbidscan check .' to check your project.")

	return nil
}

func runInteractiveSetup(out io.Writer, defaultConfigPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "forbidscan Configuration Setup")
	fmt.Fprintln(out, "==============================")
	fmt.Fprintln(out)

	projectTypes := []struct {
		Label string
		Value config.ProjectType
	}{
		{"Generic (all supported languages)", config.ProjectTypeGeneric},
		{"Java", config.ProjectTypeJava},
		{"Node.js (JavaScript/TypeScript)", config.ProjectTypeNode},
		{"Go", config.ProjectTypeGo},
	}

	projectTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	projectPrompt := promptui.Select{
		Label:     "What type of project is this?",
		Items:     projectTypes,
		Templates: projectTemplates,
	}

	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("project selection cancelled: %w", err)
	}
	selectedProject := projectTypes[projectIdx].Value

	fmt.Fprintln(out)

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "The two most common starter rules", config.StrictnessStandard},
		{"Relaxed", "A single starter rule", config.StrictnessRelaxed},
		{"Strict", "Every starter rule, constructors checked", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How many starter rules should be enabled?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Fprintln(out)

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Creating %s... ", outputPath)

	return selectedProject, selectedStrictness, outputPath, nil
}
