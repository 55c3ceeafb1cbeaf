package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/forbidscan/internal/constants"
	"github.com/ludo-technologies/forbidscan/internal/logging"
	"github.com/ludo-technologies/forbidscan/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		// Handle custom exit codes from check and rules
		var exitErr *CheckExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Silently exit with the specified code (output already printed)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeError)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "forbidscan - forbidden method and constructor call checker",
		Long: `forbidscan reports calls to forbidden methods and constructors in Java,
JavaScript, TypeScript and Go sources.

A call is forbidden when its bare name, and optionally its argument count,
matches one of the configured rules.`,
		Version: Version,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")

	cmd.AddCommand(checkCmd())
	cmd.AddCommand(rulesCmd())
	cmd.AddCommand(initCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// newLogger builds the command logger from the persistent verbosity flags
func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return logging.New(cmd.ErrOrStderr(), logging.LevelFor(verbose, quiet))
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			full, _ := cmd.Flags().GetBool("full")
			if full {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.ToolName, version.GetVersion())
			}
		},
	}

	cmd.Flags().Bool("full", false, "Show detailed version information")
	return cmd
}
