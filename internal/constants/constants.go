package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "forbidscan"

	// ConfigFileName is the config file written by init
	ConfigFileName = "forbidscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "FORBIDSCAN"
)

// Exit codes of the check command
const (
	ExitCodeClean      = 0
	ExitCodeViolations = 1
	ExitCodeError      = 2
)
