package rules

import (
	"fmt"
	"strings"
)

// Rule fields referenced by configuration errors
const (
	FieldName          = "name"
	FieldMethodName    = "method_name"
	FieldArgumentCount = "argument_count"
	FieldReason        = "reason"
	FieldFile          = "file"
)

// ConfigError reports a rule or rule-source that cannot be turned into a RuleSet.
// It is always fatal: no partial rule set is produced alongside it.
type ConfigError struct {
	Rule    string // rule label, empty when the failure is not tied to one rule
	Field   string // offending field, empty for source-level failures
	Source  string // side file or config section the rule came from
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(": ")
	}
	if e.Rule != "" {
		sb.WriteString(fmt.Sprintf("rule %q: ", e.Rule))
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func fieldError(rule, field, message string, cause error) *ConfigError {
	return &ConfigError{Rule: rule, Field: field, Message: message, Cause: cause}
}

func sourceError(source, message string, cause error) *ConfigError {
	return &ConfigError{Source: source, Field: FieldFile, Message: message, Cause: cause}
}
