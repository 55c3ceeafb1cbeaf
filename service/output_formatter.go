package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/forbidscan/domain"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// csvHeader lists the columns of the csv format, one row per violation
var csvHeader = []string{
	"file", "line", "column", "language", "call", "argument_count",
	"kind", "rule", "method_pattern", "arg_count_pattern", "reason", "message",
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Format renders the response into a string
func (f *OutputFormatterImpl) Format(response *domain.ForbiddenCallsResponse, format domain.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(response, format, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write writes the response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.ForbiddenCallsResponse, format domain.OutputFormat, writer io.Writer) error {
	var err error
	switch format {
	case domain.OutputFormatText, "":
		err = f.writeText(response, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		err = f.writeCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError("failed to write "+string(format)+" output", err)
	}
	return nil
}

// WriteRules writes the compiled rule listing used by the rules command
func (f *OutputFormatterImpl) WriteRules(infos []domain.RuleInfo, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, infos)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, infos)
	case domain.OutputFormatText, "":
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}

	if len(infos) == 0 {
		fmt.Fprintf(writer, "No forbidden call rules configured.\n")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(writer, "%d. %s [%s]\n", info.Index, info.Name, info.Form)
		fmt.Fprintf(writer, "   method: %s\n", info.MethodPattern)
		if info.ArgCountPattern != "" {
			fmt.Fprintf(writer, "   argument count: %s\n", info.ArgCountPattern)
		}
		if info.Reason != "" {
			fmt.Fprintf(writer, "   reason: %s\n", info.Reason)
		}
	}
	return nil
}

// writeText writes the response as a human-readable report
func (f *OutputFormatterImpl) writeText(response *domain.ForbiddenCallsResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Forbidden Calls ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	for _, v := range response.Violations {
		fmt.Fprintf(writer, "%s:%d:%d: %s\n", v.FilePath, v.Line, v.Column, v.Message)
		if v.Rule != "" {
			fmt.Fprintf(writer, "    rule: %s\n", v.Rule)
		}
		if v.Reason != "" {
			fmt.Fprintf(writer, "    reason: %s\n", v.Reason)
		}
	}
	if len(response.Violations) == 0 {
		fmt.Fprintf(writer, "No forbidden calls found.\n")
	}

	// Summary
	s := response.Summary
	fmt.Fprintf(writer, "\nSummary:\n")
	fmt.Fprintf(writer, "  Files analyzed: %d\n", s.FilesAnalyzed)
	fmt.Fprintf(writer, "  Files with violations: %d\n", s.FilesWithViolations)
	fmt.Fprintf(writer, "  Rules loaded: %d\n", s.RulesLoaded)
	fmt.Fprintf(writer, "  Total violations: %d\n", s.TotalViolations)

	if len(s.ViolationsByRule) > 0 {
		names := make([]string, 0, len(s.ViolationsByRule))
		for name := range s.ViolationsByRule {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(writer, "\nBy rule:\n")
		for _, name := range names {
			fmt.Fprintf(writer, "  %s: %d\n", name, s.ViolationsByRule[name])
		}
	}

	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	return nil
}

// writeCSV writes one row per violation under csvHeader
func (f *OutputFormatterImpl) writeCSV(response *domain.ForbiddenCallsResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range response.Violations {
		record := []string{
			v.FilePath,
			strconv.Itoa(v.Line),
			strconv.Itoa(v.Column),
			v.Language,
			v.CallName,
			strconv.Itoa(v.ArgumentCount),
			v.CallKind,
			v.Rule,
			v.MethodPattern,
			v.ArgCountPattern,
			v.Reason,
			v.Message,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
