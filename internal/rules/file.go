package rules

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// XML element and attribute names of the side-file format
const (
	xmlRootElement  = "ForbiddenMethods"
	xmlEntryElement = "ForbiddenMethod"
	xmlMethodName   = "methodName"
	xmlArgCount     = "argCount"
)

var errMissingMethodName = errors.New("missing methodName attribute")

// fileEntry is one side-file rule before compilation
type fileEntry struct {
	MethodName Field
	ArgCount   Field
}

// LoadFile reads rules from an external side file and compiles them, in file
// order, under ExternalFilePolicy. location is a filesystem path or a file: URI.
// When optional is true a file that cannot be found yields an empty rule set;
// a file that exists but is malformed always fails.
func LoadFile(location string, optional bool) (*RuleSet, error) {
	path, err := resolveLocation(location)
	if err != nil {
		if optional {
			return Empty(), nil
		}
		return nil, sourceError(location, "unable to find "+location, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional {
			return Empty(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sourceError(location, "unable to find "+location, err)
		}
		return nil, sourceError(location, "unable to read "+location, err)
	}

	entries, err := parseRuleFile(path, data)
	if err != nil {
		return nil, sourceError(location, "unable to parse "+location, err)
	}

	base := filepath.Base(path)
	compiled := make([]*Rule, 0, len(entries))
	for i, entry := range entries {
		spec := Spec{
			Name:          Present(fmt.Sprintf("%s#%d", base, i+1)),
			MethodName:    entry.MethodName,
			ArgumentCount: entry.ArgCount,
		}
		rule, err := NewRule(spec, ExternalFilePolicy)
		if err != nil {
			return nil, withSource(err, location)
		}
		compiled = append(compiled, rule)
	}
	return NewRuleSet(compiled...), nil
}

// resolveLocation turns a path or file: URI into a local filesystem path
func resolveLocation(location string) (string, error) {
	if location == "" {
		return "", errors.New("empty file location")
	}
	if !strings.HasPrefix(strings.ToLower(location), "file:") {
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}

	var path string
	switch {
	case u.Opaque != "":
		path = u.Opaque
	case u.Host != "":
		// file://relative/name keeps the first segment in Host
		path = u.Host + u.Path
	default:
		path = u.Path
	}
	if path == "" {
		return "", fmt.Errorf("no path in %q", location)
	}
	return filepath.FromSlash(path), nil
}

// parseRuleFile dispatches on the file extension; XML is the default format
func parseRuleFile(path string, data []byte) ([]fileEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLRules(data)
	default:
		return parseXMLRules(data)
	}
}

func parseXMLRules(data []byte) ([]fileEntry, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true

	var entries []fileEntry
	sawRoot := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			if start.Name.Local != xmlRootElement {
				return nil, fmt.Errorf("unexpected root element <%s>, want <%s>", start.Name.Local, xmlRootElement)
			}
			sawRoot = true
			continue
		}

		if start.Name.Local != xmlEntryElement {
			continue
		}

		entry := fileEntry{}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case xmlMethodName:
				entry.MethodName = Present(attr.Value)
			case xmlArgCount:
				entry.ArgCount = Present(attr.Value)
			default:
				return nil, fmt.Errorf("line %d: unrecognized attribute %q", lineOf(decoder), attr.Name.Local)
			}
		}
		if !entry.MethodName.Present {
			return nil, fmt.Errorf("line %d: %w", lineOf(decoder), errMissingMethodName)
		}
		entries = append(entries, entry)
	}

	if !sawRoot {
		return nil, fmt.Errorf("no <%s> root element", xmlRootElement)
	}
	return entries, nil
}

func lineOf(decoder *xml.Decoder) int {
	line, _ := decoder.InputPos()
	return line
}

// yamlRuleFile is the YAML rendition of the side file
type yamlRuleFile struct {
	ForbiddenMethods []yamlEntry `yaml:"forbidden_methods"`
}

type yamlEntry struct {
	MethodName *string        `yaml:"method_name"`
	ArgCount   *argCountValue `yaml:"arg_count"`
}

// argCountValue accepts an integer or a pattern string and nothing else
type argCountValue struct {
	text string
}

// UnmarshalYAML implements yaml.Unmarshaler
func (a *argCountValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: non-numeric argument count", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!str":
		a.text = node.Value
		return nil
	default:
		return fmt.Errorf("line %d: non-numeric argument count %q", node.Line, node.Value)
	}
}

func parseYAMLRules(data []byte) ([]fileEntry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file yamlRuleFile
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]fileEntry, 0, len(file.ForbiddenMethods))
	for i, raw := range file.ForbiddenMethods {
		if raw.MethodName == nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, errMissingMethodName)
		}
		entry := fileEntry{MethodName: Present(*raw.MethodName)}
		if raw.ArgCount != nil {
			entry.ArgCount = Present(raw.ArgCount.text)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
