package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// DeclarativeSource is the config section name used in declarative-form errors
const DeclarativeSource = "forbidden_calls.rules"

// declarativeBlock mirrors one rule block of the declarative form.
// Pointer fields keep "not given" apart from "given but empty".
type declarativeBlock struct {
	Name          *string `mapstructure:"name"`
	MethodName    *string `mapstructure:"method_name"`
	ArgumentCount *string `mapstructure:"argument_count"`
	Reason        *string `mapstructure:"reason"`
}

// LoadDeclarative compiles the declarative rule blocks, in order, under DeclarativePolicy.
// Unknown attribute names in a block are rejected.
func LoadDeclarative(blocks []map[string]any) (*RuleSet, error) {
	compiled := make([]*Rule, 0, len(blocks))
	for i, raw := range blocks {
		source := fmt.Sprintf("%s[%d]", DeclarativeSource, i)

		spec, err := decodeBlock(raw)
		if err != nil {
			return nil, withSource(err, source)
		}

		rule, err := NewRule(spec, DeclarativePolicy)
		if err != nil {
			return nil, withSource(err, source)
		}
		compiled = append(compiled, rule)
	}
	return NewRuleSet(compiled...), nil
}

// withSource attaches the originating section to a configuration error
func withSource(err error, source string) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		cfgErr.Source = source
		return cfgErr
	}
	return &ConfigError{Source: source, Message: "malformed rule block", Cause: err}
}

func decodeBlock(raw map[string]any) (Spec, error) {
	var block declarativeBlock
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &block,
		Metadata:         &md,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Spec{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Spec{}, err
	}

	if len(md.Unused) > 0 {
		unknown := append([]string(nil), md.Unused...)
		sort.Strings(unknown)
		label := ""
		if block.Name != nil {
			label = *block.Name
		}
		return Spec{}, fieldError(label, unknown[0],
			fmt.Sprintf("unrecognized attribute %q", unknown[0]), nil)
	}

	return Spec{
		Name:          optionalField(block.Name),
		MethodName:    optionalField(block.MethodName),
		ArgumentCount: optionalField(block.ArgumentCount),
		Reason:        optionalField(block.Reason),
	}, nil
}

func optionalField(v *string) Field {
	if v == nil {
		return Absent
	}
	return Present(*v)
}
