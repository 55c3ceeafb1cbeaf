package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDeclarative(t *testing.T) {
	set, err := LoadDeclarative([]map[string]any{
		{"name": "no-exit", "method_name": "exit", "reason": "terminates the JVM"},
		{"name": "single-assert", "method_name": "assert(True|False)", "argument_count": "1", "reason": "add a message"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	rule, ok := set.FindViolation("assertTrue", 1)
	require.True(t, ok)
	assert.Equal(t, "single-assert", rule.Name())
	assert.Equal(t, FormDeclarative, rule.Form())

	_, ok = set.FindViolation("assertTrue", 2)
	assert.False(t, ok)
}

func TestLoadDeclarative_IntegerArgumentCount(t *testing.T) {
	set, err := LoadDeclarative([]map[string]any{
		{"name": "sleep", "method_name": "sleep", "argument_count": 1, "reason": "flaky"},
	})
	require.NoError(t, err)

	pattern, ok := set.Rules()[0].ArgCountPattern()
	require.True(t, ok)
	assert.Equal(t, "1", pattern)
}

func TestLoadDeclarative_Errors(t *testing.T) {
	tests := []struct {
		name       string
		blocks     []map[string]any
		wantSource string
		wantField  string
		wantMsg    string
	}{
		{
			name: "unknown attribute",
			blocks: []map[string]any{
				{"name": "r", "method_name": "exit", "reason": "x", "methodName": "exit"},
			},
			wantSource: "forbidden_calls.rules[0]",
			wantField:  "methodName",
			wantMsg:    `unrecognized attribute "methodName"`,
		},
		{
			name: "missing reason in second block",
			blocks: []map[string]any{
				{"name": "ok", "method_name": "exit", "reason": "x"},
				{"name": "bad", "method_name": "sleep"},
			},
			wantSource: "forbidden_calls.rules[1]",
			wantField:  FieldReason,
			wantMsg:    "reason must not be empty",
		},
		{
			name: "missing name",
			blocks: []map[string]any{
				{"method_name": "exit", "reason": "x"},
			},
			wantSource: "forbidden_calls.rules[0]",
			wantField:  FieldName,
			wantMsg:    "rule name must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := LoadDeclarative(tt.blocks)
			require.Error(t, err)
			assert.Nil(t, set)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantSource, cfgErr.Source)
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadDeclarative_Empty(t *testing.T) {
	set, err := LoadDeclarative(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}
