package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleXML = `<?xml version="1.0"?>
<ForbiddenMethods>
  <ForbiddenMethod methodName="exit"/>
  <ForbiddenMethod methodName="assert(True|False)" argCount="1"/>
</ForbiddenMethods>
`

func TestLoadFile_XML(t *testing.T) {
	path := writeRuleFile(t, "forbidden.xml", sampleXML)

	set, err := LoadFile(path, false)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	first := set.Rules()[0]
	assert.Equal(t, "forbidden.xml#1", first.Name())
	assert.Equal(t, FormExternalFile, first.Form())
	_, hasReason := first.Reason()
	assert.False(t, hasReason)

	rule, ok := set.FindViolation("assertFalse", 1)
	require.True(t, ok)
	assert.Equal(t, "forbidden.xml#2", rule.Name())

	_, ok = set.FindViolation("assertFalse", 2)
	assert.False(t, ok)

	_, ok = set.FindViolation("exitNow", 0)
	assert.False(t, ok)
}

func TestLoadFile_FileURI(t *testing.T) {
	path := writeRuleFile(t, "forbidden.xml", sampleXML)

	set, err := LoadFile("file:"+filepath.ToSlash(path), false)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	set, err = LoadFile("file://"+filepath.ToSlash(path), false)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeRuleFile(t, "forbidden.yaml", `
forbidden_methods:
  - method_name: exit
  - method_name: sleep
    arg_count: 1
  - method_name: wait
    arg_count: "[0-1]"
`)

	set, err := LoadFile(path, false)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	_, ok := set.FindViolation("sleep", 1)
	assert.True(t, ok)
	_, ok = set.FindViolation("sleep", 2)
	assert.False(t, ok)
	_, ok = set.FindViolation("wait", 0)
	assert.True(t, ok)
}

func TestLoadFile_YAMLEmpty(t *testing.T) {
	path := writeRuleFile(t, "forbidden.yml", "")

	set, err := LoadFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "non-existing-file.txt")

	set, err := LoadFile(missing, true)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	set, err = LoadFile("file:"+filepath.ToSlash(missing), true)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	_, err = LoadFile(missing, false)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, FieldFile, cfgErr.Field)
	assert.Contains(t, err.Error(), "unable to find")
}

func TestLoadFile_MalformedFailsEvenWhenOptional(t *testing.T) {
	// A source file handed over by mistake is not a rule file.
	path := writeRuleFile(t, "Main.java", `public class Main {
    public static void main(String[] args) { System.exit(0); }
}
`)

	for _, optional := range []bool{true, false} {
		set, err := LoadFile(path, optional)
		require.Error(t, err, "optional=%v", optional)
		assert.Nil(t, set)
		assert.Contains(t, err.Error(), "unable to parse")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantMsg string
	}{
		{
			name:    "wrong root",
			file:    "rules.xml",
			content: `<Rules><ForbiddenMethod methodName="exit"/></Rules>`,
			wantMsg: "unexpected root element <Rules>",
		},
		{
			name:    "missing method name",
			file:    "rules.xml",
			content: `<ForbiddenMethods><ForbiddenMethod argCount="1"/></ForbiddenMethods>`,
			wantMsg: "missing methodName attribute",
		},
		{
			name:    "unknown attribute",
			file:    "rules.xml",
			content: `<ForbiddenMethods><ForbiddenMethod methodName="exit" reason="x"/></ForbiddenMethods>`,
			wantMsg: `unrecognized attribute "reason"`,
		},
		{
			name:    "empty document",
			file:    "rules.xml",
			content: ``,
			wantMsg: "no <ForbiddenMethods> root element",
		},
		{
			name:    "bad regex",
			file:    "rules.xml",
			content: `<ForbiddenMethods><ForbiddenMethod methodName="exit("/></ForbiddenMethods>`,
			wantMsg: `invalid regex for method name "exit("`,
		},
		{
			name:    "yaml non-numeric count",
			file:    "rules.yaml",
			content: "forbidden_methods:\n  - method_name: exit\n    arg_count: [1, 2]\n",
			wantMsg: "non-numeric argument count",
		},
		{
			name:    "yaml unknown key",
			file:    "rules.yaml",
			content: "forbidden_methods:\n  - method_name: exit\n    reason: x\n",
			wantMsg: "unable to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRuleFile(t, tt.file, tt.content)
			_, err := LoadFile(path, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadFile_BadRegexReportsSource(t *testing.T) {
	path := writeRuleFile(t, "rules.xml", `<ForbiddenMethods><ForbiddenMethod methodName="ok"/><ForbiddenMethod methodName="[x"/></ForbiddenMethods>`)

	_, err := LoadFile(path, false)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Source)
	assert.Equal(t, "rules.xml#2", cfgErr.Rule)
	assert.Equal(t, FieldMethodName, cfgErr.Field)
}
