package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/rules"
	"github.com/ludo-technologies/forbidscan/internal/testutil"
)

const xmlRules = `<?xml version="1.0"?>
<ForbiddenMethods>
  <ForbiddenMethod methodName="sleep" argCount="1"/>
  <ForbiddenMethod methodName="printStackTrace"/>
</ForbiddenMethods>
`

func TestCompileRuleSet_DeclarativeThenFile(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"rules.xml": xmlRules})

	set, err := CompileRuleSet(domain.ForbiddenCallsRequest{
		Rules: []map[string]any{
			testutil.Rule("no-exit", "exit", "", "terminates"),
		},
		RulesFile: filepath.Join(dir, "rules.xml"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	names := make([]string, 0, set.Len())
	for _, r := range set.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"no-exit", "rules.xml#1", "rules.xml#2"}, names)
	assert.Equal(t, rules.FormExternalFile, set.Rules()[1].Form())
}

func TestCompileRuleSet_NoSources(t *testing.T) {
	set, err := CompileRuleSet(domain.ForbiddenCallsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestCompileRuleSet_InvalidDeclarativeRule(t *testing.T) {
	_, err := CompileRuleSet(domain.ForbiddenCallsRequest{
		Rules: []map[string]any{
			{"name": "missing-reason", "method_name": "exit"},
		},
	})
	require.Error(t, err)

	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeConfigError, domainErr.Code)

	var cfgErr *rules.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, rules.FieldReason, cfgErr.Field)
}

func TestCompileRuleSet_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.xml")

	_, err := CompileRuleSet(domain.ForbiddenCallsRequest{RulesFile: missing})
	require.Error(t, err)

	set, err := CompileRuleSet(domain.ForbiddenCallsRequest{RulesFile: missing, RulesFileOptional: true})
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestCallSiteOptions(t *testing.T) {
	assert.False(t, CallSiteOptions(domain.ForbiddenCallsRequest{}).CheckConstructors)
	assert.True(t, CallSiteOptions(domain.ForbiddenCallsRequest{CheckConstructors: true}).CheckConstructors)
}

func TestDescribeRules(t *testing.T) {
	set := testutil.DeclarativeRules(t,
		testutil.Rule("no-exit", "exit", "", "terminates"),
		testutil.Rule("assert-message", "assert(True|False)", "1", "add a message"),
	)

	infos := DescribeRules(set)
	require.Len(t, infos, 2)

	assert.Equal(t, domain.RuleInfo{
		Index:         1,
		Name:          "no-exit",
		Form:          "declarative",
		MethodPattern: "exit",
		Reason:        "terminates",
	}, infos[0])
	assert.Equal(t, 2, infos[1].Index)
	assert.Equal(t, "1", infos[1].ArgCountPattern)
}

func TestLoadRuleSet(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"forbidscan.yaml": `forbidden_calls:
  check_constructors: true
  file: rules.xml
  rules:
    - name: no-exit
      method_name: Exit
      reason: return an error instead
`,
		"rules.xml": xmlRules,
	})

	set, options, err := LoadRuleSet(filepath.Join(dir, "forbidscan.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.True(t, options.CheckConstructors)

	rule, ok := set.FindViolation("Exit", 1)
	require.True(t, ok)
	assert.Equal(t, "no-exit", rule.Name())
}

func TestLoadRuleSet_InvalidRule(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"forbidscan.yaml": "forbidden_calls:\n  rules:\n    - name: x\n      method_name: Exit\n",
	})

	_, _, err := LoadRuleSet(filepath.Join(dir, "forbidscan.yaml"))
	require.Error(t, err)
}
