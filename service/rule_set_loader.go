package service

import (
	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

// CompileRuleSet builds the rule set of a request: the declarative rules in
// declaration order followed by the rules of the side file, if any.
// Any invalid rule fails the whole load with a CONFIG_ERROR.
func CompileRuleSet(req domain.ForbiddenCallsRequest) (*rules.RuleSet, error) {
	declarative, err := rules.LoadDeclarative(req.Rules)
	if err != nil {
		return nil, domain.NewConfigError("invalid forbidden call rule", err)
	}

	if req.RulesFile == "" {
		return declarative, nil
	}

	fromFile, err := rules.LoadFile(req.RulesFile, req.RulesFileOptional)
	if err != nil {
		return nil, domain.NewConfigError("invalid forbidden call rule file", err)
	}

	return rules.Concat(declarative, fromFile), nil
}

// CallSiteOptions extracts the call-site extraction switches of a request
func CallSiteOptions(req domain.ForbiddenCallsRequest) callsite.Options {
	return callsite.Options{CheckConstructors: req.CheckConstructors}
}

// DescribeRules lists a rule set in evaluation order
func DescribeRules(set *rules.RuleSet) []domain.RuleInfo {
	infos := make([]domain.RuleInfo, 0, set.Len())
	for i, rule := range set.Rules() {
		info := domain.RuleInfo{
			Index:         i + 1,
			Name:          rule.Name(),
			Form:          string(rule.Form()),
			MethodPattern: rule.NamePattern(),
		}
		if pattern, ok := rule.ArgCountPattern(); ok {
			info.ArgCountPattern = pattern
		}
		if reason, ok := rule.Reason(); ok {
			info.Reason = reason
		}
		infos = append(infos, info)
	}
	return infos
}

// LoadRuleSet loads the configuration at configPath, or the discovered one
// when configPath is empty, and compiles its rules. Its signature matches
// gocalls.RuleLoader.
func LoadRuleSet(configPath string) (*rules.RuleSet, callsite.Options, error) {
	req, err := NewConfigurationLoader().LoadConfigWithTarget(configPath, ".")
	if err != nil {
		return nil, callsite.Options{}, err
	}
	ruleSet, err := CompileRuleSet(*req)
	if err != nil {
		return nil, callsite.Options{}, err
	}
	return ruleSet, CallSiteOptions(*req), nil
}
