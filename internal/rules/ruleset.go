package rules

import "strconv"

// RuleSet is an ordered, read-only sequence of rules.
// Order is significant: the first declared matching rule wins.
type RuleSet struct {
	rules []*Rule
}

// NewRuleSet creates a rule set from already compiled rules
func NewRuleSet(rules ...*Rule) *RuleSet {
	owned := make([]*Rule, len(rules))
	copy(owned, rules)
	return &RuleSet{rules: owned}
}

// Empty returns a rule set that never reports anything
func Empty() *RuleSet {
	return &RuleSet{}
}

// Compile builds a rule set from specs under policy.
// Any invalid spec fails the whole set.
func Compile(specs []Spec, policy Policy) (*RuleSet, error) {
	compiled := make([]*Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := NewRule(spec, policy)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rule)
	}
	return &RuleSet{rules: compiled}, nil
}

// Concat joins rule sets, keeping each set's order and the order of the arguments
func Concat(sets ...*RuleSet) *RuleSet {
	total := 0
	for _, s := range sets {
		if s != nil {
			total += len(s.rules)
		}
	}

	joined := make([]*Rule, 0, total)
	for _, s := range sets {
		if s != nil {
			joined = append(joined, s.rules...)
		}
	}
	return &RuleSet{rules: joined}
}

// FindViolation returns the first rule in declaration order that matches the call
func (s *RuleSet) FindViolation(name string, argCount int) (*Rule, bool) {
	if s == nil {
		return nil, false
	}

	argCountStr := strconv.Itoa(argCount)
	for _, rule := range s.rules {
		if rule.Matches(name, argCountStr) {
			return rule, true
		}
	}
	return nil, false
}

// Rules returns a copy of the rules in declaration order
func (s *RuleSet) Rules() []*Rule {
	if s == nil {
		return nil
	}
	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
