// Package rules holds the forbidden-call rule model: validated, compiled
// matchers over a call's bare name and argument count, and the ordered
// first-match lookup used to decide whether a call site is a violation.
package rules

import (
	"fmt"
	"regexp"
)

// Form identifies which configuration shape produced a rule
type Form string

const (
	// FormDeclarative is the nested named-rule form in the main config
	FormDeclarative Form = "declarative"

	// FormExternalFile is the flat list loaded from a side file
	FormExternalFile Form = "file"
)

// Field is a raw configuration value with explicit presence
type Field struct {
	Value   string
	Present bool
}

// Present returns a field that was supplied with the given value
func Present(value string) Field {
	return Field{Value: value, Present: true}
}

// Absent is a field that was not supplied at all
var Absent = Field{}

// IsEmpty reports whether the field is missing or carries an empty value
func (f Field) IsEmpty() bool {
	return !f.Present || f.Value == ""
}

// Spec is one uncompiled rule specification as produced by a loader
type Spec struct {
	Name          Field
	MethodName    Field
	ArgumentCount Field
	Reason        Field
}

// Policy describes which fields a loader requires
type Policy struct {
	Form          Form
	RequireName   bool
	RequireReason bool
}

var (
	// DeclarativePolicy requires a rule name and a reason
	DeclarativePolicy = Policy{Form: FormDeclarative, RequireName: true, RequireReason: true}

	// ExternalFilePolicy has neither a rule name nor a reason field
	ExternalFilePolicy = Policy{Form: FormExternalFile}
)

// Rule is an immutable compiled forbidden-call matcher.
// A *Rule can only be obtained through NewRule, so every instance is valid.
type Rule struct {
	name string
	form Form

	namePattern     string
	nameRegex       *regexp.Regexp
	argCountPattern string
	argCountRegex   *regexp.Regexp // nil: any argument count

	reason    string
	hasReason bool
}

// NewRule validates spec against policy and compiles it.
// Checks run in a fixed order: name, method name, reason, argument count.
func NewRule(spec Spec, policy Policy) (*Rule, error) {
	label := spec.Name.Value

	if policy.RequireName && spec.Name.IsEmpty() {
		return nil, fieldError("", FieldName, "rule name must not be empty", nil)
	}

	if spec.MethodName.IsEmpty() {
		return nil, fieldError(label, FieldMethodName, "method name must not be empty", nil)
	}
	nameRegex, err := compileWhole(spec.MethodName.Value)
	if err != nil {
		return nil, fieldError(label, FieldMethodName,
			fmt.Sprintf("invalid regex for method name %q", spec.MethodName.Value), err)
	}

	if policy.RequireReason && spec.Reason.IsEmpty() {
		return nil, fieldError(label, FieldReason, "reason must not be empty", nil)
	}

	rule := &Rule{
		name:        label,
		form:        policy.Form,
		namePattern: spec.MethodName.Value,
		nameRegex:   nameRegex,
	}

	if !spec.ArgumentCount.IsEmpty() {
		argCountRegex, err := compileWhole(spec.ArgumentCount.Value)
		if err != nil {
			return nil, fieldError(label, FieldArgumentCount,
				fmt.Sprintf("invalid regex for argument count %q", spec.ArgumentCount.Value), err)
		}
		rule.argCountPattern = spec.ArgumentCount.Value
		rule.argCountRegex = argCountRegex
	}

	if spec.Reason.Present && spec.Reason.Value != "" {
		rule.reason = spec.Reason.Value
		rule.hasReason = true
	}

	return rule, nil
}

// compileWhole compiles pattern so that it only matches an entire input string
func compileWhole(pattern string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, err
	}
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// Name returns the rule label
func (r *Rule) Name() string {
	return r.name
}

// Form returns the configuration shape the rule came from
func (r *Rule) Form() Form {
	return r.form
}

// NamePattern returns the method-name pattern as configured
func (r *Rule) NamePattern() string {
	return r.namePattern
}

// ArgCountPattern returns the argument-count pattern and whether one is configured
func (r *Rule) ArgCountPattern() (string, bool) {
	return r.argCountPattern, r.argCountRegex != nil
}

// HasArgCountConstraint reports whether the rule restricts the argument count
func (r *Rule) HasArgCountConstraint() bool {
	return r.argCountRegex != nil
}

// Reason returns the human-readable reason and whether one is set
func (r *Rule) Reason() (string, bool) {
	return r.reason, r.hasReason
}

// Matches reports whether the whole name matches the name pattern and, when
// the rule has a count constraint, the whole argCount matches it too
func (r *Rule) Matches(name, argCount string) bool {
	if !r.nameRegex.MatchString(name) {
		return false
	}
	return r.argCountRegex == nil || r.argCountRegex.MatchString(argCount)
}

// String returns a compact description used by rule listings and debug logs
func (r *Rule) String() string {
	args := "any"
	if r.argCountRegex != nil {
		args = r.argCountPattern
	}
	return fmt.Sprintf("%s: method=%s args=%s", r.name, r.namePattern, args)
}
