package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/diagnostic"
	"github.com/ludo-technologies/forbidscan/internal/parser"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

// ForbiddenCall is one call site that violates a rule
type ForbiddenCall struct {
	Rule        *rules.Rule
	Identity    callsite.Identity
	Kind        callsite.Kind
	Location    parser.Location
	Scope       string // enclosing type and function, dotted
	MessageKey  string
	MessageArgs []any
}

// Line returns the 1-based line of the call
func (fc *ForbiddenCall) Line() int { return fc.Location.StartLine }

// Column returns the 1-based column of the call
func (fc *ForbiddenCall) Column() int { return fc.Location.StartCol + 1 }

// Message renders the diagnostic message
func (fc *ForbiddenCall) Message() string {
	return diagnostic.Format(fc.MessageKey, fc.MessageArgs)
}

func (fc *ForbiddenCall) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", fc.Location.File, fc.Line(), fc.Column(), fc.Message())
}

// ForbiddenCallChecker reports call sites matched by a rule set.
// It holds no per-file state and may be shared across goroutines.
type ForbiddenCallChecker struct {
	rules   *rules.RuleSet
	options callsite.Options
}

// NewForbiddenCallChecker creates a checker over a compiled rule set
func NewForbiddenCallChecker(ruleSet *rules.RuleSet, options callsite.Options) *ForbiddenCallChecker {
	if ruleSet == nil {
		ruleSet = rules.Empty()
	}
	return &ForbiddenCallChecker{
		rules:   ruleSet,
		options: options,
	}
}

// CheckNode evaluates a single node. Nodes that are not call sites, or that
// no rule matches, return false.
func (c *ForbiddenCallChecker) CheckNode(node *parser.Node) (*ForbiddenCall, bool) {
	if node == nil || !node.IsCall() {
		return nil, false
	}

	desc := DescribeNode(node)
	id, ok := callsite.Extract(desc, c.options)
	if !ok {
		return nil, false
	}

	rule, ok := c.rules.FindViolation(id.Name, id.ArgCount)
	if !ok {
		return nil, false
	}

	key, args := diagnostic.Assemble(rule, id)
	return &ForbiddenCall{
		Rule:        rule,
		Identity:    id,
		Kind:        desc.Kind(),
		Location:    node.Location,
		Scope:       node.EnclosingScope(),
		MessageKey:  key,
		MessageArgs: args,
	}, true
}

// Check walks the whole tree once and returns every violation in traversal order
func (c *ForbiddenCallChecker) Check(root *parser.Node) []*ForbiddenCall {
	var found []*ForbiddenCall
	if c.rules.Len() == 0 {
		return found
	}

	root.Walk(func(node *parser.Node) bool {
		if fc, ok := c.CheckNode(node); ok {
			found = append(found, fc)
		}
		return true
	})
	return found
}

// Report checks root and sends one diagnostic per violating node to sink.
// It returns the number of diagnostics reported.
func (c *ForbiddenCallChecker) Report(root *parser.Node, sink diagnostic.Sink) int {
	found := c.Check(root)
	for _, fc := range found {
		sink.Report(fc.Line(), fc.Column(), fc.MessageKey, fc.MessageArgs...)
	}
	return len(found)
}
