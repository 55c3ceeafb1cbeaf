// Package gocalls applies forbidden-call rules to Go source files, either
// directly over go/ast for the CLI or as a go/analysis Analyzer.
package gocalls

import (
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/diagnostic"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

// Finding is one Go call that violates a rule
type Finding struct {
	Rule        *rules.Rule
	Identity    callsite.Identity
	Kind        callsite.Kind
	Pos         token.Pos
	Position    token.Position
	Scope       string
	MessageKey  string
	MessageArgs []any
}

// Message renders the diagnostic message
func (f Finding) Message() string {
	return diagnostic.Format(f.MessageKey, f.MessageArgs)
}

// Checker matches Go call expressions against a rule set
type Checker struct {
	rules   *rules.RuleSet
	options callsite.Options
}

// NewChecker creates a checker
func NewChecker(ruleSet *rules.RuleSet, options callsite.Options) *Checker {
	if ruleSet == nil {
		ruleSet = rules.Empty()
	}
	return &Checker{rules: ruleSet, options: options}
}

// CheckSource parses one Go file and checks it. Without type information a
// conversion such as string(b) is indistinguishable from a call and is treated as one.
func (c *Checker) CheckSource(filename string, src []byte) ([]Finding, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	return c.CheckFile(fset, file), nil
}

// CheckFile checks a parsed Go file
func (c *Checker) CheckFile(fset *token.FileSet, file *ast.File) []Finding {
	return c.inspect(fset, inspector.New([]*ast.File{file}), nil, newFileScope(file).instantiates)
}

// inspect visits every call expression once. skip, when set, excludes calls
// that are not real calls (type conversions); isInstance tells explicit
// instantiations from indexed function values in callee position.
func (c *Checker) inspect(fset *token.FileSet, in *inspector.Inspector, skip func(*ast.CallExpr) bool, isInstance instantiates) []Finding {
	var findings []Finding
	if c.rules.Len() == 0 {
		return findings
	}

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.CallExpr)(nil),
	}
	in.WithStack(nodeFilter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if skip != nil && skip(call) {
			return true
		}

		desc := describe(call, isInstance)
		id, ok := callsite.Extract(desc, c.options)
		if !ok {
			return true
		}
		rule, ok := c.rules.FindViolation(id.Name, id.ArgCount)
		if !ok {
			return true
		}

		key, args := diagnostic.Assemble(rule, id)
		findings = append(findings, Finding{
			Rule:        rule,
			Identity:    id,
			Kind:        desc.Kind(),
			Pos:         call.Pos(),
			Position:    fset.Position(call.Pos()),
			Scope:       enclosingFunc(stack),
			MessageKey:  key,
			MessageArgs: args,
		})
		return true
	})
	return findings
}

// enclosingFunc names the innermost function declaration on the stack, as Recv.Name for methods
func enclosingFunc(stack []ast.Node) string {
	for i := len(stack) - 1; i >= 0; i-- {
		fn, ok := stack[i].(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fn.Recv == nil || len(fn.Recv.List) == 0 {
			return fn.Name.Name
		}
		if recv := receiverName(fn.Recv.List[0].Type); recv != "" {
			return recv + "." + fn.Name.Name
		}
		return fn.Name.Name
	}
	return ""
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}
