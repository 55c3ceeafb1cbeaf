package gocalls

import (
	"fmt"
	"go/ast"
	"sync"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

const doc = `forbiddencalls reports calls whose name and argument count match a configured rule

Each call is matched by its bare name (the selector for pkg.F and x.M) and its
argument count against an ordered rule list; the first matching rule is reported.
Type conversions are not calls and are never reported.`

// AnalyzerName is the analyzer name used in diagnostics and flags
const AnalyzerName = "forbiddencalls"

// NewAnalyzer returns an Analyzer over a fixed rule set
func NewAnalyzer(ruleSet *rules.RuleSet, options callsite.Options) *analysis.Analyzer {
	checker := NewChecker(ruleSet, options)
	return &analysis.Analyzer{
		Name:     AnalyzerName,
		Doc:      doc,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
		Run: func(pass *analysis.Pass) (any, error) {
			return nil, checker.run(pass)
		},
	}
}

// RuleLoader resolves the rule set named by the -config flag.
// An empty path asks for the default configuration discovery.
type RuleLoader func(configPath string) (*rules.RuleSet, callsite.Options, error)

// NewConfigurableAnalyzer returns an Analyzer whose rules come from the file
// given by its -config flag. The rules are loaded once, on first use.
func NewConfigurableAnalyzer(load RuleLoader) *analysis.Analyzer {
	var (
		configPath string
		once       sync.Once
		checker    *Checker
		loadErr    error
	)

	a := &analysis.Analyzer{
		Name:     AnalyzerName,
		Doc:      doc,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
	}
	a.Flags.StringVar(&configPath, "config", "", "configuration file holding the forbidden_calls section")

	a.Run = func(pass *analysis.Pass) (any, error) {
		once.Do(func() {
			ruleSet, options, err := load(configPath)
			if err != nil {
				loadErr = fmt.Errorf("load forbidden call rules: %w", err)
				return
			}
			checker = NewChecker(ruleSet, options)
		})
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, checker.run(pass)
	}
	return a
}

func (c *Checker) run(pass *analysis.Pass) error {
	in := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	isConversion := func(call *ast.CallExpr) bool {
		if pass.TypesInfo == nil {
			return false
		}
		tv, ok := pass.TypesInfo.Types[call.Fun]
		return ok && tv.IsType()
	}

	isInstance := (*fileScope)(nil).instantiates
	if pass.TypesInfo != nil {
		isInstance = typedInstances(pass.TypesInfo)
	}

	for _, f := range c.inspect(pass.Fset, in, isConversion, isInstance) {
		pass.Reportf(f.Pos, "%s", f.Message())
	}
	return nil
}
