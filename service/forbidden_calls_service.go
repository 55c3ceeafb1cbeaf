package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ludo-technologies/forbidscan/domain"
	"github.com/ludo-technologies/forbidscan/internal/analyzer"
	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/gocalls"
	"github.com/ludo-technologies/forbidscan/internal/parser"
	"github.com/ludo-technologies/forbidscan/internal/rules"
	"github.com/ludo-technologies/forbidscan/internal/version"
)

// ForbiddenCallsServiceImpl implements the ForbiddenCallsService interface
type ForbiddenCallsServiceImpl struct {
	progress domain.ProgressManager
	logger   zerolog.Logger
}

// NewForbiddenCallsService creates a new forbidden calls service
func NewForbiddenCallsService() *ForbiddenCallsServiceImpl {
	return &ForbiddenCallsServiceImpl{
		logger: zerolog.Nop(),
	}
}

// NewForbiddenCallsServiceWithProgress creates a service with progress reporting
func NewForbiddenCallsServiceWithProgress(pm domain.ProgressManager) *ForbiddenCallsServiceImpl {
	s := NewForbiddenCallsService()
	s.progress = pm
	return s
}

// WithLogger sets the service logger
func (s *ForbiddenCallsServiceImpl) WithLogger(logger zerolog.Logger) *ForbiddenCallsServiceImpl {
	s.logger = logger
	return s
}

// Analyze compiles the request's rules and checks every file in req.Paths.
// An invalid rule fails the call before any file is read. A file that cannot
// be read or parsed is reported in the response errors and does not stop the run.
func (s *ForbiddenCallsServiceImpl) Analyze(ctx context.Context, req domain.ForbiddenCallsRequest) (*domain.ForbiddenCallsResponse, error) {
	ruleSet, err := CompileRuleSet(req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("rules", ruleSet.Len()).
		Bool("check_constructors", req.CheckConstructors).
		Msg("compiled forbidden call rules")

	if ruleSet.Len() == 0 {
		s.logger.Warn().Msg("no forbidden call rules configured")
	}

	return s.analyzeWithRules(ctx, req, ruleSet)
}

// AnalyzeFile checks a single source file
func (s *ForbiddenCallsServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.ForbiddenCallsRequest) (*domain.ForbiddenCallsResponse, error) {
	req.Paths = []string{filePath}
	return s.Analyze(ctx, req)
}

func (s *ForbiddenCallsServiceImpl) analyzeWithRules(ctx context.Context, req domain.ForbiddenCallsRequest, ruleSet *rules.RuleSet) (*domain.ForbiddenCallsResponse, error) {
	checker := newFileChecker(ruleSet, CallSiteOptions(req))

	tasks := make([]*fileTask, 0, len(req.Paths))
	executable := make([]domain.ExecutableTask, 0, len(req.Paths))
	for _, path := range req.Paths {
		t := &fileTask{path: path, checker: checker}
		tasks = append(tasks, t)
		executable = append(executable, t)
	}

	executor := NewParallelExecutorWithProgress(PerformanceConfig(req), s.progress).
		WithLogger(s.logger).
		WithDescription("Checking files")

	execErr := executor.Execute(ctx, executable)
	if ctx.Err() != nil {
		return nil, fmt.Errorf("forbidden call analysis cancelled: %w", ctx.Err())
	}

	var fileErrors []string
	var taskErrors []TaskError
	var aggErr *AggregatedError
	if errors.As(execErr, &aggErr) {
		taskErrors = aggErr.Errors
		for _, taskErr := range taskErrors {
			s.logger.Warn().Str("file", taskErr.TaskName).Err(taskErr.Err).Msg("skipped file")
			fileErrors = append(fileErrors, taskErr.Error())
		}
	} else if execErr != nil {
		return nil, domain.NewAnalysisError("forbidden call analysis failed", execErr)
	}

	violations, filesAnalyzed, filesWithViolations := fileResults(tasks, taskErrors)

	sortViolations(violations, req.SortBy)
	if violations == nil {
		violations = []domain.Violation{}
	}

	return &domain.ForbiddenCallsResponse{
		Violations: violations,
		Summary: domain.ForbiddenCallsSummary{
			FilesAnalyzed:       filesAnalyzed,
			FilesWithViolations: filesWithViolations,
			TotalViolations:     len(violations),
			RulesLoaded:         ruleSet.Len(),
			ViolationsByRule:    countByRule(violations),
		},
		Errors:      fileErrors,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
		Config: map[string]any{
			"check_constructors": req.CheckConstructors,
			"rules_file":         req.RulesFile,
			"rules":              ruleSet.Len(),
		},
	}, nil
}

// fileTask checks one file; its results stay on the task
type fileTask struct {
	path       string
	checker    *fileChecker
	violations []domain.Violation
	err        error
}

func (t *fileTask) Name() string { return t.path }

func (t *fileTask) IsEnabled() bool { return true }

func (t *fileTask) Execute(ctx context.Context) (any, error) {
	t.violations, t.err = t.checker.checkFile(ctx, t.path)
	return t.violations, t.err
}

// fileResults gathers the outcome of the file tasks. A task named in
// taskErrors produced no result, even when the executor skipped it before it ran.
func fileResults(tasks []*fileTask, taskErrors []TaskError) (violations []domain.Violation, analyzed, withViolations int) {
	failed := make(map[string]bool, len(taskErrors))
	for _, taskErr := range taskErrors {
		failed[taskErr.TaskName] = true
	}

	for _, t := range tasks {
		if t.err != nil || failed[t.path] {
			continue
		}
		analyzed++
		if len(t.violations) > 0 {
			withViolations++
		}
		violations = append(violations, t.violations...)
	}
	return violations, analyzed, withViolations
}

// fileChecker dispatches a file to the checker for its language.
// It only reads the shared rule set and is safe for concurrent use.
type fileChecker struct {
	trees *analyzer.ForbiddenCallChecker
	goSrc *gocalls.Checker
}

func newFileChecker(ruleSet *rules.RuleSet, options callsite.Options) *fileChecker {
	return &fileChecker{
		trees: analyzer.NewForbiddenCallChecker(ruleSet, options),
		goSrc: gocalls.NewChecker(ruleSet, options),
	}
}

func (c *fileChecker) checkFile(ctx context.Context, path string) ([]domain.Violation, error) {
	lang, ok := parser.LanguageForFile(path)
	if !ok {
		return nil, domain.NewUnsupportedFormatError(path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	if lang == parser.LanguageGo {
		findings, err := c.goSrc.CheckSource(path, source)
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}
		violations := make([]domain.Violation, 0, len(findings))
		for _, f := range findings {
			violations = append(violations, newViolation(path, lang, f.Rule, f.Identity, f.Kind,
				f.Position.Line, f.Position.Column, f.Scope, f.MessageKey, f.Message()))
		}
		return violations, nil
	}

	ast, err := parser.ParseForLanguageContext(ctx, path, source)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	found := c.trees.Check(ast)
	violations := make([]domain.Violation, 0, len(found))
	for _, fc := range found {
		violations = append(violations, newViolation(path, lang, fc.Rule, fc.Identity, fc.Kind,
			fc.Line(), fc.Column(), fc.Scope, fc.MessageKey, fc.Message()))
	}
	return violations, nil
}

func newViolation(path string, lang parser.Language, rule *rules.Rule, id callsite.Identity, kind callsite.Kind,
	line, column int, scope, key, message string) domain.Violation {
	v := domain.Violation{
		FilePath:      path,
		Line:          line,
		Column:        column,
		Language:      string(lang),
		CallName:      id.Name,
		ArgumentCount: id.ArgCount,
		CallKind:      kind.String(),
		Scope:         scope,
		Rule:          rule.Name(),
		RuleForm:      string(rule.Form()),
		MethodPattern: rule.NamePattern(),
		MessageKey:    key,
		Message:       message,
	}
	if pattern, ok := rule.ArgCountPattern(); ok {
		v.ArgCountPattern = pattern
	}
	if reason, ok := rule.Reason(); ok {
		v.Reason = reason
	}
	return v
}

// sortViolations orders violations; location order is the default
func sortViolations(violations []domain.Violation, sortBy domain.SortCriteria) {
	byLocation := func(a, b domain.Violation) bool {
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	}

	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		switch sortBy {
		case domain.SortByRule:
			if a.Rule != b.Rule {
				return a.Rule < b.Rule
			}
		case domain.SortByName:
			if a.CallName != b.CallName {
				return a.CallName < b.CallName
			}
		}
		return byLocation(a, b)
	})
}

func countByRule(violations []domain.Violation) map[string]int {
	if len(violations) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.Rule]++
	}
	return counts
}
