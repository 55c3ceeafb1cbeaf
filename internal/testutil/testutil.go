// Package testutil provides helper functions for testing forbidscan components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/forbidscan/internal/parser"
	"github.com/ludo-technologies/forbidscan/internal/rules"
)

// CreateTestAST creates a test AST from source code, picking the grammar from filename
func CreateTestAST(t *testing.T, filename, source string) *parser.Node {
	t.Helper()
	ast, err := parser.ParseForLanguage(filename, []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return ast
}

// DeclarativeRules compiles declarative rule blocks, failing the test on error
func DeclarativeRules(t *testing.T, blocks ...map[string]any) *rules.RuleSet {
	t.Helper()
	set, err := rules.LoadDeclarative(blocks)
	if err != nil {
		t.Fatalf("Failed to compile rules: %v", err)
	}
	return set
}

// Rule returns a declarative rule block
func Rule(name, methodName, argumentCount, reason string) map[string]any {
	block := map[string]any{
		"name":        name,
		"method_name": methodName,
		"reason":      reason,
	}
	if argumentCount != "" {
		block["argument_count"] = argumentCount
	}
	return block
}

// WriteFiles writes files (relative path -> content) under dir and returns dir
func WriteFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}
