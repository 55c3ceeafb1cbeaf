package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a supported source language
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
)

var extensionLanguages = map[string]Language{
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".mts":  LanguageTypeScript,
	".cts":  LanguageTypeScript,
	".tsx":  LanguageTSX,
	".java": LanguageJava,
	".go":   LanguageGo,
}

// LanguageForFile returns the language of a file judged by its extension
func LanguageForFile(filename string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(filename))]
	return lang, ok
}

// SupportedExtensions returns every file extension with a known language
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// treeBuilder converts a tree-sitter root into our AST
type treeBuilder interface {
	Build(tsNode *sitter.Node) *Node
}

// Parser wraps a tree-sitter parser for one language
type Parser struct {
	parser   *sitter.Parser
	language Language
}

func newParser(lang Language, grammar *sitter.Language) *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	return &Parser{
		parser:   parser,
		language: lang,
	}
}

// NewParser creates a new JavaScript parser
func NewParser() *Parser {
	return newParser(LanguageJavaScript, javascript.GetLanguage())
}

// NewTypeScriptParser creates a new TypeScript parser
func NewTypeScriptParser() *Parser {
	return newParser(LanguageTypeScript, typescript.GetLanguage())
}

// NewTSXParser creates a new TSX parser
func NewTSXParser() *Parser {
	return newParser(LanguageTSX, tsx.GetLanguage())
}

// NewJavaParser creates a new Java parser
func NewJavaParser() *Parser {
	return newParser(LanguageJava, java.GetLanguage())
}

// NewParserForLanguage creates a parser for lang.
// Go sources are handled by the gocalls package, not by tree-sitter.
func NewParserForLanguage(lang Language) (*Parser, error) {
	switch lang {
	case LanguageJavaScript:
		return NewParser(), nil
	case LanguageTypeScript:
		return NewTypeScriptParser(), nil
	case LanguageTSX:
		return NewTSXParser(), nil
	case LanguageJava:
		return NewJavaParser(), nil
	default:
		return nil, fmt.Errorf("no tree-sitter grammar for language %q", lang)
	}
}

// ParseFile parses a source file
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	return p.ParseFileContext(context.Background(), filename, source)
}

// ParseFileContext parses a source file, stopping early when ctx is cancelled
func (p *Parser) ParseFileContext(ctx context.Context, filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	var builder treeBuilder
	if p.language == LanguageJava {
		builder = NewJavaASTBuilder(filename, source)
	} else {
		builder = NewASTBuilder(filename, source)
	}
	return builder.Build(rootNode), nil
}

// Parse parses source code
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile("<input>", source)
}

// ParseString parses source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// Language returns the language this parser is configured for
func (p *Parser) Language() Language {
	return p.language
}

// IsTypeScript returns true if this parser is configured for TypeScript
func (p *Parser) IsTypeScript() bool {
	return p.language == LanguageTypeScript || p.language == LanguageTSX
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForLanguage selects the parser from the file extension and parses source
func ParseForLanguage(filename string, source []byte) (*Node, error) {
	return ParseForLanguageContext(context.Background(), filename, source)
}

// ParseForLanguageContext is ParseForLanguage with cancellation
func ParseForLanguageContext(ctx context.Context, filename string, source []byte) (*Node, error) {
	lang, ok := LanguageForFile(filename)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}

	parser, err := NewParserForLanguage(lang)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	return parser.ParseFileContext(ctx, filename, source)
}
