package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// treeSource holds the helpers every grammar-specific builder shares
type treeSource struct {
	filename string
	source   []byte
}

// ASTBuilder builds our internal AST from a JavaScript or TypeScript tree-sitter CST
type ASTBuilder struct {
	treeSource
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		treeSource: treeSource{filename: filename, source: source},
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildContainer(tsNode, NodeProgram)
	case "statement_block", "class_body":
		return b.buildContainer(tsNode, NodeBlock)
	case "function_declaration", "function":
		return b.buildFunction(tsNode, NodeFunction)
	case "function_expression":
		return b.buildFunction(tsNode, NodeFunctionExpression)
	case "generator_function_declaration", "generator_function":
		return b.buildFunction(tsNode, NodeGeneratorFunction)
	case "arrow_function":
		return b.buildFunction(tsNode, NodeArrowFunction)
	case "method_definition":
		return b.buildFunction(tsNode, NodeMethodDefinition)
	case "class_declaration", "class", "abstract_class_declaration":
		return b.buildTypeDeclaration(tsNode, NodeClass)
	case "interface_declaration":
		return b.buildTypeDeclaration(tsNode, NodeInterface)
	case "enum_declaration":
		return b.buildTypeDeclaration(tsNode, NodeEnum)
	case "call_expression":
		return b.buildCallExpression(tsNode)
	case "new_expression":
		return b.buildNewExpression(tsNode)
	case "member_expression":
		return b.buildMemberExpression(tsNode)
	case "identifier", "property_identifier", "private_property_identifier",
		"shorthand_property_identifier", "type_identifier":
		return b.buildIdentifier(tsNode)
	case "string", "number", "true", "false", "null", "regex":
		return b.buildLiteral(tsNode)
	default:
		return b.buildContainer(tsNode, NodeType(tsNode.Type()))
	}
}

// buildContainer builds a node whose named children all become Children
func (b *ASTBuilder) buildContainer(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	b.eachChild(tsNode, func(_ string, child *sitter.Node) {
		node.AddChild(b.buildNode(child))
	})
	return node
}

// buildFunction builds any function-like node. Children other than the name,
// parameters and body (decorators, heritage, default values) are kept as
// Children so calls inside them are still visited.
func (b *ASTBuilder) buildFunction(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "name":
			node.Name = strings.TrimPrefix(b.content(child), "#")
		case "parameters":
			node.Params = b.adoptAll(node, b.buildList(child, b.buildNode))
		case "parameter":
			node.Params = b.adoptAll(node, []*Node{b.buildNode(child)})
		case "body":
			node.Body = b.adoptAll(node, b.buildBody(child))
		case "return_type", "type_parameters":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	if node.Name == "" {
		node.Name = b.bindingName(tsNode)
	}
	return node
}

// buildBody flattens a statement block; an expression body becomes a single statement
func (b *ASTBuilder) buildBody(tsNode *sitter.Node) []*Node {
	if tsNode.Type() == "statement_block" || tsNode.Type() == "class_body" {
		return b.buildList(tsNode, b.buildNode)
	}
	if node := b.buildNode(tsNode); node != nil {
		return []*Node{node}
	}
	return nil
}

// bindingName names an anonymous function after the variable or property it is assigned to
func (b *ASTBuilder) bindingName(tsNode *sitter.Node) string {
	parent := tsNode.Parent()
	if parent == nil {
		return ""
	}

	var nameNode *sitter.Node
	switch parent.Type() {
	case "variable_declarator":
		nameNode = parent.ChildByFieldName("name")
	case "pair":
		nameNode = parent.ChildByFieldName("key")
	case "public_field_definition", "field_definition":
		nameNode = parent.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = parent.ChildByFieldName("property")
		}
	}
	if nameNode == nil || nameNode.Type() == "object_pattern" || nameNode.Type() == "array_pattern" {
		return ""
	}
	return strings.Trim(b.content(nameNode), `"'`)
}

// buildTypeDeclaration builds a class, interface or enum declaration
func (b *ASTBuilder) buildTypeDeclaration(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "name":
			node.Name = b.content(child)
		case "body":
			node.Body = b.adoptAll(node, b.buildBody(child))
		case "type_parameters":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	if node.Name == "" {
		node.Name = b.bindingName(tsNode)
	}
	return node
}

// buildCallExpression builds a call expression node.
// A tagged template passes a template string instead of an argument list.
func (b *ASTBuilder) buildCallExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCallExpression)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "function":
			node.Callee = b.adopt(node, b.buildNode(child))
			node.Name, node.Qualified = b.calleeName(child)
		case "arguments":
			if child.Type() == "arguments" {
				node.HasArgumentList = true
				node.Arguments = b.adoptAll(node, b.buildList(child, b.buildNode))
			} else {
				node.AddChild(b.buildNode(child))
			}
		case "type_arguments":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildNewExpression builds a new expression node.
// `new Foo` without parentheses still calls the constructor with no arguments.
func (b *ASTBuilder) buildNewExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeNewExpression)
	node.Location = b.getLocation(tsNode)
	node.HasArgumentList = true

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "constructor":
			node.Callee = b.adopt(node, b.buildNode(child))
			node.Name, node.Qualified = b.calleeName(child)
		case "arguments":
			node.Arguments = b.adoptAll(node, b.buildList(child, b.buildNode))
		case "type_arguments":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// calleeName returns the bare name of a callee and whether it is qualified
func (b *ASTBuilder) calleeName(tsNode *sitter.Node) (string, bool) {
	switch tsNode.Type() {
	case "identifier":
		return b.content(tsNode), false
	case "member_expression":
		if prop := tsNode.ChildByFieldName("property"); prop != nil {
			return strings.TrimPrefix(b.content(prop), "#"), true
		}
	case "non_null_expression":
		if inner := tsNode.NamedChild(0); inner != nil {
			return b.calleeName(inner)
		}
	}
	return "", false
}

// buildMemberExpression builds a member expression node
func (b *ASTBuilder) buildMemberExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMemberExpression)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "object":
			node.Object = b.adopt(node, b.buildNode(child))
		case "property":
			node.Property = b.adopt(node, b.buildNode(child))
			node.Name = strings.TrimPrefix(node.Property.Name, "#")
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildIdentifier builds an identifier node
func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIdentifier)
	node.Location = b.getLocation(tsNode)
	node.Name = b.content(tsNode)
	return node
}

// buildLiteral builds a literal node
func (b *ASTBuilder) buildLiteral(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLiteral)
	node.Location = b.getLocation(tsNode)
	node.Raw = b.content(tsNode)
	return node
}

// Helper methods

// eachChild calls fn for every named, non-trivia child together with its field name
func (s *treeSource) eachChild(tsNode *sitter.Node, fn func(field string, child *sitter.Node)) {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() || s.isTrivia(child) {
			continue
		}
		fn(tsNode.FieldNameForChild(i), child)
	}
}

// buildList builds the named, non-trivia children of a list node such as
// arguments or formal_parameters
func (s *treeSource) buildList(tsNode *sitter.Node, build func(*sitter.Node) *Node) []*Node {
	var nodes []*Node
	s.eachChild(tsNode, func(_ string, child *sitter.Node) {
		if node := build(child); node != nil {
			nodes = append(nodes, node)
		}
	})
	return nodes
}

// adopt sets the parent of a node stored outside Children
func (s *treeSource) adopt(parent, child *Node) *Node {
	if child != nil {
		child.Parent = parent
	}
	return child
}

func (s *treeSource) adoptAll(parent *Node, children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, child := range children {
		if child != nil {
			out = append(out, s.adopt(parent, child))
		}
	}
	return out
}

// content returns the source text of a tree-sitter node
func (s *treeSource) content(tsNode *sitter.Node) string {
	return tsNode.Content(s.source)
}

// getLocation extracts location information from a tree-sitter node
func (s *treeSource) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      s.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

// isTrivia checks if a node is trivia (whitespace, comments, etc.)
func (s *treeSource) isTrivia(tsNode *sitter.Node) bool {
	nodeType := tsNode.Type()
	return nodeType == "comment" ||
		nodeType == "line_comment" ||
		nodeType == "block_comment" ||
		nodeType == ""
}
