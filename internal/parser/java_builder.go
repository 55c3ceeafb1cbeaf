package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// JavaASTBuilder builds our internal AST from a Java tree-sitter CST
type JavaASTBuilder struct {
	treeSource
}

// NewJavaASTBuilder creates a new Java AST builder
func NewJavaASTBuilder(filename string, source []byte) *JavaASTBuilder {
	return &JavaASTBuilder{
		treeSource: treeSource{filename: filename, source: source},
	}
}

// Build builds the AST from a tree-sitter node
func (b *JavaASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

func (b *JavaASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "program":
		return b.buildContainer(tsNode, NodeProgram)
	case "block", "class_body", "interface_body", "enum_body_declarations", "constructor_body":
		return b.buildContainer(tsNode, NodeBlock)
	case "class_declaration":
		return b.buildTypeDeclaration(tsNode, NodeClass)
	case "interface_declaration", "annotation_type_declaration":
		return b.buildTypeDeclaration(tsNode, NodeInterface)
	case "enum_declaration":
		return b.buildTypeDeclaration(tsNode, NodeEnum)
	case "record_declaration":
		return b.buildTypeDeclaration(tsNode, NodeRecord)
	case "method_declaration":
		return b.buildCallable(tsNode, NodeMethodDefinition)
	case "constructor_declaration", "compact_constructor_declaration":
		return b.buildCallable(tsNode, NodeConstructor)
	case "lambda_expression":
		return b.buildCallable(tsNode, NodeLambda)
	case "method_invocation":
		return b.buildMethodInvocation(tsNode)
	case "object_creation_expression":
		return b.buildObjectCreation(tsNode)
	case "array_creation_expression":
		return b.buildArrayCreation(tsNode)
	case "method_reference":
		return b.buildMethodReference(tsNode)
	case "identifier", "type_identifier":
		return b.buildIdentifier(tsNode)
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal",
		"string_literal", "character_literal", "true", "false", "null_literal":
		return b.buildLiteral(tsNode)
	default:
		return b.buildContainer(tsNode, NodeType(tsNode.Type()))
	}
}

func (b *JavaASTBuilder) buildContainer(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	b.eachChild(tsNode, func(_ string, child *sitter.Node) {
		node.AddChild(b.buildNode(child))
	})
	return node
}

// buildTypeDeclaration builds a class, interface, enum or record declaration
func (b *JavaASTBuilder) buildTypeDeclaration(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "name":
			node.Name = b.content(child)
		case "body":
			node.Body = b.adoptAll(node, b.buildMembers(child))
		case "type_parameters":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildMembers flattens a declaration body into its members
func (b *JavaASTBuilder) buildMembers(tsNode *sitter.Node) []*Node {
	switch tsNode.Type() {
	case "block", "class_body", "interface_body", "enum_body", "annotation_type_body", "constructor_body":
		return b.buildList(tsNode, b.buildNode)
	}
	if node := b.buildNode(tsNode); node != nil {
		return []*Node{node}
	}
	return nil
}

// buildCallable builds a method, constructor or lambda
func (b *JavaASTBuilder) buildCallable(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "name":
			node.Name = b.content(child)
		case "parameters":
			if child.Type() == "identifier" {
				node.Params = b.adoptAll(node, []*Node{b.buildNode(child)})
			} else {
				node.Params = b.adoptAll(node, b.buildList(child, b.buildNode))
			}
		case "body":
			node.Body = b.adoptAll(node, b.buildMembers(child))
		case "type", "type_parameters", "dimensions":
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildMethodInvocation builds `name(args)` or `object.name(args)`
func (b *JavaASTBuilder) buildMethodInvocation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMethodInvocation)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch field {
		case "object":
			node.Object = b.adopt(node, b.buildNode(child))
			node.Qualified = true
		case "name":
			node.Callee = b.adopt(node, b.buildIdentifier(child))
			node.Name = node.Callee.Name
		case "arguments":
			node.HasArgumentList = true
			node.Arguments = b.adoptAll(node, b.buildList(child, b.buildNode))
		case "type_arguments":
		default:
			// `Outer.super.name()` carries a super keyword between object and name
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildObjectCreation builds `new T(args)`, `new T(args) { ... }` and `outer.new T(args)`.
// The call name is the simple name of the created type.
func (b *JavaASTBuilder) buildObjectCreation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeObjectCreation)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		switch {
		case field == "type":
			callee := b.buildIdentifier(child)
			callee.Name = b.simpleTypeName(child)
			node.Callee = b.adopt(node, callee)
			node.Name = callee.Name
		case field == "arguments":
			node.HasArgumentList = true
			node.Arguments = b.adoptAll(node, b.buildList(child, b.buildNode))
		case field == "type_arguments":
		case child.Type() == "class_body":
			node.HasClassBody = true
			node.Body = b.adoptAll(node, b.buildMembers(child))
		case node.Callee == nil && field == "":
			// qualifying instance of an inner class creation, or an annotation on the type
			if child.Type() == "marker_annotation" || child.Type() == "annotation" {
				node.AddChild(b.buildNode(child))
				return
			}
			node.Object = b.adopt(node, b.buildNode(child))
			node.Qualified = true
		default:
			node.AddChild(b.buildNode(child))
		}
	})

	return node
}

// buildArrayCreation builds `new T[n]` and `new T[] {...}`. It has no argument list.
func (b *JavaASTBuilder) buildArrayCreation(tsNode *sitter.Node) *Node {
	node := NewNode(NodeArrayCreation)
	node.Location = b.getLocation(tsNode)

	b.eachChild(tsNode, func(field string, child *sitter.Node) {
		if field == "type" {
			node.Name = b.simpleTypeName(child)
			return
		}
		node.AddChild(b.buildNode(child))
	})

	return node
}

// buildMethodReference builds `T::name` and `T::new`
func (b *JavaASTBuilder) buildMethodReference(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMethodReference)
	node.Location = b.getLocation(tsNode)

	count := int(tsNode.ChildCount())
	for i := 0; i < count; i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) {
			continue
		}

		switch {
		case i == 0:
			node.Object = b.adopt(node, b.buildNode(child))
			node.Qualified = true
		case child.Type() == "new":
			node.ConstructorRef = true
		case child.Type() == "identifier":
			node.Name = b.content(child)
		}
	}

	return node
}

// simpleTypeName strips qualifiers and type arguments: java.util.List<String> -> List
func (b *JavaASTBuilder) simpleTypeName(tsNode *sitter.Node) string {
	switch tsNode.Type() {
	case "type_identifier", "identifier":
		return b.content(tsNode)
	case "scoped_type_identifier":
		var last string
		b.eachChild(tsNode, func(_ string, child *sitter.Node) {
			if child.Type() == "type_identifier" {
				last = b.content(child)
			}
		})
		return last
	case "generic_type":
		if inner := tsNode.NamedChild(0); inner != nil {
			return b.simpleTypeName(inner)
		}
		return ""
	default:
		// primitive types such as int
		return b.content(tsNode)
	}
}

func (b *JavaASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIdentifier)
	node.Location = b.getLocation(tsNode)
	node.Name = b.content(tsNode)
	return node
}

func (b *JavaASTBuilder) buildLiteral(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLiteral)
	node.Location = b.getLocation(tsNode)
	node.Raw = b.content(tsNode)
	return node
}
