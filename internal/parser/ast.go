package parser

import "fmt"

// NodeType represents the type of AST node.
// Node kinds that carry no call information keep their tree-sitter type name.
type NodeType string

// Shared node types
const (
	NodeProgram    NodeType = "Program"
	NodeIdentifier NodeType = "Identifier"
	NodeLiteral    NodeType = "Literal"
	NodeBlock      NodeType = "Block"
)

// Declaration node types used to name the enclosing scope of a call
const (
	NodeFunction           NodeType = "FunctionDeclaration"
	NodeFunctionExpression NodeType = "FunctionExpression"
	NodeArrowFunction      NodeType = "ArrowFunctionExpression"
	NodeGeneratorFunction  NodeType = "GeneratorFunctionDeclaration"
	NodeMethodDefinition   NodeType = "MethodDefinition"
	NodeConstructor        NodeType = "ConstructorDeclaration"
	NodeLambda             NodeType = "LambdaExpression"
	NodeClass              NodeType = "ClassDeclaration"
	NodeInterface          NodeType = "InterfaceDeclaration"
	NodeEnum               NodeType = "EnumDeclaration"
	NodeRecord             NodeType = "RecordDeclaration"
)

// JavaScript/TypeScript call-bearing node types
const (
	NodeCallExpression   NodeType = "CallExpression"
	NodeNewExpression    NodeType = "NewExpression"
	NodeMemberExpression NodeType = "MemberExpression"
)

// Java call-bearing node types
const (
	NodeMethodInvocation NodeType = "MethodInvocation"
	NodeObjectCreation   NodeType = "ObjectCreationExpression"
	NodeArrayCreation    NodeType = "ArrayCreationExpression"
	NodeMethodReference  NodeType = "MethodReference"
)

// Location represents the position of a node in the source code.
// Lines are 1-based, columns are 0-based byte offsets.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents an AST node.
// Each child is stored in exactly one slot so Walk reaches it exactly once.
type Node struct {
	Type     NodeType
	Children []*Node
	Location Location
	Parent   *Node

	// Name is the declared name for declarations, the identifier text for
	// identifiers and the bare callee name for call-bearing nodes
	Name string
	Raw  string // Raw literal text

	// Declaration fields
	Params []*Node
	Body   []*Node

	// Call fields
	Callee          *Node   // Function, constructor or referenced type
	Object          *Node   // Receiver or qualifier of a Java call or member expression
	Property        *Node   // Property in member expression
	Arguments       []*Node // Top-level arguments
	Qualified       bool    // Callee is reached through a receiver or qualifier
	HasArgumentList bool    // The source spells an argument list
	HasClassBody    bool    // Anonymous class body follows an object creation
	ConstructorRef  bool    // Method reference whose target is `new`
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{
		Type:      nodeType,
		Children:  []*Node{},
		Params:    []*Node{},
		Body:      []*Node{},
		Arguments: []*Node{},
	}
}

// AddChild adds a child node
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor function for each node
// If the visitor returns false, traversal of that branch is stopped
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	if !visitor(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(visitor)
	}
	for _, param := range n.Params {
		param.Walk(visitor)
	}
	if n.Object != nil {
		n.Object.Walk(visitor)
	}
	if n.Callee != nil {
		n.Callee.Walk(visitor)
	}
	if n.Property != nil {
		n.Property.Walk(visitor)
	}
	for _, arg := range n.Arguments {
		arg.Walk(visitor)
	}
	for _, stmt := range n.Body {
		stmt.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsCall returns true if the node may carry a call site
func (n *Node) IsCall() bool {
	switch n.Type {
	case NodeCallExpression, NodeNewExpression,
		NodeMethodInvocation, NodeObjectCreation,
		NodeArrayCreation, NodeMethodReference:
		return true
	}
	return false
}

// IsFunction returns true if the node is a function
func (n *Node) IsFunction() bool {
	switch n.Type {
	case NodeFunction, NodeArrowFunction, NodeGeneratorFunction,
		NodeFunctionExpression, NodeMethodDefinition,
		NodeConstructor, NodeLambda:
		return true
	}
	return false
}

// IsType returns true if the node declares a type
func (n *Node) IsType() bool {
	switch n.Type {
	case NodeClass, NodeInterface, NodeEnum, NodeRecord:
		return true
	}
	return false
}

// EnclosingScope returns the dotted name of the named types and functions
// around n, innermost last. Anonymous scopes are skipped.
func (n *Node) EnclosingScope() string {
	var names []string
	for p := n.Parent; p != nil; p = p.Parent {
		if (p.IsFunction() || p.IsType()) && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}

	scope := names[len(names)-1]
	for i := len(names) - 2; i >= 0; i-- {
		scope += "." + names[i]
	}
	return scope
}
