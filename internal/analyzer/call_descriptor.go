package analyzer

import (
	"github.com/ludo-technologies/forbidscan/internal/callsite"
	"github.com/ludo-technologies/forbidscan/internal/parser"
)

// nodeDescriptor exposes a parsed node as a call-site descriptor
type nodeDescriptor struct {
	node *parser.Node
}

// DescribeNode adapts a node of any supported tree-sitter language to a
// callsite.Descriptor. Nodes that carry no call report KindNone.
func DescribeNode(node *parser.Node) callsite.Descriptor {
	return nodeDescriptor{node: node}
}

func (d nodeDescriptor) Kind() callsite.Kind {
	if d.node == nil {
		return callsite.KindNone
	}

	switch d.node.Type {
	case parser.NodeCallExpression, parser.NodeMethodInvocation:
		if d.node.Qualified {
			return callsite.KindQualifiedCall
		}
		return callsite.KindPlainCall
	case parser.NodeNewExpression, parser.NodeObjectCreation:
		return callsite.KindConstructorCall
	case parser.NodeArrayCreation:
		return callsite.KindArrayCreation
	case parser.NodeMethodReference:
		if d.node.ConstructorRef {
			return callsite.KindConstructorReference
		}
		return callsite.KindMethodReference
	default:
		return callsite.KindNone
	}
}

func (d nodeDescriptor) Name() string {
	if d.node == nil {
		return ""
	}
	return d.node.Name
}

func (d nodeDescriptor) Arguments() (int, bool) {
	if d.node == nil {
		return 0, false
	}
	return len(d.node.Arguments), d.node.HasArgumentList
}
