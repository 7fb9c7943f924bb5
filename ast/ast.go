package ast

import (
	"fmt"

	"sable/report"
)

// Node is a unit of the syntax tree.  Nodes are produced by the external
// parser (or synthesized programmatically, eg. for the standard unit) and
// are never mutated by the resolver: all semantic results live outside the
// tree.  A node's children are ordered; the parent link is a non-owning
// back-reference maintained by the constructors.
type Node struct {
	// Kind is the syntactic form of the node.
	Kind Kind

	// Parent is the node this node is a child of, nil at a tree root.
	Parent *Node

	// Children are the ordered subnodes.
	Children []*Node

	// Text is the token text for leaf nodes: identifier names, literal
	// images, operator symbols.  Empty for interior nodes.
	Text string

	// Span locates the node in its source file.  May be nil for synthesized
	// nodes, in which case diagnostics omit position information.
	Span *report.TextSpan
}

// NewNode creates an interior node over the given children, wiring their
// parent links.  Nil children are permitted and skipped, which lets callers
// pass optional slots directly.
func NewNode(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind}
	n.Append(children...)
	return n
}

// NewLeaf creates a leaf node carrying token text.
func NewLeaf(kind Kind, text string) *Node {
	return &Node{Kind: kind, Text: text}
}

// At sets the node's span and returns the node for chaining during tree
// construction.
func (n *Node) At(span *report.TextSpan) *Node {
	n.Span = span
	return n
}

// Append adds children to the node in order, skipping nils.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}

		c.Parent = n
		n.Children = append(n.Children, c)
	}

	return n
}

// Child returns the i-th child or nil if the index is out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}

	return n.Children[i]
}

// FirstOfKind returns the first direct child of the given kind, or nil.
func (n *Node) FirstOfKind(kind Kind) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}

	return nil
}

// Walk visits the node and its descendants in preorder.  Returning false
// from the visitor skips the subtree below the visited node.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil {
		return
	}

	if !visit(n) {
		return
	}

	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// EnclosingKind walks the parent chain, returning the nearest strict
// ancestor whose kind is one of those given, or nil.
func (n *Node) EnclosingKind(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}

	return nil
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	if n.Text != "" {
		return fmt.Sprintf("%s %q", n.Kind, n.Text)
	}

	return n.Kind.String()
}
