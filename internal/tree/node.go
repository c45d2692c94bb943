// Package tree parses ASCII family trees drawn with pipe, backtick and dash
// connectors into nested nodes.
//
// A tree looks like:
//
//	Hans Gyllencreutz
//	|-- Nils Hansson
//	|   `-- Erik Nilsson
//	|-- Per Hansson
//
// The first non-blank line names the root. Every other line is split into a
// connector prefix and a label; the prefix decides where the node attaches.
package tree

// Node is one person (or entity) in the hierarchy.
//
// Children is nil when the node has none, so encoders that honour omitempty
// drop the field entirely instead of writing an empty list.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// prune drops empty children slices throughout the subtree.
func prune(n *Node) {
	if len(n.Children) == 0 {
		n.Children = nil
		return
	}
	for _, child := range n.Children {
		prune(child)
	}
}
