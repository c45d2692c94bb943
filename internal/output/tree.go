package output

import (
	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"

	"github.com/salmonumbrella/famtree/internal/tree"
)

var (
	rootStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	enumeratorDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	emptyTreeLabel = "(empty tree)"
)

// RenderTree draws a tree with rounded connectors.
func RenderTree(root *tree.Node) string {
	if root == nil {
		return emptyTreeLabel
	}
	return lgtree.Root(root.Name).
		Child(branches(root.Children)...).
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(enumeratorDim).
		RootStyle(rootStyle).
		String()
}

func branches(nodes []*tree.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if len(n.Children) == 0 {
			out = append(out, n.Name)
			continue
		}
		out = append(out, lgtree.Root(n.Name).Child(branches(n.Children)...))
	}
	return out
}
