// Package browse is an interactive, collapsible terminal view of a tree.
package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/salmonumbrella/famtree/internal/tree"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorWhite = lipgloss.Color("255")
	colorDim   = lipgloss.Color("240")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	normalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

type item struct {
	node   *tree.Node
	parent *tree.Node
	depth  int
}

// Model is the bubbletea model for browsing a tree. Every node starts
// collapsed except the root.
type Model struct {
	root      *tree.Node
	collapsed map[*tree.Node]bool
	items     []item

	Cursor int
	Offset int
	Height int
}

// New creates a browser for root.
func New(root *tree.Node) Model {
	m := Model{
		root:      root,
		collapsed: map[*tree.Node]bool{},
		Height:    20,
	}
	tree.Walk(root, func(n *tree.Node, depth int, _ *tree.Node) bool {
		if depth > 0 && len(n.Children) > 0 {
			m.collapsed[n] = true
		}
		return true
	})
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.items = m.items[:0]
	tree.Walk(m.root, func(n *tree.Node, depth int, parent *tree.Node) bool {
		m.items = append(m.items, item{node: n, parent: parent, depth: depth})
		return !m.collapsed[n]
	})
	if m.Cursor >= len(m.items) {
		m.Cursor = len(m.items) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.clampOffset()
}

func (m *Model) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Visible returns the names of the rows currently shown.
func (m Model) Visible() []string {
	out := make([]string, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it.node.Name)
	}
	return out
}

// Selected returns the node under the cursor, or nil for an empty tree.
func (m Model) Selected() *tree.Node {
	if len(m.items) == 0 {
		return nil
	}
	return m.items[m.Cursor].node
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.clampOffset()
			}
		case "down", "j":
			if m.Cursor < len(m.items)-1 {
				m.Cursor++
				m.clampOffset()
			}
		case "enter", " ":
			if n := m.Selected(); n != nil && len(n.Children) > 0 && n != m.root {
				m.collapsed[n] = !m.collapsed[n]
				m.refresh()
			}
		case "right", "l":
			if n := m.Selected(); n != nil && m.collapsed[n] {
				m.collapsed[n] = false
				m.refresh()
			}
		case "left", "h":
			m.collapseOrParent()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 5
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

// collapseOrParent folds the selected node, or moves to its parent when it
// is already folded or has no children.
func (m *Model) collapseOrParent() {
	if len(m.items) == 0 {
		return
	}
	cur := m.items[m.Cursor]
	if len(cur.node.Children) > 0 && !m.collapsed[cur.node] && cur.node != m.root {
		m.collapsed[cur.node] = true
		m.refresh()
		return
	}
	for i := m.Cursor - 1; i >= 0; i-- {
		if m.items[i].node == cur.parent {
			m.Cursor = i
			m.clampOffset()
			return
		}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  ← parent  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  (empty tree)"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.Offset; i < end; i++ {
		it := m.items[i]
		marker := "•"
		if len(it.node.Children) > 0 {
			marker = "▾"
			if m.collapsed[it.node] {
				marker = "▸"
			}
		}
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", it.depth), marker, it.node.Name)
		if m.collapsed[it.node] {
			line += dimStyle.Render(fmt.Sprintf(" (%d)", len(it.node.Children)))
		}
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.items))))
	return b.String()
}
