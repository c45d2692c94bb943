package tree

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Walk visits the subtree rooted at root in pre-order. fn receives the node,
// its depth (root is 0) and its parent (nil for the root). Returning false
// skips the node's children.
func Walk(root *Node, fn func(n *Node, depth int, parent *Node) bool) {
	if root == nil {
		return
	}
	walk(root, 0, nil, fn)
}

func walk(n *Node, depth int, parent *Node, fn func(*Node, int, *Node) bool) {
	if !fn(n, depth, parent) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, n, fn)
	}
}

// Match is a search hit.
type Match struct {
	Name  string   `json:"name" yaml:"name"`
	Depth int      `json:"depth" yaml:"depth"`
	Path  []string `json:"path" yaml:"path"`
}

// Search returns every node whose name contains query, ignoring case, in
// document order. Path runs from the root to the matched node inclusive.
func Search(root *Node, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if root == nil || q == "" {
		return nil
	}

	var matches []Match
	var path []string
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		path = append(path, n.Name)
		if strings.Contains(strings.ToLower(n.Name), q) {
			matches = append(matches, Match{
				Name:  n.Name,
				Depth: depth,
				Path:  append([]string(nil), path...),
			})
		}
		for _, child := range n.Children {
			visit(child, depth+1)
		}
		path = path[:len(path)-1]
	}
	visit(root, 0)
	return matches
}

// Row is one node in a flattened listing.
type Row struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Depth    int    `json:"depth" yaml:"depth"`
	Children int    `json:"children" yaml:"children"`
}

// rowNamespace scopes row ids so they never collide with other SHA-1 UUIDs.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("famtree.row"))

// Flatten lists the tree in pre-order. Row ids are derived from the position
// and name of each node, so the same input always yields the same ids.
func Flatten(root *Node) []Row {
	var rows []Row
	eachRow(root, func(_ *Node, row Row) bool {
		rows = append(rows, row)
		return true
	})
	return rows
}

// Find returns the node whose Flatten row id is id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	eachRow(root, func(n *Node, row Row) bool {
		if row.ID == id {
			found = n
		}
		return found == nil
	})
	return found
}

// Rename sets the name of the node whose row id is id and returns its new
// row. Ids include the name, so the renamed node and its descendants get new
// ids while every other row keeps its id.
func Rename(root *Node, id, name string) (Row, bool) {
	index := -1
	var target *Node
	eachRow(root, func(n *Node, row Row) bool {
		index++
		if row.ID == id {
			target = n
		}
		return target == nil
	})
	if target == nil {
		return Row{}, false
	}
	target.Name = name

	var renamed Row
	i := 0
	eachRow(root, func(_ *Node, row Row) bool {
		if i == index {
			renamed = row
			return false
		}
		i++
		return true
	})
	return renamed, true
}

// eachRow calls fn for every node and its row in pre-order until fn
// returns false.
func eachRow(root *Node, fn func(n *Node, row Row) bool) {
	if root == nil {
		return
	}
	var visit func(n *Node, key, parentID string, depth int) bool
	visit = func(n *Node, key, parentID string, depth int) bool {
		id := uuid.NewSHA1(rowNamespace, []byte(key)).String()
		row := Row{
			ID:       id,
			ParentID: parentID,
			Name:     n.Name,
			Depth:    depth,
			Children: len(n.Children),
		}
		if !fn(n, row) {
			return false
		}
		for i, child := range n.Children {
			if !visit(child, key+"/"+strconv.Itoa(i)+":"+child.Name, id, depth+1) {
				return false
			}
		}
		return true
	}
	visit(root, "0:"+root.Name, "", 0)
}

// Stats summarises the shape of a tree.
type Stats struct {
	Root        string `json:"root" yaml:"root"`
	Nodes       int    `json:"nodes" yaml:"nodes"`
	Leaves      int    `json:"leaves" yaml:"leaves"`
	MaxDepth    int    `json:"max_depth" yaml:"max_depth"`
	Generations []int  `json:"generations" yaml:"generations"`
	Widest      int    `json:"widest" yaml:"widest"`
}

// Summarize counts nodes, leaves and the size of each generation.
func Summarize(root *Node) Stats {
	var s Stats
	if root == nil {
		return s
	}
	s.Root = root.Name

	Walk(root, func(n *Node, depth int, _ *Node) bool {
		s.Nodes++
		if len(n.Children) == 0 {
			s.Leaves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for len(s.Generations) <= depth {
			s.Generations = append(s.Generations, 0)
		}
		s.Generations[depth]++
		return true
	})

	for _, count := range s.Generations {
		if count > s.Widest {
			s.Widest = count
		}
	}
	return s
}
