// Package render draws family trees as Graphviz diagrams.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/salmonumbrella/famtree/internal/tree"
)

// Format is a diagram output format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// ParseFormat converts a string to a Format. Empty string defaults to DOT.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatDOT, "":
		return FormatDOT, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("invalid render format %q (expected dot|svg)", s)
	}
}

// Options configures diagram layout.
type Options struct {
	// LeftToRight lays generations out in columns instead of rows.
	LeftToRight bool
}

// ToDOT converts a tree to Graphviz DOT. Nodes are numbered in pre-order so
// repeated names stay distinct.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowhead=none];\n")

	if root != nil {
		var edges []string
		next := 0
		var visit func(n *tree.Node) string
		visit = func(n *tree.Node) string {
			id := fmt.Sprintf("n%d", next)
			next++
			fmt.Fprintf(&buf, "  %s [label=%s];\n", id, quote(n.Name))
			for _, child := range n.Children {
				childID := visit(child)
				edges = append(edges, fmt.Sprintf("  %s -> %s;\n", id, childID))
			}
			return id
		}
		visit(root)

		if len(edges) > 0 {
			buf.WriteString("\n")
			for _, e := range edges {
				buf.WriteString(e)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the diagram in the requested format.
func Render(ctx context.Context, root *tree.Node, format Format, opts Options) ([]byte, error) {
	dot := ToDOT(root, opts)
	switch format {
	case FormatDOT, "":
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported render format: %s", format)
	}
}
