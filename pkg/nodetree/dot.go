package nodetree

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Title is drawn as the graph label.
	Title string
	// IsGroup marks group outputs as sinks.
	IsGroup bool
	// Dropped lists nodes to draw greyed out, e.g. the ones pruning removes.
	Dropped map[string]bool
}

// ToDOT converts a fragment to Graphviz DOT. Data flows left to right, from
// inputs towards the sinks, which are drawn with a double outline.
func ToDOT(f *Fragment, opts DOTOptions) string {
	sinks := make(map[string]bool)
	for _, s := range Sinks(f, opts.IsGroup) {
		sinks[s] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		label := n.Name + "\n" + string(n.Type)
		if n.GroupName != "" {
			label += "\n" + n.GroupName
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		switch {
		case sinks[n.Name]:
			attrs = append(attrs, "peripheries=2", "fillcolor=\"#e8f4e8\"")
		case opts.Dropped[n.Name]:
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range f.Links {
		fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q, fontsize=9];\n",
			l.FromNode, l.ToNode, l.FromSocket, l.ToSocket)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT text to SVG using Graphviz.
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
