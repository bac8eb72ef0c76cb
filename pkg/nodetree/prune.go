package nodetree

import "github.com/matzehuels/b4wexport/pkg/scene"

// Sinks returns the names of the sink nodes of a fragment: the last
// material/world output, the last glow output group and, when isGroup is
// set, the last group output. Each kind contributes at most one sink.
func Sinks(f *Fragment, isGroup bool) []string {
	var sinks []string
	if n, ok := last(f, isOutput); ok {
		sinks = append(sinks, n)
	}
	if n, ok := last(f, isGlowOutput); ok {
		sinks = append(sinks, n)
	}
	if isGroup {
		if n, ok := last(f, func(n Node) bool { return n.Type == scene.NodeGroupOutput }); ok {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

func isOutput(n Node) bool {
	switch n.Type {
	case scene.NodeOutput, scene.NodeOutputMaterial, scene.NodeOutputWorld:
		return true
	}
	return false
}

func isGlowOutput(n Node) bool {
	return n.Type == scene.NodeGroupInstance && n.GroupName == GlowOutput
}

func last(f *Fragment, match func(Node) bool) (string, bool) {
	for i := len(f.Nodes) - 1; i >= 0; i-- {
		if match(f.Nodes[i]) {
			return f.Nodes[i].Name, true
		}
	}
	return "", false
}

// Reachable returns the names of every node that reaches sink through links,
// sink included.
func Reachable(f *Fragment, sink string) map[string]bool {
	in := make(map[string][]string, len(f.Nodes))
	for _, l := range f.Links {
		in[l.ToNode] = append(in[l.ToNode], l.FromNode)
	}
	known := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		known[n.Name] = true
	}

	seen := make(map[string]bool)
	stack := []string{sink}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[name] || !known[name] {
			continue
		}
		seen[name] = true
		stack = append(stack, in[name]...)
	}
	return seen
}

// Prune drops every node that does not reach a sink, then every link whose
// endpoints are no longer both present. Surviving nodes and links keep their
// order. A fragment without sinks loses all nodes.
func Prune(f *Fragment, isGroup bool) {
	keep := kept(f, isGroup)
	nodes := f.Nodes[:0]
	for _, n := range f.Nodes {
		if keep[n.Name] {
			nodes = append(nodes, n)
		}
	}
	clear(f.Nodes[len(nodes):])
	f.Nodes = nodes

	DropLooseLinks(f)
}

// Dropped returns the names of the nodes Prune would remove, leaving f
// untouched.
func Dropped(f *Fragment, isGroup bool) map[string]bool {
	keep := kept(f, isGroup)
	out := make(map[string]bool)
	for _, n := range f.Nodes {
		if !keep[n.Name] {
			out[n.Name] = true
		}
	}
	return out
}

func kept(f *Fragment, isGroup bool) map[string]bool {
	keep := make(map[string]bool)
	for _, sink := range Sinks(f, isGroup) {
		for name := range Reachable(f, sink) {
			keep[name] = true
		}
	}
	return keep
}

// DropLooseLinks removes links with a missing endpoint node.
func DropLooseLinks(f *Fragment) {
	present := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		present[n.Name] = true
	}
	links := f.Links[:0]
	for _, l := range f.Links {
		if present[l.FromNode] && present[l.ToNode] {
			links = append(links, l)
		}
	}
	f.Links = links
}
