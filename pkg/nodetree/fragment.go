// Package nodetree holds exported shader node trees and prunes them down to
// the nodes that influence an output.
//
// # Pruning
//
// [Prune] keeps only nodes reachable backwards, through links, from a sink:
// the last material or world output, the last glow output group and, for
// node groups, the last group output. Links left dangling by removed nodes
// are dropped afterwards.
//
//	frag := &nodetree.Fragment{Nodes: nodes, Links: links}
//	nodetree.Prune(frag, false)
//
// # Support table
//
// [Supported] and [Validate] decide whether a host node tree can be exported
// at all. An unsupported node anywhere in a tree, including inside nested
// groups, disables the whole tree.
//
// # Rendering
//
// [ToDOT] and [RenderSVG] draw a fragment for inspection, which is handy to
// compare a tree before and after pruning.
package nodetree

import (
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// GlowOutput is the node group name that marks a glow output sink.
const GlowOutput = "B4W_GLOW_OUTPUT"

// Node is one exported node.
type Node struct {
	Name string
	Type scene.NodeType
	// GroupName is the node tree name of GROUP nodes.
	GroupName string
	// Record is the exported node record, including name and type.
	Record *document.Record
}

// Link connects two exported nodes by name and socket identifier.
type Link struct {
	FromNode   string
	FromSocket string
	ToNode     string
	ToSocket   string
}

// Record returns the exported form of the link.
func (l Link) Record() *document.Record {
	return document.NewRecord().
		Set("from_node", document.NewRecord().Set("name", l.FromNode)).
		Set("to_node", document.NewRecord().Set("name", l.ToNode)).
		Set("from_socket", document.NewRecord().Set("identifier", l.FromSocket)).
		Set("to_socket", document.NewRecord().Set("identifier", l.ToSocket))
}

// Fragment is one exported node tree.
type Fragment struct {
	Nodes []Node
	Links []Link
	// AnimationData is encoded as animation_data; nil encodes as null.
	AnimationData *document.Record
}

// Node returns the node with the given name.
func (f *Fragment) Node(name string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].Name == name {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// EachRecord calls fn for every node record and the animation data.
func (f *Fragment) EachRecord(fn func(*document.Record)) {
	if f == nil {
		return
	}
	for _, n := range f.Nodes {
		if n.Record != nil {
			fn(n.Record)
		}
	}
	if f.AnimationData != nil {
		fn(f.AnimationData)
	}
}

// MarshalJSON encodes the fragment as {nodes, links, animation_data}.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	nodes := make([]*document.Record, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		rec := n.Record
		if rec == nil {
			rec = document.NewRecord().Set("name", n.Name).Set("type", string(n.Type))
		}
		nodes = append(nodes, rec)
	}
	links := make([]*document.Record, 0, len(f.Links))
	for _, l := range f.Links {
		links = append(links, l.Record())
	}
	return document.NewRecord().
		Set("nodes", nodes).
		Set("links", links).
		Set("animation_data", f.AnimationData).
		MarshalJSON()
}

// FromTree converts a host node tree structurally, without node records.
// Invalid links are skipped. The result is meant for drawing; the exporter
// builds its fragments with full records.
func FromTree(tree *scene.NodeTree) *Fragment {
	f := &Fragment{}
	for _, n := range tree.Nodes {
		f.Nodes = append(f.Nodes, Node{Name: n.Name, Type: n.Type, GroupName: n.Group.Name})
	}
	for _, l := range tree.Links {
		if l.Invalid {
			continue
		}
		f.Links = append(f.Links, Link{
			FromNode:   l.FromNode,
			FromSocket: l.FromSocket,
			ToNode:     l.ToNode,
			ToSocket:   l.ToSocket,
		})
	}
	return f
}
