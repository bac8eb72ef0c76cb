package export

import (
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/nodetree"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Node groups with export-time checks.
var (
	refractionGroups = map[string]bool{"B4W_REFRACTION": true, "REFRACTION": true}
	parallaxGroups   = map[string]bool{"B4W_PARALLAX": true, "PARALLAX": true}
)

const (
	parallaxHeightMap = "Height Map"
	textureNodeIDName = "ShaderNodeTexture"
	separateRGBIDName = "ShaderNodeSeparateRGB"
	geometryIDName    = "ShaderNodeGeometry"
)

// groupTree returns the node tree a GROUP node instantiates.
func (ec *ExportContext) groupTree(n *scene.Node) *scene.NodeTree {
	if g, ok := scene.Deref[*scene.NodeGroup](ec.graph, n.Group); ok {
		return &g.NodeTree
	}
	return nil
}

// eachNode calls fn for every node of tree and of the groups it uses,
// depth first, until fn returns false. fn also gets the tree holding the
// node. Each group tree is entered once.
func (ec *ExportContext) eachNode(tree *scene.NodeTree, fn func(*scene.NodeTree, *scene.Node) bool) {
	seen := map[*scene.NodeTree]bool{}
	var walk func(t *scene.NodeTree) bool
	walk = func(t *scene.NodeTree) bool {
		seen[t] = true
		for i := range t.Nodes {
			n := &t.Nodes[i]
			if !fn(t, n) {
				return false
			}
			if n.Type == scene.NodeGroupInstance {
				if sub := ec.groupTree(n); sub != nil && !seen[sub] && !walk(sub) {
					return false
				}
			}
		}
		return true
	}
	walk(tree)
}

// exportNodeTree exports a material, world or group node tree and prunes it.
// Unsupported nodes and invalid links are material errors.
func (ec *ExportContext) exportNodeTree(tree *scene.NodeTree, owner string, state *treeState, isGroup bool) (*nodetree.Fragment, error) {
	if err := nodetree.Validate(tree, owner, ec.groupTree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMaterial, err, "%s", err.Error())
	}
	mesh := ec.currentMesh()
	frag := &nodetree.Fragment{}
	cut := map[string]bool{}

	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Type == scene.NodeOutputLamp {
			continue
		}
		rec := document.NewRecord().
			Set("name", n.Name).
			Set("type", string(n.Type))
		cutInputs := false
		groupName := ""

		switch n.Type {
		case scene.NodeGeometry:
			uv := n.UVLayer
			if tree.OutputLinked(n.Name, "UV") {
				uv = uvLayer(mesh, n.UVLayer)
			}
			col := n.ColorLayer
			if tree.OutputLinked(n.Name, "Vertex Color") {
				col = colorLayer(mesh, n.ColorLayer)
			}
			rec.Set("uv_layer", uv).Set("color_layer", col)
			state.key += n.UVLayer + uv + n.ColorLayer + col
			if tree.OutputLinked(n.Name, "Orco") {
				state.orco = true
			}

		case scene.NodeUVMap:
			uv := n.UVLayer
			if tree.OutputLinked(n.Name, "UV") {
				uv = uvLayer(mesh, n.UVLayer)
			}
			rec.Set("uv_layer", uv)
			state.key += n.UVLayer + uv

		case scene.NodeTexCoord:
			uv := ""
			if tree.OutputLinked(n.Name, "UV") {
				uv = uvLayer(mesh, "")
			}
			rec.Set("uv_layer", uv)
			state.key += uv
			if tree.OutputLinked(n.Name, "Generated") {
				state.orco = true
			}

		case scene.NodeNormalMap:
			uv := n.UVLayer
			if tree.OutputLinked(n.Name, "Normal") {
				uv = uvLayer(mesh, n.UVLayer)
			}
			rec.Set("uv_map", uv)
			state.key += n.UVLayer + uv

		case scene.NodeGroupInstance:
			g, ok := scene.Deref[*scene.NodeGroup](ec.graph, n.Group)
			if !ok {
				return nil, materialError("The %q node is not supported. Nodes will be disabled for %q.", n.Name, owner)
			}
			if err := ec.checkGroupNode(tree, n, g); err != nil {
				return nil, err
			}
			groupName = g.Name
			ref, err := ec.exportNodeGroup(g, state)
			if err != nil {
				return nil, err
			}
			rec.Set("node_tree_name", g.Name).Set("node_group", ref)

		case scene.NodeMaterial, scene.NodeMaterialExt:
			name := ""
			if m, ok := scene.Deref[*scene.Material](ec.graph, n.Material); ok {
				name = m.Name
			} else {
				cutInputs = true
				cut[n.Name] = true
				ec.err("Empty material slot in node %q.", n.Name)
			}
			rec.Set("material_name", name)

		case scene.NodeTexture:
			var ref document.Ref
			if tex, ok := exportable[*scene.Texture](ec.graph, n.Texture); ok {
				var err error
				if ref, err = ec.exportTexture(tex, ""); err != nil {
					return nil, err
				}
			}
			rec.Set("texture", ref)

		case scene.NodeTexImage, scene.NodeTexEnvironment:
			var ref document.Ref
			if img, ok := exportable[*scene.Image](ec.graph, n.Image); ok {
				r, err := ec.exportImage(img)
				switch {
				case errors.Is(err, errors.ErrCodePath):
					ec.err("%s", errors.UserMessage(err))
				case err != nil:
					return nil, err
				default:
					ref = r
				}
			}
			rec.Set("image", ref)
		}

		setProps(rec, n.Props)
		rec.Set("inputs", sockets(tree, n, n.Inputs, true, cutInputs)).
			Set("outputs", sockets(tree, n, n.Outputs, false, false))

		frag.Nodes = append(frag.Nodes, nodetree.Node{
			Name:      n.Name,
			Type:      n.Type,
			GroupName: groupName,
			Record:    rec,
		})
	}

	for _, l := range tree.Links {
		if l.Invalid {
			return nil, materialError("Invalid link found in node material.")
		}
		if to, ok := tree.Node(l.ToNode); ok && to.Type == scene.NodeOutputLamp || cut[l.ToNode] {
			continue
		}
		frag.Links = append(frag.Links, nodetree.Link{
			FromNode:   l.FromNode,
			FromSocket: l.FromSocket,
			ToNode:     l.ToNode,
			ToSocket:   l.ToSocket,
		})
	}

	if anim, ok := ec.animationData(tree.Action).(*document.Record); ok {
		frag.AnimationData = anim
	}
	nodetree.Prune(frag, isGroup)
	return frag, nil
}

// checkGroupNode applies the constraints of special node groups.
func (ec *ExportContext) checkGroupNode(tree *scene.NodeTree, n *scene.Node, g *scene.NodeGroup) error {
	if refractionGroups[g.Name] {
		if mat, ok := ec.materials.Top(); ok && (mat.AlphaBlend == AlphaOpaque || mat.AlphaBlend == AlphaClip) {
			return materialError("Using B4W_REFRACTION node %q with incorrect type of Alpha Blend.", n.Name)
		}
	}
	if parallaxGroups[g.Name] {
		for _, in := range n.Inputs {
			if in.Name != parallaxHeightMap {
				continue
			}
			valid := false
			if l, ok := tree.InputLink(n.Name, in.ID()); ok {
				from, ok := tree.Node(l.FromNode)
				valid = ok && from.IDName == textureNodeIDName && from.Texture.IsSet()
			}
			if !valid {
				return materialError("Wrong \"Height Map\" input for the %q B4W_PARALLAX node. "+
					"Only link from the TEXTURE node with a non-empty texture is allowed.", n.Name)
			}
			break
		}
	}
	return nil
}

// exportNodeGroup exports a node group once and folds its layer usage into
// the state of the tree using it. A group that failed is walked again by the
// next tree using it.
func (ec *ExportContext) exportNodeGroup(g *scene.NodeGroup, state *treeState) (document.Ref, error) {
	ref := ec.refTo(g, "")
	if !ec.visited.Begin(g.ID, identity.Plain) {
		if rec, ok := ec.record(ref); ok {
			orco, _ := rec.Get("use_orco_tex_coord")
			state.orco = state.orco || orco == true
			state.key += rec.GetString("uv_vc_key")
		}
		return ref, nil
	}

	var sub treeState
	frag, err := ec.exportNodeTree(&g.NodeTree, g.Name, &sub, true)
	if err != nil {
		ec.visited.Abort(g.ID, identity.Plain)
		return ref, err
	}
	state.orco = state.orco || sub.orco
	state.key += sub.key

	rec := document.NewRecord().
		Set("name", g.Name).
		Set("uuid", ref.UUID).
		Set("use_orco_tex_coord", sub.orco).
		Set("uv_vc_key", sub.key).
		Set("node_tree", frag)
	ec.finish(g, rec)
	return ref, nil
}

// sockets exports the named sockets of a node. Inputs of cut nodes are
// reported as unlinked.
func sockets(tree *scene.NodeTree, n *scene.Node, socks []scene.Socket, inputs, cut bool) []*document.Record {
	out := []*document.Record{}
	for _, s := range socks {
		if s.Name == "" {
			continue
		}
		var linked bool
		if inputs {
			linked = tree.InputLinked(n.Name, s.ID())
		} else {
			linked = tree.OutputLinked(n.Name, s.ID())
		}
		def := s.Default
		if s.Type == "SHADER" {
			def = []any{0, 0, 0}
		}
		out = append(out, document.NewRecord().
			Set("name", s.Name).
			Set("identifier", s.ID()).
			Set("is_linked", linked && !cut).
			Set("default_value", def))
	}
	return out
}
