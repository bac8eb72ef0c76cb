package export

import (
	"slices"
	"strings"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Vertex color channel masks.
const (
	maskR   = 0b100
	maskG   = 0b010
	maskB   = 0b001
	maskRGB = maskR | maskG | maskB
)

func channelMask(channels string) int {
	m := 0
	if strings.Contains(channels, "R") {
		m |= maskR
	}
	if strings.Contains(channels, "G") {
		m |= maskG
	}
	if strings.Contains(channels, "B") {
		m |= maskB
	}
	return m
}

// dynamicGeometry reports whether obj may inherit materials at runtime, in
// which case every layer of its mesh is exported.
func dynamicGeometry(obj *scene.Object) bool {
	v, _ := obj.Props.Get("b4w_dynamic_geometry")
	b, _ := v.(bool)
	return b
}

// uvUsage returns the UV layers of mesh that mat reads, in mesh order.
func (ec *ExportContext) uvUsage(mesh *scene.Mesh, mat *scene.Material, obj *scene.Object) []string {
	if len(mesh.UVLayers) == 0 {
		return []string{}
	}
	used := map[string]bool{}
	switch {
	case dynamicGeometry(obj):
		for _, uv := range mesh.UVLayers {
			used[uv] = true
		}
	case mat == nil:
	case mat.UseNodes && mat.NodeTree != nil:
		ec.eachNode(mat.NodeTree, func(t *scene.NodeTree, n *scene.Node) bool {
			switch n.Type {
			case scene.NodeGeometry, scene.NodeUVMap:
				if t.OutputLinked(n.Name, "UV") {
					used[uvLayer(mesh, n.UVLayer)] = true
				}
			case scene.NodeTexCoord:
				if t.OutputLinked(n.Name, "UV") {
					used[uvLayer(mesh, "")] = true
				}
			}
			return true
		})
	case !mat.UseNodes:
		for _, slot := range mat.TextureSlots {
			if slot.Disabled || slot.TextureCoords != CoordsUV {
				continue
			}
			if _, ok := exportable[*scene.Texture](ec.graph, slot.Texture); ok {
				used[uvLayer(mesh, slot.UVLayer)] = true
			}
		}
	}
	out := []string{}
	for _, uv := range mesh.UVLayers {
		if used[uv] {
			out = append(out, uv)
		}
	}
	return out
}

// colorUsage returns the channel mask of every vertex color layer of mesh
// that mat or obj reads. Layers are keyed by name.
func (ec *ExportContext) colorUsage(mesh *scene.Mesh, mat *scene.Material, obj *scene.Object) map[string]int {
	usage := map[string]int{}
	if len(mesh.VertexColors) == 0 {
		return usage
	}
	if dynamicGeometry(obj) {
		for _, vc := range mesh.VertexColors {
			usage[vc] = maskRGB
		}
		return usage
	}
	if mat == nil {
		return usage
	}
	if mat.NodeTree != nil {
		ec.colorNodeUsage(mesh, mat.NodeTree, usage, map[*scene.NodeTree]bool{})
	}
	if mat.UseVertexColorPaint {
		usage[mesh.VertexColors[0]] |= maskRGB
	}
	for k := range usage {
		if !slices.Contains(mesh.VertexColors, k) {
			delete(usage, k)
		}
	}
	return usage
}

// colorNodeUsage finds the vertex colors read by GEOMETRY nodes. A color
// feeding a SeparateRGB node only uses the channels taken from it.
func (ec *ExportContext) colorNodeUsage(mesh *scene.Mesh, tree *scene.NodeTree, usage map[string]int, seen map[*scene.NodeTree]bool) {
	if seen[tree] {
		return
	}
	seen[tree] = true

	targets := map[string][]string{}
	separate := map[string]int{}
	for _, l := range tree.Links {
		from, ok := tree.Node(l.FromNode)
		if !ok {
			continue
		}
		switch {
		case from.IDName == geometryIDName && l.FromSocket == "Vertex Color":
			if vc := colorLayer(mesh, from.ColorLayer); vc != "" {
				targets[vc] = append(targets[vc], l.ToNode)
			}
		case from.IDName == separateRGBIDName && l.FromSocket != "" && strings.Contains("RGB", l.FromSocket):
			separate[from.Name] |= channelMask(l.FromSocket)
		case from.Type == scene.NodeGroupInstance:
			if sub := ec.groupTree(from); sub != nil {
				ec.colorNodeUsage(mesh, sub, usage, seen)
			}
		}
	}
	for vc, to := range targets {
		for _, name := range to {
			mask, ok := separate[name]
			if !ok {
				mask = maskRGB
			}
			usage[vc] |= mask
		}
	}
}

// usesNormalMap reports whether mat perturbs normals, through a normal map
// node or a texture slot mapped to normals.
func (ec *ExportContext) usesNormalMap(mat *scene.Material) bool {
	if mat == nil {
		return false
	}
	if mat.UseNodes && mat.NodeTree != nil {
		found := false
		ec.eachNode(mat.NodeTree, func(_ *scene.NodeTree, n *scene.Node) bool {
			found = n.Type == scene.NodeNormalMap
			return !found
		})
		return found
	}
	for _, slot := range mat.TextureSlots {
		if v, _ := slot.Props.Get("use_map_normal"); v == true && !slot.Disabled {
			return true
		}
	}
	return false
}
