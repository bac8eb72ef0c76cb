package scene

import (
	"fmt"

	"github.com/matzehuels/b4wexport/pkg/errors"
)

// refVisitor is called once per reference field with the kind the field
// must point at and a human-readable field path for error messages.
type refVisitor func(kind Kind, r *Ref, field string)

// Resolve binds every reference in the graph to a block ID. A reference that
// names a block that does not exist fails with an INVALID_INPUT error naming
// the referencing block and field. Empty references stay unresolved.
func (g *Graph) Resolve() error {
	var firstErr error
	for _, b := range g.blocks {
		d := b.Block()
		visitRefs(b, func(kind Kind, r *Ref, field string) {
			if firstErr != nil || !r.IsSet() {
				return
			}
			if kind == 0 {
				r.ID = None
				return
			}
			id, ok := g.Lookup(kind, r.Name, r.Library)
			if !ok && r.Library == "" && d.Library != "" {
				// Unqualified names inside a library block mean that library.
				if id, ok = g.Lookup(kind, r.Name, d.Library); ok {
					r.Library = d.Library
				}
			}
			if !ok {
				firstErr = errors.New(errors.ErrCodeInvalidInput,
					"%s %q: %s refers to unknown %s %q", d.Kind, d.Name, field, kind, r.Name)
				return
			}
			r.ID = id
		})
	}
	return firstErr
}

func visitRefs(b Block, visit refVisitor) {
	switch v := b.(type) {
	case *Scene:
		for i := range v.Objects {
			visit(KindObject, &v.Objects[i], fmt.Sprintf("objects[%d]", i))
		}
		visit(KindObject, &v.Camera, "camera")
		visit(KindWorld, &v.World, "world")
	case *Object:
		visit(v.Type.DataKind(), &v.Data, "data")
		visit(KindObject, &v.Parent, "parent")
		visit(KindObject, &v.Proxy, "proxy")
		visit(KindGroup, &v.DupliGroup, "dupli_group")
		visit(KindAction, &v.Action, "action")
		for i := range v.MaterialSlots {
			visit(KindMaterial, &v.MaterialSlots[i], fmt.Sprintf("material_slots[%d]", i))
		}
		for i := range v.Modifiers {
			m := &v.Modifiers[i]
			visit(KindObject, &m.Object, fmt.Sprintf("modifiers[%d].object", i))
			visit(KindObject, &m.Curve, fmt.Sprintf("modifiers[%d].curve", i))
			visit(KindObject, &m.OffsetObject, fmt.Sprintf("modifiers[%d].offset_object", i))
		}
		for i := range v.Constraints {
			visit(KindObject, &v.Constraints[i].Target, fmt.Sprintf("constraints[%d].target", i))
		}
		for i := range v.ParticleSystems {
			visit(KindParticleSettings, &v.ParticleSystems[i].Settings, fmt.Sprintf("particle_systems[%d].settings", i))
		}
		for i := range v.LODLevels {
			visit(KindObject, &v.LODLevels[i].Object, fmt.Sprintf("lod_levels[%d].object", i))
		}
	case *Material:
		visitTree(v.NodeTree, "node_tree", visit)
		visitSlots(v.TextureSlots, visit)
	case *World:
		visit(KindAction, &v.Action, "action")
		visitTree(v.NodeTree, "node_tree", visit)
		visitSlots(v.TextureSlots, visit)
	case *NodeGroup:
		visitTree(&v.NodeTree, "", visit)
	case *Texture:
		visit(KindImage, &v.Image, "image")
	case *Speaker:
		visit(KindSound, &v.Sound, "sound")
		visit(KindAction, &v.Action, "action")
	case *Lamp:
		visit(KindAction, &v.Action, "action")
	case *Curve:
		visit(KindMesh, &v.Mesh, "mesh")
	case *ParticleSettings:
		visit(KindObject, &v.DupliObject, "dupli_object")
		visit(KindGroup, &v.DupliGroup, "dupli_group")
		visitSlots(v.TextureSlots, visit)
	case *Group:
		for i := range v.Objects {
			visit(KindObject, &v.Objects[i], fmt.Sprintf("objects[%d]", i))
		}
	}
}

func visitSlots(slots []TextureSlot, visit refVisitor) {
	for i := range slots {
		visit(KindTexture, &slots[i].Texture, fmt.Sprintf("texture_slots[%d].texture", i))
	}
}

func visitTree(t *NodeTree, prefix string, visit refVisitor) {
	if t == nil {
		return
	}
	if prefix != "" {
		prefix += "."
	}
	visit(KindAction, &t.Action, prefix+"action")
	for i := range t.Nodes {
		n := &t.Nodes[i]
		field := fmt.Sprintf("%snodes[%d]", prefix, i)
		visit(KindNodeTree, &n.Group, field+".node_tree")
		visit(KindTexture, &n.Texture, field+".texture")
		visit(KindImage, &n.Image, field+".image")
		visit(KindMaterial, &n.Material, field+".material")
	}
}
