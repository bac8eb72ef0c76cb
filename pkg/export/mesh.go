package export

import (
	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/geometry"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// slotMaterials returns the materials of obj's slots. Empty or broken slots
// hold the default material.
func (ec *ExportContext) slotMaterials(obj *scene.Object) []*scene.Material {
	out := make([]*scene.Material, 0, len(obj.MaterialSlots))
	for _, r := range obj.MaterialSlots {
		m, ok := scene.Deref[*scene.Material](ec.graph, r)
		if !ok {
			m = ec.defaultMaterial()
		}
		out = append(out, m)
	}
	return out
}

// exportMesh serializes mesh as used by obj. A mesh is exported once per
// combination of slot materials.
func (ec *ExportContext) exportMesh(mesh *scene.Mesh, obj *scene.Object) (document.Ref, error) {
	mats := ec.slotMaterials(obj)
	salt := ""
	for _, m := range mats {
		salt += "%" + m.Name
	}
	ref := ec.refTo(mesh, salt)
	if ec.records.IsRegistered(ref.UUID) {
		return ref, nil
	}

	ec.meshes.Push(mesh)
	defer ec.meshes.Pop()

	materials := []document.Ref{}
	for _, m := range mats {
		if !m.Exported() {
			continue
		}
		r, err := ec.exportMaterial(m, "")
		if errors.Is(err, errors.ErrCodeMaterial) {
			reason := errors.UserMessage(err)
			if r, err = ec.exportMaterial(ec.fallbackMaterial(), ""); err == nil {
				ec.err("%s Material: %q.", reason, m.Name)
			}
		}
		if err != nil {
			return ref, err
		}
		materials = append(materials, r)
	}

	vertexAnim := ec.checkVertexAnim(mesh, obj)
	anims := []*document.Record{}
	if vertexAnim {
		for _, va := range obj.VertexAnims {
			rec := document.NewRecord().
				Set("name", va.Name).
				Set("frame_start", va.FrameStart).
				Set("frame_end", va.FrameEnd)
			setProps(rec, va.Props)
			anims = append(anims, rec)
		}
	}

	groups := make([]*document.Record, 0, len(obj.VertexGroups))
	for i, name := range obj.VertexGroups {
		groups = append(groups, document.NewRecord().Set("name", name).Set("index", i))
	}

	uvs := mesh.UVLayers
	if uvs == nil {
		uvs = []string{}
	}
	var activeColor any
	if len(mesh.VertexColors) > 0 {
		activeColor = mesh.VertexColors[0]
	}

	submeshes := []*document.Record{}
	if len(materials) > 0 {
		for i, m := range mats {
			tnb := ec.tangentShading(m)
			hasUV := len(mesh.UVLayers) > 0
			if tnb && !hasUV {
				ec.warn("Object:%q > Material:%q. Material tangent shading is enabled, but object's mesh has no UV map.",
					ec.currentObjectName(), m.Name)
			}
			if !m.Exported() {
				continue
			}
			sub, err := ec.exportSubmesh(mesh, obj, i, m, vertexAnim, tnb && hasUV)
			if err != nil {
				return ref, err
			}
			submeshes = append(submeshes, sub)
		}
	} else {
		sub, err := ec.exportSubmesh(mesh, obj, -1, nil, vertexAnim, false)
		if err != nil {
			return ref, err
		}
		submeshes = append(submeshes, sub)
	}

	rec := document.NewRecord().
		Set("name", mesh.Name).
		Set("uuid", ref.UUID).
		Set("materials", materials).
		Set("b4w_vertex_anim", anims).
		Set("vertex_groups", groups).
		Set("uv_textures", uvs).
		Set("active_vcol_name", activeColor).
		Set("submeshes", submeshes)
	setProps(rec, mesh.Props)
	ec.register(mesh, rec)
	return ref, nil
}

// checkVertexAnim reports whether obj's vertex animation can be exported
// with mesh. Every animation has to be baked.
func (ec *ExportContext) checkVertexAnim(mesh *scene.Mesh, obj *scene.Object) bool {
	if !obj.VertexAnim {
		return false
	}
	if len(obj.VertexAnims) == 0 {
		ec.err("Incorrect vertex animation for mesh %q. Object has no vertex animation.", mesh.Name)
		return false
	}
	for _, va := range obj.VertexAnims {
		if va.Frames == 0 {
			ec.err("Incorrect vertex animation for mesh %q. Unbaked %q vertex animation.", mesh.Name, va.Name)
			return false
		}
	}
	return true
}

// exportSubmesh cooks the geometry of one material slot and appends it to
// the binary buffers. A cooker failure is fatal.
func (ec *ExportContext) exportSubmesh(mesh *scene.Mesh, obj *scene.Object, index int, mat *scene.Material,
	vertexAnim, shadeTangents bool) (*document.Record, error) {

	colors := ec.colorUsage(mesh, mat, obj)
	uvs := ec.uvUsage(mesh, mat, obj)

	var flags geometry.Flags
	if len(obj.VertexGroups) > 0 {
		flags |= geometry.FlagVertexGroups
	}
	if ec.usesNormalMap(mat) {
		flags |= geometry.FlagTangents
	}
	if shadeTangents {
		flags |= geometry.FlagShadeTangents
	}
	if len(colors) > 0 {
		flags |= geometry.FlagVertexColors
	}
	if vertexAnim {
		flags |= geometry.FlagVertexAnim
	}

	sm, err := ec.cooker.Cook(ec.ctx, geometry.Request{
		Mesh:     mesh.Name,
		MatIndex: index,
		Flags:    flags,
		Geometry: mesh.GeometryFor(index),
	})
	if err != nil {
		if ctxErr := ec.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewExportError(err.Error(), mesh.Name, "Mesh", "")
	}
	if msg := sm.Status.Message(mesh.Name); msg != "" {
		ec.err("%s", msg)
	}

	vcols := []*document.Record{}
	for _, vc := range mesh.VertexColors {
		if mask := colors[vc]; mask != 0 {
			vcols = append(vcols, document.NewRecord().Set("name", vc).Set("mask", mask))
		}
	}

	a := ec.blobs
	return document.NewRecord().
		Set("base_length", sm.BaseLength).
		Set("indices", region(sm.Indices, a.AppendInt32)).
		Set("position", region(sm.Position, a.AppendFloat32)).
		Set("texcoord", region(sm.Texcoord, a.AppendFloat32)).
		Set("shade_tangs", region(sm.ShadeTangs, a.AppendFloat32)).
		Set("normal", region(sm.Normal, a.AppendInt16)).
		Set("tangent", region(sm.Tangent, a.AppendInt16)).
		Set("group", region(sm.Group, a.AppendUint16)).
		Set("color", region(sm.Color, a.AppendUint8)).
		Set("vertex_colors", vcols).
		Set("uv_layers", uvs), nil
}

// region appends values and returns the region, or [0, 0] for no values.
func region[T any](values []T, appendFn func([]T) blob.Region) any {
	if len(values) == 0 {
		return [2]int{0, 0}
	}
	return appendFn(values)
}
