package export

import (
	"fmt"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Alpha blend modes the walker branches on.
const (
	AlphaOpaque = "OPAQUE"
	AlphaClip   = "CLIP"
)

// materialError reports a construct that disables a whole material. The
// mesh walker recovers from it by exporting the fallback material instead.
func materialError(format string, args ...any) error {
	return errors.New(errors.ErrCodeMaterial, format, args...)
}

// treeState collects what a material, world or node group needs from the
// mesh it is exported for. key distinguishes variants of a material that
// resolve unnamed UV and color layers to different mesh layers.
type treeState struct {
	key  string
	orco bool
}

// exportMaterial serializes mat for the mesh on top of the mesh stack. A
// non-empty explicit identity replaces the computed one; it is used when a
// fallback takes over the identity of a removed record. Variants with an
// identity already in the document are not added twice.
func (ec *ExportContext) exportMaterial(mat *scene.Material, explicit string) (document.Ref, error) {
	ec.materials.Push(mat)
	defer ec.materials.Pop()

	mesh := ec.currentMesh()
	paint := mat.UseVertexColorPaint
	if paint && mesh != nil && len(mesh.VertexColors) == 0 {
		paint = false
		ec.err("Incomplete mesh %q Material settings require vertex colors.", mesh.Name)
	}

	variant := materialVariant(mat, mesh)
	if explicit == "" {
		if uuid, ok := ec.materialVariants[variant]; ok && ec.records.IsRegistered(uuid) {
			return document.RefTo(uuid), nil
		}
	}

	rec := document.NewRecord().
		Set("name", mat.Name).
		Set("uuid", "").
		Set("source_uuid", ec.uuid(mat, "")).
		Set("type", mat.Type).
		Set("use_nodes", mat.UseNodes).
		Set("use_orco_tex_coord", false).
		Set("uv_vc_key", "")

	rec.Set("use_vertex_color_paint", paint).
		Set("use_tangent_shading", ec.tangentShading(mat)).
		Set("game_settings", document.NewRecord().Set("alpha_blend", mat.AlphaBlend))
	setProps(rec, mat.Props)

	var state treeState
	var tree any
	if mat.UseNodes && mat.NodeTree != nil {
		frag, err := ec.exportNodeTree(mat.NodeTree, mat.Name, &state, false)
		if err != nil {
			return document.Ref{}, err
		}
		tree = frag
	}
	rec.Set("node_tree", tree)

	slots, err := ec.materialTextureSlots(mat, &state)
	if err != nil {
		return document.Ref{}, err
	}
	rec.Set("texture_slots", slots)

	uuid := explicit
	if uuid == "" {
		uuid = ec.uuid(mat, state.key)
	}
	rec.Set("uuid", uuid).
		Set("use_orco_tex_coord", state.orco).
		Set("uv_vc_key", state.key)

	ref := document.RefTo(uuid)
	if explicit == "" {
		ec.materialVariants[variant] = uuid
	}
	if ec.records.IsRegistered(uuid) {
		return ref, nil
	}
	ec.register(mat, rec)
	return ref, nil
}

// materialVariant identifies the mesh layers an export of mat can depend
// on. Meshes with the same first UV and vertex color layers yield the same
// material record.
func materialVariant(mat *scene.Material, mesh *scene.Mesh) string {
	return fmt.Sprintf("%d\x00%s\x00%s", mat.ID, uvLayer(mesh, ""), colorLayer(mesh, ""))
}

// materialTextureSlots exports the enabled texture slots of mat. Node
// materials only keep their first alpha slot, and none at all when opaque.
func (ec *ExportContext) materialTextureSlots(mat *scene.Material, state *treeState) ([]*document.Record, error) {
	out := []*document.Record{}
	if mat.AlphaBlend == AlphaOpaque && mat.UseNodes {
		return out, nil
	}
	mesh := ec.currentMesh()
	for _, slot := range mat.TextureSlots {
		if slot.Disabled {
			continue
		}
		if !slot.UseMapAlpha && mat.UseNodes {
			continue
		}
		if !slot.Texture.IsSet() {
			return nil, materialError("No texture in the texture slot.")
		}
		tex, ok := exportable[*scene.Texture](ec.graph, slot.Texture)
		if !ok {
			continue
		}
		if slot.UseMapColorDiffuse && tex.Type == scene.TextureEnvironmentMap {
			return nil, materialError("Use of ENVIRONMENT_MAP as diffuse color is not supported. Use as mirror instead.")
		}
		if err := checkTextureCoords(tex, slot.TextureCoords); err != nil {
			return nil, err
		}

		uv := ""
		if slot.TextureCoords == CoordsUV {
			uv = uvLayer(mesh, slot.UVLayer)
		}
		state.key += slot.UVLayer + uv

		rec := document.NewRecord().
			Set("texture_coords", slot.TextureCoords).
			Set("uv_layer", uv).
			Set("use_map_color_diffuse", slot.UseMapColorDiffuse).
			Set("use_map_alpha", slot.UseMapAlpha)
		setProps(rec, slot.Props)
		ref, err := ec.exportTexture(tex, "")
		if err != nil {
			return nil, err
		}
		rec.Set("texture", ref)
		out = append(out, rec)

		if slot.UseMapAlpha && mat.UseNodes {
			break
		}
	}
	return out, nil
}

// Texture coordinate sources.
const (
	CoordsUV     = "UV"
	CoordsNormal = "NORMAL"
	CoordsOrco   = "ORCO"
)

// checkTextureCoords rejects image textures mapped by anything but UV,
// normal or generated coordinates.
func checkTextureCoords(tex *scene.Texture, coords string) error {
	if tex.Type != scene.TextureImage {
		return nil
	}
	switch coords {
	case CoordsUV, CoordsNormal, CoordsOrco:
		return nil
	}
	return materialError("Wrong texture coordinates type in texture %q.", tex.Name)
}

// tangentShading reports whether mat shades with tangents, either directly
// or through a MATERIAL node of its node tree.
func (ec *ExportContext) tangentShading(mat *scene.Material) bool {
	if !mat.UseNodes {
		return mat.UseTangentShading
	}
	if mat.NodeTree == nil {
		return false
	}
	found := false
	ec.eachNode(mat.NodeTree, func(_ *scene.NodeTree, n *scene.Node) bool {
		if n.Type != scene.NodeMaterial && n.Type != scene.NodeMaterialExt {
			return true
		}
		if m, ok := scene.Deref[*scene.Material](ec.graph, n.Material); ok && m.UseTangentShading {
			found = true
			return false
		}
		return true
	})
	return found
}

// exportTexture serializes tex once per run. An explicit identity forces a
// new record, as for exportMaterial.
func (ec *ExportContext) exportTexture(tex *scene.Texture, explicit string) (document.Ref, error) {
	if explicit == "" {
		ref := ec.refTo(tex, "")
		if !ec.visited.Begin(tex.ID, identity.Plain) {
			return ref, nil
		}
		defer ec.visited.Finish(tex.ID, identity.Plain)
	}
	uuid := explicit
	if uuid == "" {
		uuid = ec.uuid(tex, "")
	}

	rec := document.NewRecord().
		Set("name", tex.Name).
		Set("uuid", uuid).
		Set("type", tex.Type).
		Set("b4w_source_type", tex.SourceType).
		Set("b4w_source_id", tex.SourceID).
		Set("b4w_use_as_skydome", tex.UseSky == SkySkydome || tex.UseSky == SkyBoth).
		Set("b4w_use_as_environment_lighting", tex.UseSky == SkyEnvironment || tex.UseSky == SkyBoth)
	setProps(rec, tex.Props)

	if tex.RendersScene() && explicit == "" {
		ec.rendered = append(ec.rendered, tex)
	}

	if tex.Type == scene.TextureImage || tex.Type == scene.TextureEnvironmentMap {
		var image document.Ref
		if !tex.Image.IsSet() {
			ec.warn("Texture %q has no image.", tex.Name)
		} else if img, ok := exportable[*scene.Image](ec.graph, tex.Image); ok {
			ref, err := ec.exportImage(img)
			switch {
			case errors.Is(err, errors.ErrCodePath):
				ec.err("%s", errors.UserMessage(err))
			case err != nil:
				return document.Ref{}, err
			default:
				image = ref
			}
		}
		rec.Set("image", image)
	}

	ec.doc.Add(scene.KindTexture.Tag(), rec)
	ec.records.Register(uuid, rec, tex.ID)
	return document.RefTo(uuid), nil
}

// Sky usage of a texture.
const (
	SkyOff         = "OFF"
	SkySkydome     = "SKYDOME"
	SkyEnvironment = "ENVIRONMENT_LIGHTING"
	SkyBoth        = "BOTH"
)

// uvLayer resolves an unnamed UV layer to the first layer of mesh.
func uvLayer(mesh *scene.Mesh, name string) string {
	if name != "" || mesh == nil || len(mesh.UVLayers) == 0 {
		return name
	}
	return mesh.UVLayers[0]
}

// colorLayer resolves an unnamed vertex color layer like uvLayer.
func colorLayer(mesh *scene.Mesh, name string) string {
	if name != "" || mesh == nil || len(mesh.VertexColors) == 0 {
		return name
	}
	return mesh.VertexColors[0]
}
