package export

import (
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// exportWorld serializes a world. Broken texture slots are reported and
// skipped; a broken node tree is reported and left out.
func (ec *ExportContext) exportWorld(w *scene.World) (document.Ref, error) {
	ref, todo := ec.begin(w)
	if !todo {
		return ref, nil
	}

	slots, err := ec.worldTextureSlots(w)
	if err != nil {
		return ref, err
	}
	rec := document.NewRecord().
		Set("name", w.Name).
		Set("uuid", ref.UUID).
		Set("texture_slots", slots).
		Set("use_nodes", w.UseNodes)
	setProps(rec, w.Props)
	rec.Set("animation_data", ec.animationData(w.Action))

	var state treeState
	var tree any
	if w.UseNodes && w.NodeTree != nil {
		frag, err := ec.exportNodeTree(w.NodeTree, w.Name, &state, false)
		switch {
		case errors.Is(err, errors.ErrCodeMaterial):
			ec.err("%s", errors.UserMessage(err))
		case err != nil:
			return ref, err
		default:
			tree = frag
		}
	}
	rec.Set("use_orco_tex_coord", state.orco).
		Set("uv_vc_key", state.key).
		Set("node_tree", tree)

	ec.finish(w, rec)
	return ref, nil
}

// worldTextureSlots exports the sky textures of a world. Slots with other
// uses are ignored.
func (ec *ExportContext) worldTextureSlots(w *scene.World) ([]*document.Record, error) {
	out := []*document.Record{}
	for _, slot := range w.TextureSlots {
		if slot.Disabled {
			continue
		}
		if !slot.Texture.IsSet() {
			ec.err("No texture in the %q world texture slot.", w.Name)
			continue
		}
		tex, ok := exportable[*scene.Texture](ec.graph, slot.Texture)
		if !ok || tex.UseSky == "" || tex.UseSky == SkyOff {
			continue
		}
		if tex.Type != scene.TextureEnvironmentMap {
			ec.err("%s texture type is not supported for world %q.", tex.Type, w.Name)
			continue
		}
		if img, ok := scene.Deref[*scene.Image](ec.graph, tex.Image); ok && img.Source == ImageMovie {
			ec.err("Environment map in the %q world texture slot cannot be a movie.", w.Name)
			continue
		}

		rec := document.NewRecord().Set("texture_coords", slot.TextureCoords)
		setProps(rec, slot.Props)
		ref, err := ec.exportTexture(tex, "")
		if err != nil {
			return nil, err
		}
		rec.Set("texture", ref)
		out = append(out, rec)
	}
	return out, nil
}

// ImageMovie is the image source of video textures.
const ImageMovie = "MOVIE"
