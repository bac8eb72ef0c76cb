package export

import (
	"fmt"
	"slices"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Names of the synthesized blocks.
const (
	FallbackMaterial = "FALLBACK_MATERIAL"
	DefaultMaterial  = "DEFAULT"
	FallbackTexture  = "FALLBACK_TEXTURE"
	FallbackCamera   = "FALLBACK_CAMERA"
	FallbackWorld    = "FALLBACK_WORLD"
)

// fallbacks caches the blocks synthesized during one run. Each one is added
// to the graph on first use and released with the rest of the context.
type fallbacks struct {
	material        *scene.Material
	defaultMaterial *scene.Material
	texture         *scene.Texture
	camera          *scene.Object
	world           *scene.World
}

// synthesize adds b to the graph under name, or under the first free
// "name.NNN" when a scene block already uses it.
func (ec *ExportContext) synthesize(b scene.Block, name string) {
	d := b.Block()
	d.Name = name
	for i := 1; ; i++ {
		_, err := ec.graph.Add(b)
		if err == nil {
			return
		}
		d.Name = fmt.Sprintf("%s.%03d", name, i)
	}
}

func (ec *ExportContext) fallbackMaterial() *scene.Material {
	if ec.fallbacks.material == nil {
		m := &scene.Material{Type: "SURFACE"}
		m.Props = scene.Props{
			{Key: "diffuse_color", Value: []any{1.0, 0.0, 1.0}},
			{Key: "use_shadeless", Value: true},
		}
		ec.synthesize(m, FallbackMaterial)
		ec.fallbacks.material = m
	}
	return ec.fallbacks.material
}

// defaultMaterial stands in for empty material slots.
func (ec *ExportContext) defaultMaterial() *scene.Material {
	if ec.fallbacks.defaultMaterial == nil {
		m := &scene.Material{Type: "SURFACE"}
		ec.synthesize(m, DefaultMaterial)
		ec.fallbacks.defaultMaterial = m
	}
	return ec.fallbacks.defaultMaterial
}

func (ec *ExportContext) fallbackTexture() *scene.Texture {
	if ec.fallbacks.texture == nil {
		t := &scene.Texture{Type: scene.TextureNone}
		ec.synthesize(t, FallbackTexture)
		ec.fallbacks.texture = t
	}
	return ec.fallbacks.texture
}

// fallbackCamera returns the camera object used by scenes without a valid
// active camera, placed ten units down the view axis.
func (ec *ExportContext) fallbackCamera() *scene.Object {
	if ec.fallbacks.camera == nil {
		cam := &scene.Camera{Type: scene.CameraPerspective}
		ec.synthesize(cam, FallbackCamera)
		obj := &scene.Object{
			Type: scene.ObjectCamera,
			Data: scene.Ref{Name: cam.Name, ID: cam.ID},
		}
		obj.Props = scene.Props{{Key: "location", Value: []any{0.0, 0.0, -10.0}}}
		ec.synthesize(obj, FallbackCamera)
		ec.fallbacks.camera = obj
	}
	return ec.fallbacks.camera
}

func (ec *ExportContext) fallbackWorld() *scene.World {
	if ec.fallbacks.world == nil {
		w := &scene.World{}
		ec.synthesize(w, FallbackWorld)
		ec.fallbacks.world = w
	}
	return ec.fallbacks.world
}

// mainScene returns the name of the first exported scene no texture renders,
// or the first exported scene when every one of them is rendered somewhere.
func (ec *ExportContext) mainScene() string {
	scenes := ec.doc.Collection("scenes")
	for _, s := range scenes {
		rendered := slices.ContainsFunc(ec.rendered, func(t *scene.Texture) bool {
			return t.SourceID == s.Name()
		})
		if !rendered {
			return s.Name()
		}
	}
	return scenes[0].Name()
}

// checkMainScene replaces every texture rendering the main scene, and every
// material using such a texture, by the fallbacks. The fallback material
// takes over the display name of the material it replaces. References to the
// removed records are rewritten to the replacements.
func (ec *ExportContext) checkMainScene() error {
	if len(ec.rendered) == 0 {
		return nil
	}
	main := ec.mainScene()

	conflicts := 0
	for _, tex := range ec.rendered {
		if tex.SourceID != main {
			continue
		}
		for _, mat := range ec.textureUsers(tex) {
			n, err := ec.replaceMaterial(mat, main)
			if err != nil {
				return err
			}
			conflicts += n
		}
		if err := ec.replaceTexture(tex, main); err != nil {
			return err
		}
		ec.warnWorldUsers(tex)
	}
	if conflicts > 1 {
		ec.warn("The main scene %q is rendered by %d materials. All of them have been replaced by the fallback material.",
			main, conflicts)
	}
	return nil
}

// textureUsers lists the materials referencing tex through a texture slot or
// a texture node, including nodes inside the groups their trees use.
func (ec *ExportContext) textureUsers(tex *scene.Texture) []*scene.Material {
	var users []*scene.Material
	for _, m := range scene.All[*scene.Material](ec.graph) {
		uses := slices.ContainsFunc(m.TextureSlots, func(s scene.TextureSlot) bool {
			return s.Texture.ID == tex.ID
		})
		if !uses && m.NodeTree != nil {
			uses = ec.treeUses(m.NodeTree, tex)
		}
		if uses {
			users = append(users, m)
		}
	}
	return users
}

// treeUses reports whether a texture node of tree, or of a group it uses,
// points at tex.
func (ec *ExportContext) treeUses(tree *scene.NodeTree, tex *scene.Texture) bool {
	found := false
	ec.eachNode(tree, func(_ *scene.NodeTree, n *scene.Node) bool {
		found = n.Type == scene.NodeTexture && n.Texture.ID == tex.ID
		return !found
	})
	return found
}

// warnWorldUsers reports the worlds whose node trees use tex. Their texture
// nodes follow the texture to its replacement.
func (ec *ExportContext) warnWorldUsers(tex *scene.Texture) {
	for _, w := range scene.All[*scene.World](ec.graph) {
		if w.NodeTree == nil || !ec.treeUses(w.NodeTree, tex) {
			continue
		}
		if _, ok := ec.doc.Find("worlds", ec.uuid(w, "")); ok {
			ec.warn("World %q uses the %q texture rendering the main scene. It has been replaced by the default texture.",
				w.Name, tex.Name)
		}
	}
}

// replaceMaterial swaps every exported variant of mat for a renamed fallback
// material and returns the number of variants replaced.
func (ec *ExportContext) replaceMaterial(mat *scene.Material, main string) (int, error) {
	source := ec.uuid(mat, "")
	removed := ec.doc.RemoveWhere("materials", func(r *document.Record) bool {
		return r.GetString("source_uuid") == source
	})
	if len(removed) == 0 {
		return 0, nil
	}
	ec.err("The main scene %q can not be rendered by another scene. Material %q has been removed.",
		main, mat.Name)

	fb := ec.fallbackMaterial()
	for _, old := range removed {
		ec.records.Forget(old.UUID())
		id := identity.Of(scene.KindMaterial, fb.Name, identity.Owner(ec.graph, fb), old.UUID())
		ref, err := ec.exportMaterial(fb, id)
		if err != nil {
			return 0, err
		}
		if rec, ok := ec.record(ref); ok {
			rec.Set("name", mat.Name)
		}
		ec.doc.RewriteRefs(old.UUID(), id)
	}
	return len(removed), nil
}

// replaceTexture swaps the exported tex for the fallback texture.
func (ec *ExportContext) replaceTexture(tex *scene.Texture, main string) error {
	old := ec.uuid(tex, "")
	if len(ec.doc.Remove("textures", old)) == 0 {
		return nil
	}
	ec.err("The main scene %q can not be rendered by another scene. Texture %q has been removed.",
		main, tex.Name)
	ec.records.Forget(old)

	fb := ec.fallbackTexture()
	id := identity.Of(scene.KindTexture, fb.Name, identity.Owner(ec.graph, fb), old)
	if _, err := ec.exportTexture(fb, id); err != nil {
		return err
	}
	ec.doc.RewriteRefs(old, id)
	return nil
}
