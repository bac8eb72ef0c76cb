package export

import (
	"strings"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// missingWeight is the name the host gives dupli weights it could not
// resolve.
const missingWeight = "No object"

// exportParticleSystems exports the particle systems of obj whose settings
// could be exported with a render type the runtime can draw. Hair transforms
// go to the sidecar only for systems that are kept.
func (ec *ExportContext) exportParticleSystems(obj *scene.Object) ([]*document.Record, error) {
	out := []*document.Record{}
	for _, ps := range obj.ParticleSystems {
		settings, ok := exportable[*scene.ParticleSettings](ec.graph, ps.Settings)
		if !ok {
			continue
		}
		keep, err := ec.exportParticleSettings(settings)
		if err != nil {
			return nil, err
		}
		if !keep || !ec.particleRenderTypeValid(obj, ps.Name, settings) {
			continue
		}

		rec := document.NewRecord().
			Set("name", ps.Name).
			Set("seed", ps.Seed)
		if settings.Type == scene.ParticlesHair && len(ps.Transforms) > 0 {
			rec.Set("transforms", ec.blobs.AppendFloat32(ps.Transforms))
		} else {
			rec.Set("transforms", []int{0, 0})
		}
		setProps(rec, ps.Props)
		rec.Set("settings", ec.refTo(settings, ""))
		out = append(out, rec)
	}
	return out, nil
}

// exportParticleSettings reports whether the settings were exported. A
// second call returns the outcome of the first.
func (ec *ExportContext) exportParticleSettings(p *scene.ParticleSettings) (bool, error) {
	uuid := ec.uuid(p, "")
	if !ec.visited.Begin(p.ID, identity.Plain) {
		return ec.records.IsRegistered(uuid), nil
	}

	rec := document.NewRecord().
		Set("name", p.Name).
		Set("uuid", uuid).
		Set("type", p.Type).
		Set("render_type", p.RenderType)
	setProps(rec, p.Props)

	slots, err := ec.particleTextureSlots(p)
	if err != nil {
		return false, err
	}
	rec.Set("texture_slots", slots)

	hair := p.Type == scene.ParticlesHair

	var dupliObject document.Ref
	if hair && p.RenderType == scene.RenderObject {
		o, ok := scene.Deref[*scene.Object](ec.graph, p.DupliObject)
		switch {
		case !ok:
			ec.err("Particle system error for %s. Dupli object isn't specified.", p.Name)
			return false, nil
		case !ec.particleObjectValid(o):
			ec.err("Particle system error for %s. Wrong dupli object type '%s", p.Name, o.Type)
			return false, nil
		case !o.Exported():
			ec.err("Particle system error for %s. Dupli object %s has not been exported.", p.Name, o.Name)
			return false, nil
		}
		if dupliObject, err = ec.exportObject(o, identity.Hair); err != nil {
			return false, err
		}
	}
	rec.Set("dupli_object", dupliObject)

	weights := []*document.Record{}
	if hair && p.RenderType == scene.RenderGroup {
		grp, ok := scene.Deref[*scene.Group](ec.graph, p.DupliGroup)
		if !ok {
			ec.err("Particle system error for particle %s. Dupli group isn't specified", p.Name)
			return false, nil
		}
		ref, err := ec.exportGroup(grp, true)
		if err != nil {
			return false, err
		}
		if grec, ok := ec.record(ref); ok {
			objs, _ := grec.Get("objects")
			if refs, _ := objs.([]document.Ref); len(refs) == 0 {
				ec.err("Particle system error for particle %s. The %q dupli group contains no valid object for export",
					p.Name, grec.Name())
				return false, nil
			}
		}
		if p.UseGroupCount {
			if weights, err = ec.dupliWeights(p, grp); err != nil {
				return false, err
			}
		}
		rec.Set("dupli_group", ref).Set("use_group_count", p.UseGroupCount)
	} else {
		rec.Set("dupli_group", nil).Set("use_group_count", nil)
	}
	rec.Set("dupli_weights", weights)

	ec.register(p, rec)
	ec.visited.Finish(p.ID, identity.Plain)
	return true, nil
}

// particleTextureSlots exports the texture slots of particle settings.
// Textures rendering a scene are replaced by the fallback texture.
func (ec *ExportContext) particleTextureSlots(p *scene.ParticleSettings) ([]*document.Record, error) {
	out := []*document.Record{}
	for _, slot := range p.TextureSlots {
		if !slot.Texture.IsSet() {
			ec.err("No texture for the %q particle settings texture slot.", p.Name)
			continue
		}
		tex, ok := exportable[*scene.Texture](ec.graph, slot.Texture)
		if !ok {
			continue
		}
		rec := document.NewRecord()
		if tex.RendersScene() {
			tex = ec.fallbackTexture()
			ec.warn("%q particle settings has the %q texture rendering a scene. It has been replaced by the default texture.",
				p.Name, slot.Texture.Name)
		}
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

// dupliWeights returns the instance counts of the group members that are
// exported. Weights are index aligned with the group's objects.
func (ec *ExportContext) dupliWeights(p *scene.ParticleSettings, grp *scene.Group) ([]*document.Record, error) {
	out := []*document.Record{}
	for i, w := range p.DupliWeights {
		if i >= len(grp.Objects) {
			break
		}
		if _, ok := ec.validObject(grp.Objects[i]); !ok {
			continue
		}
		if w.Name == missingWeight {
			return nil, errors.NewExportError("Missing particles dupli weights in particle system.",
				p.Name, "ParticleSettings", "Exporting via command line linked particles are exported wrong")
		}
		parts := strings.Split(w.Name, ": ")
		origin := strings.Join(parts[:len(parts)-1], "")
		out = append(out, document.NewRecord().
			Set("name", origin+HairSuffix).
			Set("count", w.Count))
	}
	return out, nil
}

// particleObjectValid reports whether o can be instanced by hair particles:
// a MESH object with polygons.
func (ec *ExportContext) particleObjectValid(o *scene.Object) bool {
	if o.Type != scene.ObjectMesh {
		return false
	}
	m, ok := scene.Deref[*scene.Mesh](ec.graph, o.Data)
	return ok && m.Polygons > 0
}

// particleRenderTypeValid reports whether the runtime can draw the render
// type of p for its particle type. Systems that fail are reported.
func (ec *ExportContext) particleRenderTypeValid(obj *scene.Object, system string, p *scene.ParticleSettings) bool {
	typ, rt := p.Type, p.RenderType
	bad := typ == scene.ParticlesHair && rt != scene.RenderObject && rt != scene.RenderGroup ||
		typ == scene.ParticlesEmitter && rt != scene.RenderHalo && rt != scene.RenderBillboard
	if bad {
		ec.err("Particle system error. Unsupported render type %q for the %s particles %q on object %q. Particle system removed.",
			rt, typ, system, obj.Name)
	}
	return !bad
}
