package export

import (
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// begin enters a data block that is exported once per run. It returns the
// block's reference and whether the caller has to build the record.
func (ec *ExportContext) begin(b scene.Block) (document.Ref, bool) {
	return ec.refTo(b, ""), ec.visited.Begin(b.Block().ID, identity.Plain)
}

func (ec *ExportContext) finish(b scene.Block, rec *document.Record) {
	ec.register(b, rec)
	ec.visited.Finish(b.Block().ID, identity.Plain)
}

func (ec *ExportContext) exportCamera(cam *scene.Camera) document.Ref {
	ref, todo := ec.begin(cam)
	if !todo {
		return ref
	}
	typ := cam.Type
	if typ == scene.CameraPanoramic {
		ec.warn("The %q camera has unsupported PANORAMIC type. Changed to PERSPECTIVE type.", cam.Name)
		typ = scene.CameraPerspective
	}
	rec := document.NewRecord().
		Set("name", cam.Name).
		Set("uuid", ref.UUID).
		Set("type", typ)
	setProps(rec, cam.Props)
	ec.finish(cam, rec)
	return ref
}

func (ec *ExportContext) exportLamp(lamp *scene.Lamp) document.Ref {
	ref, todo := ec.begin(lamp)
	if !todo {
		return ref
	}
	typ := lamp.Type
	if typ == scene.LampArea {
		ec.err("The lamp object %q has unsupported AREA type. Changed to SUN.", lamp.Name)
		typ = scene.LampSun
	}
	rec := document.NewRecord().
		Set("name", lamp.Name).
		Set("uuid", ref.UUID).
		Set("type", typ).
		Set("animation_data", ec.animationData(lamp.Action))
	setProps(rec, lamp.Props)
	ec.finish(lamp, rec)
	return ref
}

func (ec *ExportContext) exportCurve(c *scene.Curve) document.Ref {
	ref, todo := ec.begin(c)
	if !todo {
		return ref
	}
	splines := make([]*document.Record, 0, len(c.Splines))
	for _, s := range c.Splines {
		splines = append(splines, document.NewRecord().
			Set("type", s.Type).
			Set("use_endpoint_u", s.UseEndpointU))
	}
	rec := document.NewRecord().
		Set("name", c.Name).
		Set("uuid", ref.UUID).
		Set("splines", splines)
	setProps(rec, c.Props)
	ec.finish(c, rec)
	return ref
}

func (ec *ExportContext) exportArmature(a *scene.Armature) document.Ref {
	ref, todo := ec.begin(a)
	if !todo {
		return ref
	}
	rec := document.NewRecord().
		Set("name", a.Name).
		Set("uuid", ref.UUID)
	setProps(rec, a.Props)
	ec.finish(a, rec)
	return ref
}

// exportSpeaker serializes speaker data. A sound that cannot be located is
// reported and dropped from the speaker.
func (ec *ExportContext) exportSpeaker(spk *scene.Speaker) (document.Ref, error) {
	ref, todo := ec.begin(spk)
	if !todo {
		return ref, nil
	}
	var sound document.Ref
	if snd, ok := scene.Deref[*scene.Sound](ec.graph, spk.Sound); ok {
		r, err := ec.exportSound(snd)
		switch {
		case errors.Is(err, errors.ErrCodePath):
			ec.err("%s", errors.UserMessage(err))
		case err != nil:
			return ref, err
		default:
			sound = r
		}
	}
	rec := document.NewRecord().
		Set("name", spk.Name).
		Set("uuid", ref.UUID).
		Set("sound", sound).
		Set("animation_data", ec.animationData(spk.Action))
	setProps(rec, spk.Props)
	ec.finish(spk, rec)
	return ref, nil
}

// exportGroup serializes a group of objects. Groups instanced by hair
// particles are a separate variant whose members are hair duplicates.
func (ec *ExportContext) exportGroup(grp *scene.Group, forParticles bool) (document.Ref, error) {
	cat := identity.Plain
	name := grp.Name
	if forParticles {
		cat = identity.Hair
		name += HairSuffix
	}
	ref := ec.refTo(grp, cat.Salt())
	if !ec.visited.Begin(grp.ID, cat) {
		return ref, nil
	}

	objects := []document.Ref{}
	for _, r := range grp.Objects {
		obj, ok := scene.Deref[*scene.Object](ec.graph, r)
		valid := ok && obj.Exported()
		if valid {
			if forParticles {
				valid = ec.particleObjectValid(obj)
			} else {
				valid = obj.Type.Supported()
			}
		}
		if !valid {
			if forParticles {
				ec.err("Particle system error for object %q. Invalid dupli object %q.", ec.currentObjectName(), r.Name)
			}
			continue
		}
		o, err := ec.exportObject(obj, cat)
		if err != nil {
			return ref, err
		}
		objects = append(objects, o)
	}

	rec := document.NewRecord().
		Set("name", name).
		Set("uuid", ref.UUID).
		Set("objects", objects)
	setProps(rec, grp.Props)
	ec.register(grp, rec)
	ec.visited.Finish(grp.ID, cat)
	return ref, nil
}
