package export

import (
	"strings"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// HairSuffix is appended to the names of objects and groups exported as
// hair particle duplicates.
const HairSuffix = "_HAIR_DUPLI"

// BakedSuffix marks an action baked from another one.
const BakedSuffix = "_B4W_BAKED"

// exportObject serializes obj in the given category and returns a reference
// to its record. An object already entered in the category resolves to the
// reference of the first walk.
func (ec *ExportContext) exportObject(obj *scene.Object, cat identity.Category) (document.Ref, error) {
	ref := ec.refTo(obj, cat.Salt())
	if !ec.visited.Begin(obj.ID, cat) {
		return ref, nil
	}
	ec.objects.Push(obj)
	defer ec.objects.Pop()

	hair := cat == identity.Hair
	name := obj.Name
	if hair {
		name += HairSuffix
	}

	typ, data := ec.objectType(obj, cat == identity.Curve)

	rec := document.NewRecord().
		Set("name", name).
		Set("uuid", ref.UUID).
		Set("type", string(typ))
	if obj.Type == scene.ObjectFont && typ == scene.ObjectMesh {
		rec.Set("body_text", obj.BodyText)
	} else {
		rec.Set("body_text", nil)
	}

	dataRef, err := ec.exportObjectData(obj, data)
	if err != nil {
		return ref, err
	}
	rec.Set("data", dataRef)

	var proxy document.Ref
	if p, ok := ec.validObject(obj.Proxy); ok {
		if proxy, err = ec.exportObject(p, identity.Plain); err != nil {
			return ref, err
		}
	}
	rec.Set("proxy", proxy)

	dupli, err := ec.objectDupliGroup(obj, name)
	if err != nil {
		return ref, err
	}
	rec.Set("dupli_group", dupli)

	var parent document.Ref
	if p, ok := ec.validObject(obj.Parent); ok && !hair {
		if parent, err = ec.exportObject(p, identity.Plain); err != nil {
			return ref, err
		}
	}
	rec.Set("parent", parent)
	setProps(rec, obj.Props)

	groups := obj.VertexGroups
	if groups == nil {
		groups = []string{}
	}
	rec.Set("vertex_groups", groups)

	modifiers := []*document.Record{}
	if typ == scene.ObjectMesh {
		if modifiers, err = ec.exportModifiers(obj); err != nil {
			return ref, err
		}
	}
	rec.Set("modifiers", modifiers)

	if hair {
		rec.Set("constraints", []*document.Record{}).
			Set("particle_systems", []*document.Record{}).
			Set("animation_data", document.NewRecord().
				Set("action", nil).
				Set("nla_tracks", []any{}))
	} else {
		constraints, err := ec.exportConstraints(obj)
		if err != nil {
			return ref, err
		}
		psys, err := ec.exportParticleSystems(obj)
		if err != nil {
			return ref, err
		}
		rec.Set("constraints", constraints).
			Set("particle_systems", psys).
			Set("animation_data", ec.animationData(obj.Action))
	}

	lods := []*document.Record{}
	if !hair {
		if lods, err = ec.exportLODs(obj); err != nil {
			return ref, err
		}
	}
	rec.Set("lod_levels", lods)

	if v := obj.Vehicle; v != nil && !hair {
		settings := document.NewRecord().
			Set("name", v.Name).
			Set("part", string(v.Part))
		setProps(settings, v.Props)
		rec.Set("b4w_vehicle", true).Set("b4w_vehicle_settings", settings)
		ec.vehicles.store(v.Name, v.Part, rec)
	} else {
		rec.Set("b4w_vehicle", false).Set("b4w_vehicle_settings", nil)
	}

	ec.register(obj, rec)
	ec.visited.Finish(obj.ID, cat)
	return ref, nil
}

// objectType returns the exported type of obj and the block its data is
// taken from. Objects whose data cannot be rendered become EMPTY.
func (ec *ExportContext) objectType(obj *scene.Object, asCurve bool) (scene.ObjectType, scene.Block) {
	if obj.Type == scene.ObjectEmpty {
		if obj.LineRenderer {
			return scene.ObjectLine, nil
		}
		return scene.ObjectEmpty, nil
	}

	raw := ec.graph.Block(obj.Data.ID)
	if raw == nil || raw.Block().Kind != obj.Type.DataKind() {
		ec.err("Object %s has no data or data is broken. Change object type to EMPTY.", obj.Name)
		return scene.ObjectEmpty, nil
	}

	typ := obj.Type
	var data scene.Block = raw
	switch obj.Type {
	case scene.ObjectMesh, scene.ObjectMeta:
		typ = scene.ObjectMesh
		if raw.(*scene.Mesh).Polygons == 0 {
			typ = scene.ObjectEmpty
		}
	case scene.ObjectSurface, scene.ObjectFont, scene.ObjectCurve:
		if obj.Type == scene.ObjectCurve && asCurve {
			break
		}
		typ = scene.ObjectEmpty
		if mesh, ok := scene.Deref[*scene.Mesh](ec.graph, raw.(*scene.Curve).Mesh); ok && mesh.Polygons > 0 {
			typ, data = scene.ObjectMesh, mesh
		}
	case scene.ObjectSpeaker:
		if _, ok := scene.Deref[*scene.Sound](ec.graph, raw.(*scene.Speaker).Sound); !ok {
			typ = scene.ObjectEmpty
		}
	}

	if typ == scene.ObjectEmpty {
		if obj.Type == scene.ObjectSpeaker {
			ec.warn("Sound file is missing in the SPEAKER object %q. Converted to EMPTY.", obj.Name)
		} else {
			ec.warn("Object %q hasn't renderable data. Converted to EMPTY.", obj.Name)
		}
		return typ, nil
	}
	return typ, data
}

// exportObjectData walks the data block of an object of the exported type.
func (ec *ExportContext) exportObjectData(obj *scene.Object, data scene.Block) (document.Ref, error) {
	switch d := data.(type) {
	case *scene.Mesh:
		return ec.exportMesh(d, obj)
	case *scene.Curve:
		return ec.exportCurve(d), nil
	case *scene.Armature:
		return ec.exportArmature(d), nil
	case *scene.Camera:
		return ec.exportCamera(d), nil
	case *scene.Lamp:
		return ec.exportLamp(d), nil
	case *scene.Speaker:
		return ec.exportSpeaker(d)
	}
	return document.Ref{}, nil
}

// objectDupliGroup exports the dupli group of a GROUP dupli object. A group
// without exportable objects is reported and dropped.
func (ec *ExportContext) objectDupliGroup(obj *scene.Object, name string) (document.Ref, error) {
	if obj.DupliType != DupliGroupType {
		return document.Ref{}, nil
	}
	grp, ok := scene.Deref[*scene.Group](ec.graph, obj.DupliGroup)
	if !ok {
		return document.Ref{}, nil
	}
	ref, err := ec.exportGroup(grp, false)
	if err != nil {
		return ref, err
	}
	if rec, ok := ec.record(ref); ok {
		objs, _ := rec.Get("objects")
		if refs, _ := objs.([]document.Ref); len(refs) == 0 {
			ec.err("Dupli group error for object %s. Objects from the %q dupli group on the object %q cannot be exported.",
				obj.Name, rec.Name(), name)
			return document.Ref{}, nil
		}
	}
	return ref, nil
}

// animationData returns the animation_data record for an animated block, or
// nil when no action is assigned. A baked twin of the action is preferred.
func (ec *ExportContext) animationData(action scene.Ref) any {
	act, ok := scene.Deref[*scene.Action](ec.graph, action)
	if !ok {
		return nil
	}
	return document.NewRecord().
		Set("action", ec.refTo(ec.selectAction(act), "")).
		Set("nla_tracks", []any{})
}

func (ec *ExportContext) selectAction(act *scene.Action) *scene.Action {
	if strings.HasSuffix(act.Name, BakedSuffix) {
		return act
	}
	if id, ok := ec.graph.Lookup(scene.KindAction, act.Name+BakedSuffix, act.Library); ok {
		if baked, ok := scene.Get[*scene.Action](ec.graph, id); ok {
			return baked
		}
	}
	return act
}

// exportLODs exports the level-of-detail chain of MESH and EMPTY objects.
// Levels after the first one without an object are dropped.
func (ec *ExportContext) exportLODs(obj *scene.Object) ([]*document.Record, error) {
	out := []*document.Record{}
	if obj.Type != scene.ObjectMesh && obj.Type != scene.ObjectEmpty {
		return out, nil
	}
	targetSet := true
	for _, lod := range obj.LODLevels {
		if !targetSet {
			ec.err("Ignoring LODs after empty LOD for the %q object.", obj.Name)
			break
		}
		if lod.Object.ID == obj.ID {
			continue
		}
		rec := document.NewRecord().Set("distance", lod.Distance)
		var target document.Ref
		if o, ok := ec.validObject(lod.Object); ok {
			var err error
			if target, err = ec.exportObject(o, identity.Plain); err != nil {
				return nil, err
			}
		}
		rec.Set("object", target)
		setProps(rec, lod.Props)
		out = append(out, rec)

		if !lod.Object.Valid() {
			targetSet = false
		}
	}
	return out, nil
}
