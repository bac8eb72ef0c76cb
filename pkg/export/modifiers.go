package export

import (
	"slices"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// exportModifiers exports the modifier stack of a MESH object. Modifiers
// with broken references are reported and left out.
func (ec *ExportContext) exportModifiers(obj *scene.Object) ([]*document.Record, error) {
	out := []*document.Record{}
	for _, mod := range obj.Modifiers {
		rec := document.NewRecord().Set("name", mod.Name)
		keep, err := ec.exportModifier(rec, mod, obj)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		setProps(rec, mod.Props)
		rec.Set("type", string(mod.Type))
		out = append(out, rec)
	}
	return out, nil
}

func (ec *ExportContext) exportModifier(rec *document.Record, mod scene.Modifier, obj *scene.Object) (bool, error) {
	switch mod.Type {
	case scene.ModifierArmature:
		return ec.armatureModifier(rec, mod, obj)

	case scene.ModifierArray:
		for _, f := range []struct {
			key string
			ref scene.Ref
		}{{"curve", mod.Curve}, {"offset_object", mod.OffsetObject}} {
			var target document.Ref
			if o, ok := scene.Deref[*scene.Object](ec.graph, f.ref); ok && o.Type.Supported() {
				var err error
				if target, err = ec.exportObject(o, identity.Plain); err != nil {
					return false, err
				}
			}
			rec.Set(f.key, target)
		}

	case scene.ModifierCurve:
		o, ok := scene.Deref[*scene.Object](ec.graph, mod.Object)
		if !ok || !o.Type.Supported() {
			ec.err("The %q curve modifier has no curve object. Modifier removed.", mod.Name)
			return false, nil
		}
		ref, err := ec.exportObject(o, identity.Curve)
		if err != nil {
			return false, err
		}
		rec.Set("object", ref)
		ec.curveObjects = append(ec.curveObjects, ref)
		if !ec.nurbsWithEndpoint(o) {
			ec.err("The %q curve modifier has unsupported curve object %q. Modifier removed.", mod.Name, o.Name)
			return false, nil
		}
	}
	return true, nil
}

// armatureModifier keeps an ARMATURE modifier only when its armature is
// exported, not a proxy, and placed in one of the deformed object's groups.
func (ec *ExportContext) armatureModifier(rec *document.Record, mod scene.Modifier, obj *scene.Object) (bool, error) {
	arm, ok := scene.Deref[*scene.Object](ec.graph, mod.Object)
	switch {
	case !ok:
		ec.err("The %q object's %q armature modifier has no armature object. Modifier removed.", obj.Name, mod.Name)
		return false, nil
	case !arm.Exported():
		ec.err("The %q object has the %q armature modifier. Its armature object %q is not exported. Modifier removed.",
			obj.Name, mod.Name, arm.Name)
		return false, nil
	case obj.VertexAnim:
		ec.err("The %q object has the %q armature modifier and a vertex animation. Modifier removed.", obj.Name, mod.Name)
		return false, nil
	case arm.Proxy.Valid():
		ec.err("The %q object has the %q armature modifier. Its armature object %q is a proxy object. Modifier removed.",
			obj.Name, mod.Name, arm.Name)
		return false, nil
	}

	armGroups, placed := ec.dupliIDs[arm.ID]
	if !placed {
		ec.err("The %q object has the %q armature modifier. Its armature object %q is not in group. Modifier removed.",
			obj.Name, mod.Name, arm.Name)
		return false, nil
	}
	objGroups := ec.dupliIDs[obj.ID]
	if !slices.ContainsFunc(armGroups, func(n int) bool { return slices.Contains(objGroups, n) }) {
		ec.err("The %q object has %q armature modifier which references the wrong group. Modifier removed.",
			obj.Name, mod.Name)
		return false, nil
	}

	ref, err := ec.exportObject(arm, identity.Plain)
	if err != nil {
		return false, err
	}
	rec.Set("object", ref)
	return true, nil
}

// nurbsWithEndpoint reports whether the first spline of a curve object is a
// NURBS spline with endpoints.
func (ec *ExportContext) nurbsWithEndpoint(o *scene.Object) bool {
	c, ok := scene.Deref[*scene.Curve](ec.graph, o.Data)
	if !ok || len(c.Splines) == 0 {
		return false
	}
	s := c.Splines[0]
	return s.Type == "NURBS" && s.UseEndpointU
}

// constraintTypes are the exported constraint types. LOCKED_TRACK is only
// exported as a reflection plane.
var constraintTypes = map[scene.ConstraintType]bool{
	scene.ConstraintCopyTransforms: true,
	scene.ConstraintCopyLocation:   true,
	scene.ConstraintCopyRotation:   true,
	scene.ConstraintCopyScale:      true,
	scene.ConstraintTrackTo:        true,
	scene.ConstraintRigidBodyJoint: true,
}

// exportConstraints exports the supported constraints of obj. Constraint
// chains are checked for cycles before any target is walked; an object in
// a cycle loses every targeted constraint.
func (ec *ExportContext) exportConstraints(obj *scene.Object) ([]*document.Record, error) {
	out := []*document.Record{}
	var acyclic *bool

	for _, c := range obj.Constraints {
		if !constraintTypes[c.Type] && !c.IsReflectionPlane() {
			continue
		}
		if c.Mute && !c.IsReflectionPlane() {
			continue
		}
		if acyclic == nil {
			ok := ec.constraintsAcyclic(obj)
			acyclic = &ok
		}
		if !*acyclic {
			ec.err("Object:%q. Constraint recursion is forbidden.", ec.currentObjectName())
			continue
		}
		if c.Invalid && !c.IsReflectionPlane() {
			ec.err("Object:%q > Constraint:%q. Check constraint settings.", ec.currentObjectName(), c.Name)
			continue
		}

		var target document.Ref
		if o, ok := scene.Deref[*scene.Object](ec.graph, c.Target); ok && o.Type.Supported() {
			var err error
			if target, err = ec.exportObject(o, identity.Plain); err != nil {
				return nil, err
			}
		}
		rec := document.NewRecord().
			Set("name", c.Name).
			Set("target", target).
			Set("mute", c.Mute).
			Set("type", string(c.Type))
		setProps(rec, c.Props)
		out = append(out, rec)
	}
	return out, nil
}

// constraintsAcyclic follows valid constraint targets depth first and
// reports false when a target is reached again while still on the path.
func (ec *ExportContext) constraintsAcyclic(obj *scene.Object) bool {
	path := map[scene.ID]bool{obj.ID: true}

	var walk func(o *scene.Object) bool
	walk = func(o *scene.Object) bool {
		for _, c := range o.Constraints {
			if c.Invalid {
				continue
			}
			target, ok := scene.Deref[*scene.Object](ec.graph, c.Target)
			if !ok {
				continue
			}
			if path[target.ID] {
				return false
			}
			path[target.ID] = true
			ok = walk(target)
			delete(path, target.ID)
			if !ok {
				return false
			}
		}
		return true
	}
	return walk(obj)
}
