package export

import (
	"fmt"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/messages"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// DupliGroupType is the object dupli type that instances a group.
const DupliGroupType = "GROUP"

// numberDupliGroups gives every object the numbers of the dupli groups it
// is placed in. Each scene is one group; every GROUP dupli opens a new one.
// Armature modifiers are only kept when the armature shares a number with
// the deformed object.
func (ec *ExportContext) numberDupliGroups() {
	counter := 0
	open := make(map[scene.ID]bool)

	var number func(objects []scene.Ref, n int)
	number = func(objects []scene.Ref, n int) {
		for _, r := range objects {
			obj, ok := scene.Deref[*scene.Object](ec.graph, r)
			if !ok {
				continue
			}
			if obj.DupliType == DupliGroupType {
				if grp, ok := scene.Deref[*scene.Group](ec.graph, obj.DupliGroup); ok && !open[grp.ID] {
					counter++
					open[grp.ID] = true
					number(grp.Objects, counter)
					delete(open, grp.ID)
				}
			}
			ec.dupliIDs[obj.ID] = append(ec.dupliIDs[obj.ID], n)
		}
	}
	for _, sc := range scene.All[*scene.Scene](ec.graph) {
		number(sc.Objects, counter)
		counter++
	}
}

// exportScene serializes one scene and everything reachable from it.
func (ec *ExportContext) exportScene(sc *scene.Scene) error {
	if !ec.visited.Begin(sc.ID, identity.Plain) {
		return nil
	}
	ec.scenes.Push(sc)
	defer ec.scenes.Pop()
	defer func() { ec.curveObjects = nil }()

	rec := document.NewRecord().
		Set("name", sc.Name).
		Set("uuid", ec.uuid(sc, ""))
	setProps(rec, sc.Props)

	objects := []document.Ref{}
	for _, r := range sc.Objects {
		obj, ok := ec.validObject(r)
		if !ok {
			continue
		}
		ref, err := ec.exportObject(obj, identity.Plain)
		if err != nil {
			return err
		}
		objects = append(objects, ref)
	}

	var camera document.Ref
	if obj, ok := ec.validObject(sc.Camera); ok && obj.Type == scene.ObjectCamera {
		ref, err := ec.exportObject(obj, identity.Plain)
		if err != nil {
			return err
		}
		camera = ref
	}

	var world document.Ref
	if w, ok := exportable[*scene.World](ec.graph, sc.World); ok {
		ref, err := ec.exportWorld(w)
		if err != nil {
			return err
		}
		world = ref
	}

	var markers any
	if len(sc.Markers) > 0 {
		m := document.NewRecord()
		for _, mk := range sc.Markers {
			m.Set(mk.Name, mk.Frame)
		}
		markers = m
	}

	objects = append(objects, ec.curveObjects...)

	if camera.IsNull() {
		ref, err := ec.exportObject(ec.fallbackCamera(), identity.Plain)
		if err != nil {
			return err
		}
		camera = ref
		objects = append(objects, ref)
		ec.sink.WarnScope(fmt.Sprintf(`Missing active camera or wrong active camera object in %q.`, sc.Name), messages.Primary)
	}
	if world.IsNull() {
		ref, err := ec.exportWorld(ec.fallbackWorld())
		if err != nil {
			return err
		}
		world = ref
		ec.sink.WarnScope(fmt.Sprintf(`Missing world or wrong active world object in %q.`, sc.Name), messages.Primary)
	}

	rec.Set("objects", objects).
		Set("camera", camera).
		Set("world", world).
		Set("frame_start", sc.FrameStart).
		Set("frame_end", sc.FrameEnd).
		Set("timeline_markers", markers)

	ec.register(sc, rec)
	ec.visited.Finish(sc.ID, identity.Plain)
	ec.logger.Debug("exported scene", "scene", sc.Name, "objects", len(objects))
	return nil
}
