package export

import (
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// vehicles collects the exported part records of every named vehicle.
type vehicles struct {
	names []string
	parts map[string]map[scene.VehiclePart][]*document.Record
}

func (v *vehicles) init() {
	v.names = nil
	v.parts = make(map[string]map[scene.VehiclePart][]*document.Record)
}

func (v *vehicles) store(name string, part scene.VehiclePart, rec *document.Record) {
	parts, ok := v.parts[name]
	if !ok {
		parts = make(map[scene.VehiclePart][]*document.Record)
		v.parts[name] = parts
		v.names = append(v.names, name)
	}
	parts[part] = append(parts[part], rec)
}

func (v *vehicles) has(name string, part scene.VehiclePart) bool {
	return len(v.parts[name][part]) > 0
}

// checkVehicles disables every part of a vehicle that lacks a body, wheels
// for a chassis or bobs for a hull.
func (ec *ExportContext) checkVehicles() {
	v := &ec.vehicles
	for _, name := range v.names {
		chassis, hull := v.has(name, scene.PartChassis), v.has(name, scene.PartHull)
		wheels := v.has(name, scene.PartWheelFrontLeft) || v.has(name, scene.PartWheelFrontRight) ||
			v.has(name, scene.PartWheelBackLeft) || v.has(name, scene.PartWheelBackRight)

		switch {
		case !chassis && !hull:
			ec.err("Incomplete vehicle. The %q vehicle doesn't have any chassis or hull", name)
		case chassis && !wheels:
			ec.err("Incomplete vehicle. The %q vehicle requires at least one wheel", name)
		case hull && !v.has(name, scene.PartBob):
			ec.err("Incomplete vehicle. The %q vehicle requires at least one bob", name)
		default:
			continue
		}
		for _, recs := range v.parts[name] {
			for _, rec := range recs {
				rec.Set("b4w_vehicle", false).Set("b4w_vehicle_settings", nil)
			}
		}
	}
}
