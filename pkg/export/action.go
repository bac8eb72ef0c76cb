package export

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Keyframe interpolation codes written to the float buffer.
const (
	interBezier   = 0
	interLinear   = 1
	interConstant = 2
)

// decimalFrameTolerance absorbs float noise on long timelines.
const decimalFrameTolerance = 0.003

var nodePathName = regexp.MustCompile(`"([^"]*)"`)

// exportActions exports every action that has no baked twin. Baked twins
// are exported in place of the actions they were baked from.
func (ec *ExportContext) exportActions() error {
	for _, act := range scene.All[*scene.Action](ec.graph) {
		if _, baked := ec.graph.Lookup(scene.KindAction, act.Name+BakedSuffix, act.Library); baked {
			continue
		}
		if err := ec.ctx.Err(); err != nil {
			return err
		}
		ec.exportAction(act)
	}
	return nil
}

// exportAction packs the keyframes of every F-curve into the float buffer.
// Each curve is stored as interpolation code, point, and the handles the
// runtime needs: the left one after a bezier point, the right one on a
// bezier point.
func (ec *ExportContext) exportAction(act *scene.Action) {
	ref, todo := ec.begin(act)
	if !todo {
		return
	}
	if len(act.FCurves) == 0 {
		ec.warn("The action %q has no fcurves.", act.Name)
	}

	paths, byPath := groupFCurves(act.FCurves)
	fcurves := document.NewRecord()
	wrongInterpolation, decimalFrames := false, false

	for _, path := range paths {
		isScale := strings.Contains(path, "scale")
		isNode := strings.HasPrefix(path, "nodes")
		channels := ec.numChannels(act, path)

		var channelsRec *document.Record
		for _, fc := range byPath[path] {
			if channelsRec == nil {
				channelsRec = document.NewRecord()
				fcurves.Set(path, channelsRec)
			} else if isScale {
				// uniform scale: the first channel stands for all three
				continue
			}
			index := fc.ArrayIndex
			if isScale {
				index = 0
			} else if isNode && index == channels {
				break
			}

			data, last, wrong, decimal := packKeyframes(fc.Keyframes)
			wrongInterpolation = wrongInterpolation || wrong
			decimalFrames = decimalFrames || decimal

			channelsRec.Set(strconv.Itoa(index), document.NewRecord().
				Set("bin_data_pos", ec.blobs.AppendFloat32(data)).
				Set("last_frame_offset", last).
				Set("num_channels", channels))
		}
	}

	if wrongInterpolation {
		ec.err("Wrong F-Curve interpolation mode for %s. Only BEZIER, LINEAR or CONSTANT mode is allowed for F-Curve interpolation. Switch to BEZIER.",
			act.Name)
	}
	if decimalFrames {
		ec.err("The %q action has decimal frames. Converted to integer.", act.Name)
	}

	rec := document.NewRecord().
		Set("name", act.Name).
		Set("uuid", ref.UUID).
		Set("frame_range", [2]int{roundFrame(act.FrameRange[0]), roundFrame(act.FrameRange[1])}).
		Set("fcurves", fcurves)
	setProps(rec, act.Props)
	ec.finish(act, rec)
}

// groupFCurves groups curves by data path in first-seen order. Euler
// rotation curves are dropped when quaternion curves exist.
func groupFCurves(curves []scene.FCurve) ([]string, map[string][]scene.FCurve) {
	var paths []string
	byPath := map[string][]scene.FCurve{}
	quat, euler := false, false
	for _, fc := range curves {
		if _, ok := byPath[fc.DataPath]; !ok {
			paths = append(paths, fc.DataPath)
			quat = quat || strings.Contains(fc.DataPath, "rotation_quaternion")
			euler = euler || strings.Contains(fc.DataPath, "rotation_euler")
		}
		byPath[fc.DataPath] = append(byPath[fc.DataPath], fc)
	}
	if quat && euler {
		kept := paths[:0]
		for _, p := range paths {
			if strings.Contains(p, "rotation_euler") {
				delete(byPath, p)
				continue
			}
			kept = append(kept, p)
		}
		paths = kept
	}
	return paths, byPath
}

// numChannels returns the number of channels the runtime reads for path.
func (ec *ExportContext) numChannels(act *scene.Action, path string) int {
	switch {
	case strings.Contains(path, "scale"), strings.Contains(path, "location"),
		strings.Contains(path, "rotation_quaternion"), strings.Contains(path, "rotation_euler"):
		return 8
	case strings.HasPrefix(path, "color"), strings.HasPrefix(path, "horizon_color"),
		strings.HasPrefix(path, "zenith_color"), strings.HasPrefix(path, "b4w_fog_color"):
		return 3
	case strings.HasPrefix(path, "nodes"):
		m := nodePathName.FindStringSubmatch(path)
		if m == nil {
			return 1
		}
		if n, ok := ec.nodeChannels(act, m[1]); ok {
			return n
		}
	}
	return 1
}

// nodeChannels finds the node animated by act in the trees of materials,
// worlds and node groups. RGB nodes have three channels.
func (ec *ExportContext) nodeChannels(act *scene.Action, node string) (int, bool) {
	var trees []*scene.NodeTree
	for _, m := range scene.All[*scene.Material](ec.graph) {
		trees = append(trees, m.NodeTree)
	}
	for _, w := range scene.All[*scene.World](ec.graph) {
		trees = append(trees, w.NodeTree)
	}
	for _, g := range scene.All[*scene.NodeGroup](ec.graph) {
		trees = append(trees, &g.NodeTree)
	}
	for _, t := range trees {
		if t == nil || t.Action.ID != act.ID {
			continue
		}
		if n, ok := t.Node(node); ok {
			if n.Type == scene.NodeRGB {
				return 3, true
			}
			return 1, true
		}
	}
	return 0, false
}

// packKeyframes flattens keyframes for the float buffer. Points sharing a
// frame keep the first one. It also returns the offset of the last point
// and whether interpolations or frames had to be corrected.
func packKeyframes(keys []scene.Keyframe) (data []float32, last int, wrongInterp, decimal bool) {
	data = []float32{}
	seen := map[float64]bool{}
	var prev *scene.Keyframe
	for i := range keys {
		k := &keys[i]
		if seen[k.Co[0]] {
			continue
		}
		seen[k.Co[0]] = true

		code := interBezier
		switch k.Interpolation {
		case scene.InterpolationBezier:
		case scene.InterpolationLinear:
			code = interLinear
		case scene.InterpolationConstant:
			code = interConstant
		default:
			wrongInterp = true
		}

		frame := math.RoundToEven(k.Co[0])
		if math.Abs(frame-k.Co[0]) > decimalFrameTolerance {
			decimal = true
		}

		if i == len(keys)-1 {
			last = len(data)
		}
		data = append(data, float32(code), float32(frame), float32(k.Co[1]))
		if prev != nil && prev.Interpolation != scene.InterpolationLinear && prev.Interpolation != scene.InterpolationConstant {
			data = append(data, float32(k.HandleLeft[0]), float32(k.HandleLeft[1]))
		}
		if code == interBezier {
			data = append(data, float32(k.HandleRight[0]), float32(k.HandleRight[1]))
		}
		prev = k
	}
	return data, last, wrongInterp, decimal
}

func roundFrame(f float64) int {
	return int(math.RoundToEven(f))
}
