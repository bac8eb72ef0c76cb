package export

import (
	"slices"
	"testing"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

func TestPackKeyframes(t *testing.T) {
	tests := []struct {
		name        string
		keys        []scene.Keyframe
		want        []float32
		last        int
		wrongInterp bool
		decimal     bool
	}{
		{
			name: "handles follow interpolation",
			keys: []scene.Keyframe{
				{Co: [2]float64{1, 2}, Interpolation: scene.InterpolationBezier,
					HandleLeft: [2]float64{0, 2}, HandleRight: [2]float64{2, 2}},
				{Co: [2]float64{10, 5}, Interpolation: scene.InterpolationLinear,
					HandleLeft: [2]float64{9, 5}, HandleRight: [2]float64{11, 5}},
				{Co: [2]float64{20, 1}, Interpolation: scene.InterpolationConstant},
			},
			want: []float32{
				interBezier, 1, 2, 2, 2,
				interLinear, 10, 5, 9, 5,
				interConstant, 20, 1,
			},
			last: 10,
		},
		{
			name: "duplicate frame keeps the first point",
			keys: []scene.Keyframe{
				{Co: [2]float64{1, 0}, Interpolation: scene.InterpolationLinear},
				{Co: [2]float64{1, 7}, Interpolation: scene.InterpolationLinear},
				{Co: [2]float64{5, 1}, Interpolation: scene.InterpolationLinear},
			},
			want: []float32{interLinear, 1, 0, interLinear, 5, 1},
			last: 3,
		},
		{
			name: "decimal frame is rounded",
			keys: []scene.Keyframe{
				{Co: [2]float64{2.5, 1}, Interpolation: scene.InterpolationConstant},
			},
			want:    []float32{interConstant, 2, 1},
			decimal: true,
		},
		{
			name: "float noise is tolerated",
			keys: []scene.Keyframe{
				{Co: [2]float64{3.001, 1}, Interpolation: scene.InterpolationConstant},
			},
			want: []float32{interConstant, 3, 1},
		},
		{
			name: "unknown interpolation packs as bezier",
			keys: []scene.Keyframe{
				{Co: [2]float64{1, 1}, Interpolation: "ELASTIC", HandleRight: [2]float64{2, 1}},
			},
			want:        []float32{interBezier, 1, 1, 2, 1},
			wrongInterp: true,
		},
		{
			name: "no keyframes",
			want: []float32{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, last, wrong, decimal := packKeyframes(tt.keys)
			if !slices.Equal(data, tt.want) {
				t.Errorf("data = %v, want %v", data, tt.want)
			}
			if last != tt.last {
				t.Errorf("last = %d, want %d", last, tt.last)
			}
			if wrong != tt.wrongInterp || decimal != tt.decimal {
				t.Errorf("wrongInterp, decimal = %v, %v", wrong, decimal)
			}
		})
	}
}

func TestGroupFCurves(t *testing.T) {
	curves := []scene.FCurve{
		{DataPath: "rotation_euler", ArrayIndex: 0},
		{DataPath: "location", ArrayIndex: 0},
		{DataPath: "location", ArrayIndex: 1},
		{DataPath: "rotation_quaternion", ArrayIndex: 0},
	}
	paths, byPath := groupFCurves(curves)
	if !slices.Equal(paths, []string{"location", "rotation_quaternion"}) {
		t.Errorf("paths = %v", paths)
	}
	if len(byPath["location"]) != 2 {
		t.Errorf("location curves = %d, want 2", len(byPath["location"]))
	}
	if _, ok := byPath["rotation_euler"]; ok {
		t.Error("euler curves kept next to quaternion curves")
	}

	paths, _ = groupFCurves(curves[:3])
	if !slices.Equal(paths, []string{"rotation_euler", "location"}) {
		t.Errorf("paths without quaternion = %v", paths)
	}
}

func TestNumChannels(t *testing.T) {
	g := scene.NewGraph("")
	act := &scene.Action{Datablock: scene.Datablock{Name: "Pulse"}}
	if _, err := g.Add(act); err != nil {
		t.Fatal(err)
	}
	w := &scene.World{
		Datablock: scene.Datablock{Name: "World"},
		NodeTree: &scene.NodeTree{
			Nodes: []scene.Node{
				{Name: "Tint", Type: scene.NodeRGB},
				{Name: "Strength", Type: "VALUE"},
			},
			Action: scene.Ref{Name: "Pulse", ID: act.ID},
		},
	}
	if _, err := g.Add(w); err != nil {
		t.Fatal(err)
	}
	ec := &ExportContext{graph: g}

	tests := []struct {
		path string
		want int
	}{
		{"location", 8},
		{"delta_scale", 8},
		{"color", 3},
		{"b4w_fog_color", 3},
		{"energy", 1},
		{`nodes["Tint"].outputs[0].default_value`, 3},
		{`nodes["Strength"].outputs[0].default_value`, 1},
		{`nodes["Missing"].outputs[0].default_value`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ec.numChannels(act, tt.path); got != tt.want {
				t.Errorf("numChannels = %d, want %d", got, tt.want)
			}
		})
	}
}
