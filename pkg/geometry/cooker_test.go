package geometry

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

func triangle() scene.Geometry {
	return scene.Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Texcoords: []float32{0, 0, 1, 0, 0, 1},
		Indices:   []int32{0, 1, 2},
	}
}

func TestCookTriangle(t *testing.T) {
	sm, err := DefaultCooker{}.Cook(context.Background(), Request{Mesh: "Tri", Geometry: triangle()})
	if err != nil {
		t.Fatal(err)
	}
	if sm.Status != StatusOK {
		t.Errorf("Status = %d", sm.Status)
	}
	if sm.BaseLength != 3 {
		t.Errorf("BaseLength = %d, want 3", sm.BaseLength)
	}
	if !slices.Equal(sm.Normal, []int16{0, 0, math.MaxInt16, 0, 0, math.MaxInt16, 0, 0, math.MaxInt16}) {
		t.Errorf("Normal = %v", sm.Normal)
	}
	if len(sm.Texcoord) != 6 || !slices.Equal(sm.Indices, []int32{0, 1, 2}) {
		t.Errorf("Texcoord = %v, Indices = %v", sm.Texcoord, sm.Indices)
	}
	if sm.Tangent != nil || sm.Group != nil || sm.Color != nil {
		t.Error("optional arrays cooked without flags")
	}
}

func TestCookStatus(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name   string
		flags  Flags
		mutate func(*scene.Geometry)
		want   Status
	}{
		{"positions not triples", 0, func(g *scene.Geometry) { g.Positions = g.Positions[:8] }, StatusPosition},
		{"nan position", 0, func(g *scene.Geometry) { g.Positions[4] = nan }, StatusPosition},
		{"long normal", 0, func(g *scene.Geometry) { g.Normals[2] = 2 }, StatusNormal},
		{"short tangents", FlagTangents, func(g *scene.Geometry) { g.Tangents = []float32{1, 0, 0, 1} }, StatusTangent},
		{"tangents ignored without flag", 0, func(g *scene.Geometry) { g.Tangents = []float32{1} }, StatusOK},
		{"texcoord count", 0, func(g *scene.Geometry) { g.Texcoords = g.Texcoords[:4] }, StatusTexcoord},
		{"second texcoord", 0, func(g *scene.Geometry) { g.Texcoords2 = []float32{nan, 0, 0, 0, 0, 0} }, StatusTexcoord2},
		{"group weight", FlagVertexGroups, func(g *scene.Geometry) { g.Groups = []float32{0.5, 1.5, 0} }, StatusGroup},
		{"color value", FlagVertexColors, func(g *scene.Geometry) { g.Colors = []float32{0, 0, 0, -1, 0, 0, 0, 0, 0} }, StatusColor},
		{"shade tangents", FlagShadeTangents, func(g *scene.Geometry) { g.ShadeTangs = []float32{1} }, StatusShadeTangents},
		{"first failure wins", 0, func(g *scene.Geometry) {
			g.Normals[0] = 5
			g.Texcoords = nil
			g.Texcoords2 = []float32{1}
		}, StatusNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := triangle()
			g.Positions = slices.Clone(g.Positions)
			g.Normals = slices.Clone(g.Normals)
			tt.mutate(&g)
			if len(g.Positions)%3 != 0 {
				g.Indices = nil
			}
			sm, err := DefaultCooker{}.Cook(context.Background(), Request{Mesh: "Tri", Flags: tt.flags, Geometry: g})
			if err != nil {
				t.Fatal(err)
			}
			if sm.Status != tt.want {
				t.Errorf("Status = %d, want %d", sm.Status, tt.want)
			}
		})
	}
}

func TestCookBadIndices(t *testing.T) {
	tests := []struct {
		name    string
		indices []int32
	}{
		{"out of range", []int32{0, 1, 3}},
		{"negative", []int32{0, -1, 2}},
		{"not triangles", []int32{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := triangle()
			g.Indices = tt.indices
			if _, err := (DefaultCooker{}).Cook(context.Background(), Request{Mesh: "Tri", Geometry: g}); err == nil {
				t.Error("Cook() error = nil")
			}
		})
	}

	// Vertex animated meshes are not indexed at all.
	g := triangle()
	g.Indices = []int32{7}
	sm, err := DefaultCooker{}.Cook(context.Background(), Request{Mesh: "Tri", Flags: FlagVertexAnim, Geometry: g})
	if err != nil || sm.Indices != nil {
		t.Errorf("vertex anim: %v, %v", sm, err)
	}
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, ""},
		{StatusPosition, "Incorrect mesh Cube. Wrong vertices positions."},
		{StatusNormal, "Incorrect mesh Cube. Wrong normals."},
		{StatusTangent, "Incorrect mesh Cube. Wrong tangents."},
		{StatusTexcoord, "Incorrect mesh Cube. Wrong texture coordinates."},
		{StatusTexcoord2, "Incorrect mesh Cube. Wrong texture coordinates."},
		{StatusGroup, "Incorrect mesh Cube. Wrong vertex group weights."},
		{StatusColor, "Incorrect mesh Cube. Wrong vertex color values."},
		{StatusShadeTangents, "Incorrect mesh Cube. Wrong shading tangents values."},
		{Status(42), ""},
	}
	for _, tt := range tests {
		if got := tt.status.Message("Cube"); got != tt.want {
			t.Errorf("Status(%d).Message() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestCachedCooker(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	inner := CookerFunc(func(ctx context.Context, req Request) (*Submesh, error) {
		calls++
		return DefaultCooker{}.Cook(ctx, req)
	})
	c := NewCachedCooker(inner, fc, nil, 0)

	req := Request{Mesh: "Tri", Geometry: triangle()}
	first, err := c.Cook(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Cook(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("inner cooker called %d times, want 1", calls)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d, %d; want 1, 1", hits, misses)
	}
	if second.BaseLength != first.BaseLength || !slices.Equal(second.Normal, first.Normal) ||
		!slices.Equal(second.Indices, first.Indices) || !slices.Equal(second.Position, first.Position) {
		t.Errorf("cached submesh differs:\n%+v\n%+v", first, second)
	}

	// Another material index is another entry.
	req.MatIndex = 1
	if _, err := c.Cook(ctx, req); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("inner cooker called %d times, want 2", calls)
	}
}

func TestCachedCookerCorruptEntry(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCachedCooker(DefaultCooker{}, fc, nil, 0)
	req := Request{Mesh: "Tri", Geometry: triangle()}
	key, err := c.Key(req)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, key, []byte("garbage"), 0); err != nil {
		t.Fatal(err)
	}
	sm, err := c.Cook(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if sm.BaseLength != 3 {
		t.Errorf("BaseLength = %d", sm.BaseLength)
	}
	if hits, _ := c.Stats(); hits != 0 {
		t.Errorf("corrupt entry counted as hit")
	}
}

func TestCachedCookerNullCache(t *testing.T) {
	c := NewCachedCooker(DefaultCooker{}, cache.NewNullCache(), nil, 0)
	for range 2 {
		if _, err := c.Cook(context.Background(), Request{Mesh: "Tri", Geometry: triangle()}); err != nil {
			t.Fatal(err)
		}
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 2 {
		t.Errorf("Stats() = %d, %d", hits, misses)
	}
}
