package scene

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	b4werrors "github.com/matzehuels/b4wexport/pkg/errors"
)

func mustAdd(t *testing.T, g *Graph, b Block) ID {
	t.Helper()
	id, err := g.Add(b)
	if err != nil {
		t.Fatalf("Add(%T %q): %v", b, b.Block().Name, err)
	}
	return id
}

func TestGraphAdd(t *testing.T) {
	g := NewGraph("/p/demo.blend")

	mesh := &Mesh{Datablock: Datablock{Name: "Cube"}}
	obj := &Object{Datablock: Datablock{Name: "Cube"}, Type: ObjectMesh}

	mid := mustAdd(t, g, mesh)
	oid := mustAdd(t, g, obj)

	if mid != 1 || oid != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", mid, oid)
	}
	if mesh.Kind != KindMesh || obj.Kind != KindObject {
		t.Errorf("kinds = %v, %v", mesh.Kind, obj.Kind)
	}
	if got, ok := g.Lookup(KindObject, "Cube", ""); !ok || got != oid {
		t.Errorf("Lookup(Object, Cube) = %d, %v", got, ok)
	}
	if got, ok := Get[*Mesh](g, mid); !ok || got != mesh {
		t.Errorf("Get[*Mesh](%d) = %v, %v", mid, got, ok)
	}
	if _, ok := Get[*Mesh](g, oid); ok {
		t.Error("Get[*Mesh] on an object id succeeded")
	}
	if g.Block(None) != nil || g.Block(99) != nil {
		t.Error("Block returned a value for an invalid id")
	}
}

func TestGraphAddErrors(t *testing.T) {
	g := NewGraph("")
	mustAdd(t, g, &Lamp{Datablock: Datablock{Name: "Lamp"}})

	tests := []struct {
		name  string
		block Block
		want  error
	}{
		{"empty name", &Lamp{}, ErrEmptyName},
		{"duplicate", &Lamp{Datablock: Datablock{Name: "Lamp"}}, ErrDuplicateBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Add(tt.block); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}

	// Same name in another library is a different block.
	if _, err := g.Add(&Lamp{Datablock: Datablock{Name: "Lamp", Library: "/lib/lights.blend"}}); err != nil {
		t.Errorf("Add(library lamp) error = %v", err)
	}
}

func TestGraphMarkRelease(t *testing.T) {
	g := NewGraph("")
	mustAdd(t, g, &Material{Datablock: Datablock{Name: "Red"}})
	mark := g.Mark()
	fid := mustAdd(t, g, &Material{Datablock: Datablock{Name: "FALLBACK_MATERIAL"}})

	g.Release(mark)
	g.Release(mark)

	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	if g.Block(fid) != nil {
		t.Error("released block still reachable")
	}
	if _, ok := g.Lookup(KindMaterial, "FALLBACK_MATERIAL", ""); ok {
		t.Error("released block still indexed")
	}
	// The name is free again.
	mustAdd(t, g, &Material{Datablock: Datablock{Name: "FALLBACK_MATERIAL"}})
}

func TestAllAndBlocks(t *testing.T) {
	g := NewGraph("")
	mustAdd(t, g, &Material{Datablock: Datablock{Name: "A"}})
	mustAdd(t, g, &Texture{Datablock: Datablock{Name: "T"}})
	mustAdd(t, g, &Material{Datablock: Datablock{Name: "B"}})

	mats := All[*Material](g)
	if len(mats) != 2 || mats[0].Name != "A" || mats[1].Name != "B" {
		t.Errorf("All[*Material] = %v", mats)
	}
	if n := len(g.Blocks(KindTexture)); n != 1 {
		t.Errorf("Blocks(Texture) len = %d, want 1", n)
	}
}

func TestResolve(t *testing.T) {
	g := NewGraph("/p/demo.blend")
	mustAdd(t, g, &Mesh{Datablock: Datablock{Name: "Cube"}})
	mustAdd(t, g, &Lamp{Datablock: Datablock{Name: "Lamp", Library: "/lib/a.blend"}})
	parent := &Object{Datablock: Datablock{Name: "Root"}, Type: ObjectEmpty}
	mustAdd(t, g, parent)
	lamp := &Object{
		Datablock: Datablock{Name: "Lamp"},
		Type:      ObjectLamp,
		Data:      Ref{Name: "Lamp", Library: "/lib/a.blend"},
		Parent:    RefTo("Root"),
	}
	mustAdd(t, g, lamp)
	lattice := &Object{Datablock: Datablock{Name: "Lattice"}, Type: "LATTICE", Data: RefTo("Whatever")}
	mustAdd(t, g, lattice)

	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !lamp.Data.Valid() || !lamp.Parent.Valid() || lamp.Parent.ID != parent.ID {
		t.Errorf("lamp refs not resolved: %+v %+v", lamp.Data, lamp.Parent)
	}
	if lattice.Data.Valid() {
		t.Error("data of an unsupported object type should stay unresolved")
	}
}

func TestResolveUnknown(t *testing.T) {
	g := NewGraph("")
	mustAdd(t, g, &Scene{Datablock: Datablock{Name: "Scene"}, Camera: RefTo("Camera")})

	err := g.Resolve()
	if !b4werrors.Is(err, b4werrors.ErrCodeInvalidInput) {
		t.Fatalf("Resolve() error = %v, want INVALID_INPUT", err)
	}
	want := `Scene "Scene": camera refers to unknown Object "Camera"`
	if b4werrors.UserMessage(err) != want {
		t.Errorf("message = %q, want %q", b4werrors.UserMessage(err), want)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind      Kind
		name, tag string
	}{
		{KindObject, "Object", "objects"},
		{KindNodeTree, "Node Tree", "node_groups"},
		{KindParticleSettings, "Particle Settings", "particles"},
		{Kind(0), "Kind(0)", ""},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.name)
		}
		if got := tt.kind.Tag(); got != tt.tag {
			t.Errorf("%d.Tag() = %q, want %q", tt.kind, got, tt.tag)
		}
	}
}

func TestRefYAML(t *testing.T) {
	var doc struct {
		A Ref `yaml:"a"`
		B Ref `yaml:"b"`
		C Ref `yaml:"c"`
	}
	src := "a: Cube\nb: {name: Lamp, library: /lib/a.blend}\nc: null\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.A != RefTo("Cube") {
		t.Errorf("a = %+v", doc.A)
	}
	if doc.B.Name != "Lamp" || doc.B.Library != "/lib/a.blend" {
		t.Errorf("b = %+v", doc.B)
	}
	if doc.C.IsSet() {
		t.Errorf("c = %+v, want empty", doc.C)
	}

	if err := yaml.Unmarshal([]byte("a: [1, 2]\n"), &doc); err == nil {
		t.Error("sequence reference decoded without error")
	}
}

func TestPropsYAMLKeepsOrder(t *testing.T) {
	var doc struct {
		Props Props `yaml:"props"`
	}
	src := "props:\n  zeta: 1\n  alpha: [1, 2]\n  mid: {x: true}\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, p := range doc.Props {
		keys = append(keys, p.Key)
	}
	if len(keys) != 3 || keys[0] != "zeta" || keys[1] != "alpha" || keys[2] != "mid" {
		t.Errorf("keys = %v, want [zeta alpha mid]", keys)
	}
	if v, ok := doc.Props.Get("zeta"); !ok || v != 1 {
		t.Errorf("Get(zeta) = %v, %v", v, ok)
	}
}

func TestPackedYAML(t *testing.T) {
	var doc struct {
		P Packed `yaml:"p"`
	}
	if err := yaml.Unmarshal([]byte("p: aGVsbG8=\n"), &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc.P) != "hello" {
		t.Errorf("P = %q, want hello", doc.P)
	}
	if err := yaml.Unmarshal([]byte("p: '***'\n"), &doc); err == nil {
		t.Error("invalid base64 decoded without error")
	}
}

func TestObjectTypeSupported(t *testing.T) {
	for _, typ := range []ObjectType{ObjectMesh, ObjectEmpty, ObjectMeta, ObjectSpeaker} {
		if !typ.Supported() {
			t.Errorf("%s not supported", typ)
		}
	}
	for _, typ := range []ObjectType{"LATTICE", ObjectLine, ""} {
		if typ.Supported() {
			t.Errorf("%q supported", typ)
		}
	}
}

func TestMeshGeometryFor(t *testing.T) {
	m := &Mesh{Geometry: []Geometry{{Indices: []int32{0}}, {Indices: []int32{1}}}}
	if got := m.GeometryFor(1).Indices[0]; got != 1 {
		t.Errorf("GeometryFor(1) = %d", got)
	}
	if got := m.GeometryFor(-1).Indices[0]; got != 0 {
		t.Errorf("GeometryFor(-1) = %d", got)
	}
	if got := (&Mesh{}).GeometryFor(0); got.Indices != nil {
		t.Errorf("empty mesh geometry = %+v", got)
	}
}
