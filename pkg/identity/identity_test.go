package identity

import (
	"testing"

	"github.com/matzehuels/b4wexport/pkg/scene"
)

func TestOfDeterministic(t *testing.T) {
	a := Of(scene.KindMesh, "Cube", "/p/demo.blend", "%Red")
	b := Of(scene.KindMesh, "Cube", "/p/demo.blend", "%Red")
	if a != b {
		t.Errorf("Of() not deterministic: %s != %s", a, b)
	}
	if !Valid(a) {
		t.Errorf("Of() = %q, not a canonical uuid", a)
	}
	if a[14] != '3' {
		t.Errorf("Of() = %s, want a version 3 (md5) uuid", a)
	}
}

func TestOfDistinct(t *testing.T) {
	base := Of(scene.KindObject, "Lamp", "/p/demo.blend", "")
	tests := []struct {
		name string
		got  string
	}{
		{"library", Of(scene.KindObject, "Lamp", "/lib/lights.blend", "")},
		{"kind", Of(scene.KindLamp, "Lamp", "/p/demo.blend", "")},
		{"name", Of(scene.KindObject, "Lamp.001", "/p/demo.blend", "")},
		{"salt", Of(scene.KindObject, "Lamp", "/p/demo.blend", SaltHair)},
		// Field boundaries are not ambiguous.
		{"shifted", Of(scene.KindObject, "Lam", "p/demo.blend", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Errorf("identity collides with base %s", base)
			}
		})
	}
}

func TestOfBlockSameNameDifferentLibrary(t *testing.T) {
	g := scene.NewGraph("/p/demo.blend")
	local := &scene.Object{Datablock: scene.Datablock{Name: "Lamp"}, Type: scene.ObjectLamp}
	linked := &scene.Object{Datablock: scene.Datablock{Name: "Lamp", Library: "/lib/lights.blend"}, Type: scene.ObjectLamp}
	if _, err := g.Add(local); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Add(linked); err != nil {
		t.Fatal(err)
	}

	a, b := OfBlock(g, local, ""), OfBlock(g, linked, "")
	if a == b {
		t.Errorf("local and linked Lamp share identity %s", a)
	}
	if a != Of(scene.KindObject, "Lamp", "/p/demo.blend", "") {
		t.Error("local identity should use the scene file path as owner")
	}
	if Owner(g, linked) != "/lib/lights.blend" {
		t.Errorf("Owner(linked) = %q", Owner(g, linked))
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"6f1c3b2e-8d4a-5e0f-9b7c-2a1d4e6f8b90", true},
		{"", false},
		{"not-a-uuid", false},
		{"6f1c3b2e8d4a5e0f9b7c2a1d4e6f8b90", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCache(t *testing.T) {
	var c Cache[string]
	if c.IsRegistered("a") {
		t.Error("empty cache reports a registration")
	}

	c.Register("a", "first", 1)
	c.Register("b", "second", 2)
	c.Register("a", "replaced", 1)

	if rec, ok := c.Record("a"); !ok || rec != "replaced" {
		t.Errorf("Record(a) = %q, %v", rec, ok)
	}
	if src, ok := c.Source("b"); !ok || src != 2 {
		t.Errorf("Source(b) = %d, %v", src, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	var order []string
	c.Each(func(uuid, _ string, _ scene.ID) { order = append(order, uuid) })
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Each order = %v", order)
	}

	c.Forget("a")
	c.Forget("missing")
	if c.IsRegistered("a") || c.Len() != 1 {
		t.Errorf("Forget(a) left %d records", c.Len())
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Reset left %d records", c.Len())
	}
}

func TestVisited(t *testing.T) {
	var v Visited

	if !v.Begin(3, Plain) {
		t.Fatal("first Begin should succeed")
	}
	if v.Begin(3, Plain) {
		t.Error("second Begin while in progress should fail")
	}
	if got := v.State(3, Plain); got != InProgress {
		t.Errorf("State = %v, want in progress", got)
	}
	// Categories are independent dedup spaces.
	if !v.Begin(3, Hair) {
		t.Error("Begin in another category should succeed")
	}

	v.Finish(3, Plain)
	if v.Begin(3, Plain) {
		t.Error("Begin after Finish should fail")
	}
	if got := v.State(3, Plain); got != Done {
		t.Errorf("State = %v, want done", got)
	}

	if !v.Begin(5, Plain) {
		t.Fatal("Begin(5) should succeed")
	}
	v.Abort(5, Plain)
	if !v.Begin(5, Plain) {
		t.Error("Begin after Abort should succeed")
	}

	v.Reset()
	if v.Len() != 0 || v.State(3, Plain) != NotVisited {
		t.Error("Reset did not clear state")
	}
}

func TestCategorySalt(t *testing.T) {
	if Plain.Salt() != "" || Curve.Salt() != "curve_exp_done" || Hair.Salt() != "hair_exp_done" {
		t.Errorf("salts = %q %q %q", Plain.Salt(), Curve.Salt(), Hair.Salt())
	}
}

func TestStack(t *testing.T) {
	var s Stack[scene.ID]
	if _, ok := s.Top(); ok {
		t.Error("Top on empty stack succeeded")
	}
	s.Push(1)
	s.Push(2)
	if top, _ := s.Top(); top != 2 {
		t.Errorf("Top = %d, want 2", top)
	}
	if v, _ := s.Pop(); v != 2 {
		t.Errorf("Pop = %d, want 2", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	s.Clear()
	if _, ok := s.Pop(); ok {
		t.Error("Pop after Clear succeeded")
	}
}
