package document

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/messages"
)

func TestRecordKeepsOrder(t *testing.T) {
	r := NewRecord().
		Set("name", "Cube").
		Set("uuid", "u1").
		Set("b4w_do_not_render", false).
		Set("name", "Cube.001")

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"Cube.001","uuid":"u1","b4w_do_not_render":false}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	r.Delete("uuid")
	r.Delete("missing")
	if keys := r.Keys(); len(keys) != 2 || keys[1] != "b4w_do_not_render" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestRecordNoHTMLEscape(t *testing.T) {
	r := NewRecord().Set("text", `Object "A" > Constraint "B" & more`)
	b, _ := r.MarshalJSON()
	if strings.Contains(string(b), `>`) || strings.Contains(string(b), `&`) {
		t.Errorf("json escapes html: %s", b)
	}
}

func TestRecordUnmarshal(t *testing.T) {
	src := `{"z":1,"a":{"uuid":"u"},"list":[{"k":true},null,"s"],"n":null}`
	var r Record
	if err := json.Unmarshal([]byte(src), &r); err != nil {
		t.Fatal(err)
	}
	if keys := r.Keys(); strings.Join(keys, ",") != "z,a,list,n" {
		t.Errorf("Keys() = %v", keys)
	}
	a, _ := r.Get("a")
	if ref, ok := AsRef(a); !ok || ref.UUID != "u" {
		t.Errorf("AsRef(a) = %v, %v", ref, ok)
	}
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != src {
		t.Errorf("re-encoded = %s, want %s", out, src)
	}

	if err := json.Unmarshal([]byte(`[1]`), &r); err == nil {
		t.Error("array decoded into a record")
	}
}

func TestRefJSON(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{RefTo("abc"), `{"uuid":"abc"}`},
		{Ref{}, `null`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.ref)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.ref, b, tt.want)
		}
	}
}

func TestDocumentRemoveAndRewrite(t *testing.T) {
	d := New()
	mat := NewRecord().Set("name", "Red").Set("uuid", "m1")
	d.Add("materials", mat)
	mesh := NewRecord().
		Set("name", "Cube").
		Set("uuid", "me1").
		Set("materials", []Ref{RefTo("m1"), RefTo("m2")}).
		Set("submeshes", []*Record{NewRecord().Set("material", RefTo("m1"))})
	d.Add("meshes", mesh)
	obj := NewRecord().Set("uuid", "o1").Set("data", RefTo("me1")).Set("parent", Ref{})
	d.Add("objects", obj)

	if d.Len() != 3 {
		t.Fatalf("Len() = %d", d.Len())
	}
	if got, ok := d.Find("materials", "m1"); !ok || got != mat {
		t.Error("Find(materials, m1) failed")
	}

	removed := d.Remove("materials", "m1")
	if len(removed) != 1 || d.Count("m1") != 0 {
		t.Errorf("Remove left %d records", d.Count("m1"))
	}
	d.Add("materials", NewRecord().Set("name", "Red").Set("uuid", "f1"))

	if n := d.RewriteRefs("m1", "f1"); n != 2 {
		t.Errorf("RewriteRefs() = %d, want 2", n)
	}
	for _, u := range d.Refs() {
		if u == "m1" {
			t.Error("a reference to the removed record survived")
		}
	}
	refs, _ := mesh.Get("materials")
	if refs.([]Ref)[0].UUID != "f1" || refs.([]Ref)[1].UUID != "m2" {
		t.Errorf("materials refs = %v", refs)
	}
	// The record's own uuid is not a reference.
	if d.RewriteRefs("o1", "x") != 0 || obj.UUID() != "o1" {
		t.Error("own uuid was rewritten")
	}
}

// nodeList keeps records outside the document's own value types.
type nodeList []*Record

func (l nodeList) EachRecord(fn func(*Record)) {
	for _, r := range l {
		fn(r)
	}
}

func TestRewriteRefsInRecordHolders(t *testing.T) {
	d := New()
	d.Add("textures", NewRecord().Set("name", "Fallback").Set("uuid", "t2"))
	node := NewRecord().Set("name", "Tex").Set("texture", RefTo("t1"))
	group := NewRecord().Set("name", "Group").Set("uuid", "g1").Set("node_tree", nodeList{node})
	d.Add("node_groups", group)

	if !slices.Contains(d.Refs(), "t1") {
		t.Fatal("Refs() misses references held by node_tree")
	}
	if n := d.RewriteRefs("t1", "t2"); n != 1 {
		t.Errorf("RewriteRefs() = %d, want 1", n)
	}
	if ref, _ := node.Get("texture"); ref.(Ref).UUID != "t2" {
		t.Errorf("texture = %v, want t2", ref)
	}
}

func TestAssemble(t *testing.T) {
	d := New()
	d.Add("scenes", NewRecord().Set("name", "Scene").Set("uuid", "s1"))
	var blobs blob.Allocator
	blobs.AppendInt32([]int32{1, 2, 3})
	blobs.AppendFloat32([]float32{1})
	var sink messages.Sink
	sink.Warn("careful")

	a := Assembler{FormatVersion: "6.02"}
	out, err := a.Assemble(Input{
		Document: d, Blobs: &blobs, Messages: &sink,
		JSONPath: "/out/demo.json", BlendPath: "../demo.blend",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.BinFile != "demo.bin" {
		t.Errorf("BinFile = %q", out.BinFile)
	}
	if len(out.Sidecar) != blob.HeaderSize+16 {
		t.Errorf("sidecar size = %d", len(out.Sidecar))
	}

	var root Record
	if err := json.Unmarshal(out.JSON, &root); err != nil {
		t.Fatal(err)
	}
	keys := root.Keys()
	if keys[0] != "b4w_format_version" || keys[len(keys)-1] != "b4w_export_errors" {
		t.Errorf("keys = %v", keys)
	}
	bins, _ := root.Get("binaries")
	entry := bins.([]any)[0].(*Record)
	if entry.GetString("binfile") != "demo.bin" {
		t.Errorf("binfile = %v", entry.GetString("binfile"))
	}
	if f, _ := entry.Get("float"); f != float64(12) {
		t.Errorf("float offset = %v, want 12", f)
	}
	w, _ := root.Get("b4w_export_warnings")
	if len(w.([]any)) != 1 {
		t.Errorf("warnings = %v", w)
	}
}

func TestAssembleEmptyBinaries(t *testing.T) {
	a := Assembler{FormatVersion: "6.02", Pretty: true}
	out, err := a.Assemble(Input{Document: New(), Blobs: &blob.Allocator{}, Messages: &messages.Sink{}, JSONPath: "x.json"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Sidecar != nil || out.BinFile != "" {
		t.Errorf("empty export produced a sidecar")
	}
	if !strings.Contains(string(out.JSON), `"binfile": null`) {
		t.Errorf("binfile not null in:\n%s", out.JSON)
	}
	if !strings.Contains(string(out.JSON), "\n  \"scenes\": []") {
		t.Errorf("pretty output missing empty scenes collection:\n%s", out.JSON)
	}
}

func TestAssembleStrict(t *testing.T) {
	var sink messages.Sink
	sink.Err("broken")
	a := Assembler{FormatVersion: "6.02", Strict: true}
	_, err := a.Assemble(Input{Document: New(), Blobs: &blob.Allocator{}, Messages: &sink})

	var se *StrictError
	if !asStrict(err, &se) {
		t.Fatalf("error = %v, want *StrictError", err)
	}
	if len(se.Errors) != 1 || se.Errors[0].Text != "broken" {
		t.Errorf("StrictError.Errors = %+v", se.Errors)
	}
	if errors.GetCode(err) != errors.ErrCodeStrict {
		t.Errorf("code = %q", errors.GetCode(err))
	}

	// Strict mode with no messages writes normally.
	if _, err := a.Assemble(Input{Document: New(), Blobs: &blob.Allocator{}, Messages: &messages.Sink{}}); err != nil {
		t.Errorf("clean strict export failed: %v", err)
	}
}

func TestAssembleBadVersion(t *testing.T) {
	a := Assembler{FormatVersion: "six"}
	_, err := a.Assemble(Input{Document: New(), Blobs: &blob.Allocator{}, Messages: &messages.Sink{}})
	if !errors.Is(err, errors.ErrCodeInvalidVersion) {
		t.Errorf("error = %v, want INVALID_VERSION", err)
	}
}

func TestSidecarName(t *testing.T) {
	tests := []struct{ in, name, path string }{
		{"/out/demo.json", "demo.bin", "/out/demo.bin"},
		{"scene", "scene.bin", "scene.bin"},
		{"a.b/c.json", "c.bin", "a.b/c.bin"},
	}
	for _, tt := range tests {
		if got := SidecarName(tt.in); got != tt.name {
			t.Errorf("SidecarName(%q) = %q, want %q", tt.in, got, tt.name)
		}
		if got := SidecarPath(tt.in); got != tt.path {
			t.Errorf("SidecarPath(%q) = %q, want %q", tt.in, got, tt.path)
		}
	}
}

func asStrict(err error, target **StrictError) bool {
	se, ok := err.(*StrictError)
	if ok {
		*target = se
	}
	return ok
}
