package media

import (
	"testing"

	"github.com/matzehuels/b4wexport/pkg/errors"
)

func TestExtractDedup(t *testing.T) {
	var e Extractor
	a := e.Extract([]byte("png bytes"), ".png")
	b := e.Extract([]byte("png bytes"), ".png")
	c := e.Extract([]byte("other"), ".png")

	if a != b {
		t.Errorf("same payload got names %q and %q", a, b)
	}
	if a == c {
		t.Error("different payloads share a name")
	}
	if len(a) != 32+len(".png") {
		t.Errorf("name %q has unexpected length", a)
	}
	if files := e.Files(); len(files) != 2 || files[0].Name != a || string(files[1].Data) != "other" {
		t.Errorf("Files() = %+v", files)
	}

	salted := Extractor{Salt: []byte("%html_export%")}
	if salted.Extract([]byte("png bytes"), ".png") == a {
		t.Error("salt did not change the name")
	}

	e.Reset()
	if len(e.Files()) != 0 {
		t.Error("Reset left files")
	}
}

func TestExt(t *testing.T) {
	tests := []struct{ path, format, want string }{
		{"//tex/wood.jpg", "JPEG", ".jpg"},
		{"Untitled", "PNG", ".png"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := Ext(tt.path, tt.format); got != tt.want {
			t.Errorf("Ext(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestResolverRel(t *testing.T) {
	r := Resolver{BlendDir: "/p/scenes", JSONDir: "/p/out"}
	tests := []struct {
		name    string
		path    string
		library string
		want    string
	}{
		{"blend relative", "//tex/wood.jpg", "", "../scenes/tex/wood.jpg"},
		{"plain relative", "tex/wood.jpg", "", "../scenes/tex/wood.jpg"},
		{"absolute", "/p/out/sky.hdr", "", "sky.hdr"},
		{"library relative", "//wood.jpg", "//../libs/mats.blend", "../libs/wood.jpg"},
		{"library absolute", "wood.jpg", "/lib/mats.blend", "../../lib/wood.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Rel(tt.path, tt.library)
			if err != nil {
				t.Fatalf("Rel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Rel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverRelUnreachable(t *testing.T) {
	// A relative scene directory cannot be related to an absolute JSON
	// directory, the same way two volumes cannot.
	r := Resolver{BlendDir: "scenes", JSONDir: "/p/out"}
	_, err := r.Rel("tex/wood.jpg", "")
	if !errors.Is(err, errors.ErrCodePath) {
		t.Fatalf("Rel() error = %v, want PATH", err)
	}
	want := "Loading of resources from different disk is forbidden. Couldn't load scenes/tex/wood.jpg"
	if errors.UserMessage(err) != want {
		t.Errorf("message = %q, want %q", errors.UserMessage(err), want)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("x")) != Hash([]byte("x")) {
		t.Error("Hash not deterministic")
	}
	if len(Hash(nil)) != 32 {
		t.Errorf("Hash length = %d", len(Hash(nil)))
	}
}
