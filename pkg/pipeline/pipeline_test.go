package pipeline

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	pkgio "github.com/matzehuels/b4wexport/pkg/io"
	"github.com/matzehuels/b4wexport/pkg/observability"
)

const levelYAML = `
scenes:
  - name: Scene
    objects: [Camera, Cube]
    camera: Camera
    world: World
objects:
  - {name: Camera, type: CAMERA, data: Cam}
  - {name: Cube, type: MESH, data: Tri}
cameras:
  - {name: Cam, type: PERSP}
worlds:
  - name: World
meshes:
  - name: Tri
    polygons: 1
    geometry:
      - positions: [0, 0, 0, 1, 0, 0, 0, 1, 0]
        normals: [0, 0, 1, 0, 0, 1, 0, 0, 1]
        indices: [0, 1, 2]
`

// noCameraYAML always records the missing camera warning.
const noCameraYAML = `
scenes:
  - {name: Scene, objects: [Cube], world: World}
objects:
  - {name: Cube, type: EMPTY}
worlds:
  - name: World
`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "level.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		code    errors.Code
		wantOut string
	}{
		{"missing input", Options{}, errors.ErrCodeInvalidInput, ""},
		{"default output", Options{Input: "levels/intro.yaml"}, "", "levels/intro.json"},
		{"explicit output", Options{Input: "a.yaml", Output: "out/b.json"}, "", "out/b.json"},
		{"bad output extension", Options{Input: "a.yaml", Output: "b.txt"}, errors.ErrCodeInvalidPath, ""},
		{"bad format version", Options{Input: "a.yaml", FormatVersion: "six"}, errors.ErrCodeInvalidVersion, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.opts.Output != tt.wantOut {
				t.Errorf("Output = %q, want %q", tt.opts.Output, tt.wantOut)
			}
			if tt.opts.FormatVersion != DefaultFormatVersion || tt.opts.Logger == nil {
				t.Errorf("defaults not applied: %+v", tt.opts)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "full",
			content: `format_version = "6.01"
strict = true
write_packed = false

[cache]
backend = "redis"
redis_url = "redis://cache:6379/2"
ttl = "2h"
`,
			check: func(t *testing.T, c *Config) {
				if c.FormatVersion != "6.01" || c.Strict == nil || !*c.Strict || c.Pretty != nil {
					t.Errorf("config = %+v", c)
				}
				if c.Cache.Backend != BackendRedis || c.Cache.TTL != 2*time.Hour {
					t.Errorf("cache = %+v", c.Cache)
				}
			},
		},
		{name: "empty", content: "", check: func(t *testing.T, c *Config) {
			if c.Cache.ttl() != cache.DefaultTTL {
				t.Errorf("ttl = %v", c.Cache.ttl())
			}
		}},
		{name: "unknown key", content: "stirct = true\n", code: errors.ErrCodeInvalidInput},
		{name: "bad backend", content: "[cache]\nbackend = \"memcached\"\n", code: errors.ErrCodeInvalidInput},
		{name: "bad version", content: "format_version = \"6\"\n", code: errors.ErrCodeInvalidVersion},
		{name: "malformed", content: "strict = \n", code: errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "b4wexport.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := LoadConfig(path)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, c)
		})
	}
}

func TestConfigApply(t *testing.T) {
	yes, no := true, false
	opts := Options{Pretty: true}
	(&Config{FormatVersion: "5.10", Strict: &yes, WritePacked: &no}).Apply(&opts)
	if opts.FormatVersion != "5.10" || !opts.Strict || !opts.NoPacked || !opts.Pretty {
		t.Errorf("opts = %+v", opts)
	}

	var nilConfig *Config
	nilConfig.Apply(&opts)
	if opts.FormatVersion != "5.10" {
		t.Error("nil config changed options")
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	c, err := OpenCache(ctx, CacheConfig{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("none backend = %T", c)
	}

	dir := filepath.Join(t.TempDir(), "cache")
	c, err = OpenCache(ctx, CacheConfig{Backend: BackendFile, Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*cache.FileCache); !ok || fc.Dir() != dir {
		t.Errorf("file backend = %T", c)
	}

	if _, err := OpenCache(ctx, CacheConfig{Backend: "tape"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestExecute(t *testing.T) {
	input := writeScene(t, levelYAML)
	out := filepath.Join(t.TempDir(), "build", "level.json")

	r := NewRunner(nil, nil, 0, nil)
	res, err := r.Execute(context.Background(), Options{Input: input, Output: out})
	if err != nil {
		t.Fatal(err)
	}
	if res.Written == nil || res.Written.JSON != out {
		t.Fatalf("written = %+v", res.Written)
	}
	if res.Written.Sidecar != filepath.Join(filepath.Dir(out), "level.bin") {
		t.Errorf("sidecar = %q", res.Written.Sidecar)
	}
	if res.Stats.Blocks != 6 || res.Stats.Records == 0 {
		t.Errorf("stats = %+v", res.Stats)
	}

	e, err := pkgio.ImportDocument(out)
	if err != nil {
		t.Fatal(err)
	}
	if e.FormatVersion != DefaultFormatVersion || e.Counts["scenes"] != 1 || e.Counts["meshes"] != 1 {
		t.Errorf("document = %+v", e)
	}
	if _, err := e.CheckSidecar(); err != nil {
		t.Errorf("CheckSidecar: %v", err)
	}
}

func TestExecuteStrict(t *testing.T) {
	input := writeScene(t, noCameraYAML)
	out := filepath.Join(t.TempDir(), "level.json")

	r := NewRunner(nil, nil, 0, nil)
	_, err := r.Execute(context.Background(), Options{Input: input, Output: out, Strict: true})

	var strict *document.StrictError
	if !stderrors.As(err, &strict) {
		t.Fatalf("err = %v, want StrictError", err)
	}
	if !errors.Is(err, errors.ErrCodeStrict) {
		t.Errorf("err code = %s", errors.GetCode(err))
	}
	found := false
	for _, m := range strict.Warnings {
		found = found || strings.Contains(m.Text, "Missing active camera")
	}
	if !found {
		t.Errorf("warnings = %v", strict.Warnings)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("strict run wrote %s", out)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	r := NewRunner(nil, nil, 0, nil)
	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "none.yaml")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestGeometryCacheReused(t *testing.T) {
	input := writeScene(t, levelYAML)
	store, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	first, err := NewRunner(store, nil, time.Hour, nil).Build(context.Background(), Options{Input: input})
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.CacheMisses == 0 || first.Stats.CacheHits != 0 {
		t.Fatalf("first run: hits %d misses %d", first.Stats.CacheHits, first.Stats.CacheMisses)
	}

	second, err := NewRunner(store, nil, time.Hour, nil).Build(context.Background(), Options{Input: input})
	if err != nil {
		t.Fatal(err)
	}
	if second.Stats.CacheHits != first.Stats.CacheMisses || second.Stats.CacheMisses != 0 {
		t.Errorf("second run: hits %d misses %d", second.Stats.CacheHits, second.Stats.CacheMisses)
	}
	if string(second.Artifacts.Sidecar) != string(first.Artifacts.Sidecar) {
		t.Error("cached geometry changed the sidecar")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnStageComplete(_ context.Context, ev observability.StageEvent) {
	if ev.Err == nil && ev.Count > 0 {
		h.events = append(h.events, string(ev.Stage))
	}
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	ctx := observability.WithPipelineHooks(context.Background(), hooks)

	input := writeScene(t, levelYAML)
	if _, err := NewRunner(nil, nil, 0, nil).Execute(ctx, Options{Input: input}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(hooks.events, ","); got != "load,export,assemble,write" {
		t.Errorf("events = %s", got)
	}
}

func TestWriteWithoutArtifacts(t *testing.T) {
	r := NewRunner(nil, nil, 0, nil)
	out := filepath.Join(t.TempDir(), "level.json")
	if _, err := r.Write(context.Background(), &Result{}, Options{Input: "x.yaml", Output: out}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("err = %v, want INTERNAL_ERROR", err)
	}
}
