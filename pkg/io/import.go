package io

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// sceneFile is the top-level layout of a scene file. Lists are added to the
// graph in field order, so blocks of one kind keep their file order.
type sceneFile struct {
	BlendPath  string                    `yaml:"blend_path"`
	Scenes     []*scene.Scene            `yaml:"scenes"`
	Objects    []*scene.Object           `yaml:"objects"`
	Meshes     []*scene.Mesh             `yaml:"meshes"`
	Materials  []*scene.Material         `yaml:"materials"`
	Textures   []*scene.Texture          `yaml:"textures"`
	Images     []*scene.Image            `yaml:"images"`
	Sounds     []*scene.Sound            `yaml:"sounds"`
	Cameras    []*scene.Camera           `yaml:"cameras"`
	Lamps      []*scene.Lamp             `yaml:"lamps"`
	Speakers   []*scene.Speaker          `yaml:"speakers"`
	Armatures  []*scene.Armature         `yaml:"armatures"`
	Curves     []*scene.Curve            `yaml:"curves"`
	Particles  []*scene.ParticleSettings `yaml:"particles"`
	Groups     []*scene.Group            `yaml:"groups"`
	Worlds     []*scene.World            `yaml:"worlds"`
	NodeGroups []*scene.NodeGroup        `yaml:"node_groups"`
	Actions    []*scene.Action           `yaml:"actions"`
}

func (f *sceneFile) blocks() []scene.Block {
	var out []scene.Block
	out = appendBlocks(out, f.Scenes)
	out = appendBlocks(out, f.Objects)
	out = appendBlocks(out, f.Meshes)
	out = appendBlocks(out, f.Materials)
	out = appendBlocks(out, f.Textures)
	out = appendBlocks(out, f.Images)
	out = appendBlocks(out, f.Sounds)
	out = appendBlocks(out, f.Cameras)
	out = appendBlocks(out, f.Lamps)
	out = appendBlocks(out, f.Speakers)
	out = appendBlocks(out, f.Armatures)
	out = appendBlocks(out, f.Curves)
	out = appendBlocks(out, f.Particles)
	out = appendBlocks(out, f.Groups)
	out = appendBlocks(out, f.Worlds)
	out = appendBlocks(out, f.NodeGroups)
	out = appendBlocks(out, f.Actions)
	return out
}

func appendBlocks[T scene.Block](out []scene.Block, bs []T) []scene.Block {
	for _, b := range bs {
		out = append(out, b)
	}
	return out
}

// ReadScene decodes a scene file from r into a resolved graph.
//
// path is the location the file was read from. When the file does not name
// its blend_path, path takes its place: identities of local blocks are
// derived from it and the exported document records it. A relative
// blend_path is taken relative to the directory of path.
//
// ReadScene returns an INVALID_FORMAT error for malformed YAML and an
// INVALID_INPUT error for unnamed or duplicate blocks and unresolvable
// references. ReadScene does not close r.
func ReadScene(r io.Reader, path string) (*scene.Graph, error) {
	var f sceneFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}

	blend := f.BlendPath
	switch {
	case blend == "":
		blend = path
	case !filepath.IsAbs(blend) && path != "":
		blend = filepath.Join(filepath.Dir(path), blend)
	}

	g := scene.NewGraph(blend)
	for _, b := range f.blocks() {
		if b == nil {
			continue
		}
		if _, err := g.Add(b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: %s", path, err)
		}
	}
	if err := g.Resolve(); err != nil {
		return nil, err
	}
	return g, nil
}

// ImportScene reads the scene file at path. A missing file is a
// FILE_NOT_FOUND error.
func ImportScene(path string) (*scene.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return ReadScene(f, abs)
}
