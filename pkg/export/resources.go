package export

import (
	"path/filepath"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/media"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// defaultResolver fills the directories the resolver leaves empty from the
// scene file and document paths.
func defaultResolver(r media.Resolver, blendPath, jsonPath string) media.Resolver {
	if r.BlendDir == "" {
		r.BlendDir = absDir(blendPath)
	}
	if r.JSONDir == "" {
		r.JSONDir = absDir(jsonPath)
	}
	return r
}

func absDir(path string) string {
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// blendRelPath returns the scene file path relative to the document
// directory, or "" for graphs not loaded from a file.
func blendRelPath(r media.Resolver, blendPath string) (string, error) {
	if blendPath == "" {
		return "", nil
	}
	abs, err := filepath.Abs(blendPath)
	if err != nil {
		abs = filepath.Clean(blendPath)
	}
	if filepath.VolumeName(abs) != filepath.VolumeName(r.JSONDir) {
		return "", errors.New(errors.ErrCodeCrossVolume, "Export to different disk is forbidden")
	}
	rel, err := filepath.Rel(r.JSONDir, abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCrossVolume, err, "Export to different disk is forbidden")
	}
	return filepath.ToSlash(rel), nil
}

// mediaPath returns the document-relative path of an image or sound.
// Packed payloads are extracted under their content hash.
func (ec *ExportContext) mediaPath(d *scene.Datablock, path string, packed scene.Packed, ext string) (string, error) {
	if len(packed) > 0 {
		return ec.packed.Extract(packed, ext), nil
	}
	return ec.resolver.Rel(path, d.Library)
}

// exportImage serializes an image. A path outside the document's volume is
// returned as a PATH error and leaves the image out of the document; later
// references to it resolve to null.
func (ec *ExportContext) exportImage(img *scene.Image) (document.Ref, error) {
	ref := ec.refTo(img, "")
	if !ec.visited.Begin(img.ID, identity.Plain) {
		if !ec.records.IsRegistered(ref.UUID) {
			return document.Ref{}, nil
		}
		return ref, nil
	}
	defer ec.visited.Finish(img.ID, identity.Plain)

	path, err := ec.mediaPath(&img.Datablock, img.Filepath, img.Packed, media.Ext(img.Filepath, img.FileFormat))
	if err != nil {
		return document.Ref{}, err
	}
	rec := document.NewRecord().
		Set("name", img.Name).
		Set("uuid", ref.UUID).
		Set("filepath", path).
		Set("source", img.Source)
	setProps(rec, img.Props)
	ec.register(img, rec)
	return ref, nil
}

// exportSound serializes a sound. Path failures behave as for images.
func (ec *ExportContext) exportSound(snd *scene.Sound) (document.Ref, error) {
	ref := ec.refTo(snd, "")
	if !ec.visited.Begin(snd.ID, identity.Plain) {
		if !ec.records.IsRegistered(ref.UUID) {
			return document.Ref{}, nil
		}
		return ref, nil
	}
	defer ec.visited.Finish(snd.ID, identity.Plain)

	path, err := ec.mediaPath(&snd.Datablock, snd.Filepath, snd.Packed, filepath.Ext(snd.Filepath))
	if err != nil {
		return document.Ref{}, err
	}
	rec := document.NewRecord().
		Set("name", snd.Name).
		Set("uuid", ref.UUID).
		Set("filepath", path)
	setProps(rec, snd.Props)
	ec.register(snd, rec)
	return ref, nil
}
