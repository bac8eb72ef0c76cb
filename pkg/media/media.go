// Package media resolves image and sound files for the exported document.
//
// External files are referenced by a path relative to the exported JSON.
// Packed files (embedded in the scene) are extracted next to the JSON under
// a content-addressed name, so identical payloads are written once no
// matter how many blocks embed them.
package media

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/matzehuels/b4wexport/pkg/errors"
)

// Hash returns the hex BLAKE3 digest of data, truncated to 128 bits.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// File is one packed payload to write next to the JSON.
type File struct {
	Name string
	Data []byte
}

// Extractor deduplicates packed payloads by content.
//
// The zero value is ready to use.
type Extractor struct {
	files []File
	index map[string]int
	// Salt is mixed into every hash. Exports that inline resources use it
	// to keep their names apart from regular exports.
	Salt []byte
}

// Extract registers a packed payload and returns the file name it will be
// written under: its content hash followed by ext.
func (e *Extractor) Extract(data []byte, ext string) string {
	payload := data
	if len(e.Salt) > 0 {
		payload = append(append(make([]byte, 0, len(data)+len(e.Salt)), data...), e.Salt...)
	}
	name := Hash(payload) + ext
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if _, ok := e.index[name]; !ok {
		e.index[name] = len(e.files)
		e.files = append(e.files, File{Name: name, Data: data})
	}
	return name
}

// Files returns the unique payloads in extraction order.
func (e *Extractor) Files() []File { return e.files }

// Reset forgets every payload.
func (e *Extractor) Reset() {
	e.files = nil
	clear(e.index)
}

// Ext returns the extension of a media file path, falling back to the
// lowercased file format for paths without one.
func Ext(path, fileFormat string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	if fileFormat == "" {
		return ""
	}
	return "." + strings.ToLower(fileFormat)
}

// Resolver turns scene file paths into paths relative to the exported JSON.
type Resolver struct {
	// BlendDir is the directory of the scene file; relative resource paths
	// start there.
	BlendDir string
	// JSONDir is the directory the document is written to.
	JSONDir string
}

// Rel returns path relative to the JSON directory. Paths may use the
// "//" prefix for blend-relative paths. Resources of library blocks are
// resolved against the library's directory. A path that cannot be
// expressed relative to the JSON is a PATH error.
func (r Resolver) Rel(path, library string) (string, error) {
	p := strings.TrimPrefix(path, "//")
	if !filepath.IsAbs(p) {
		base := r.BlendDir
		if library != "" {
			lib := strings.TrimPrefix(library, "//")
			if !filepath.IsAbs(lib) {
				lib = filepath.Join(r.BlendDir, lib)
			}
			base = filepath.Dir(lib)
		}
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)

	if filepath.VolumeName(p) != filepath.VolumeName(r.JSONDir) {
		return "", pathError(p)
	}
	rel, err := filepath.Rel(r.JSONDir, p)
	if err != nil {
		return "", pathError(p)
	}
	return filepath.ToSlash(rel), nil
}

func pathError(p string) error {
	return errors.New(errors.ErrCodePath,
		"Loading of resources from different disk is forbidden. Couldn't load %s", p)
}
