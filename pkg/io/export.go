package io

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/media"
)

// Written lists the files one export wrote.
type Written struct {
	JSON    string
	Sidecar string // empty when no binary data was exported
	Packed  []string
	Bytes   int64
}

// WriteArtifacts writes the document to jsonPath, the sidecar next to it
// and every packed file into the document's directory. Packed files that
// already exist with the same name are left alone; their names are content
// hashes.
func WriteArtifacts(jsonPath string, art *document.Artifacts, packed []media.File) (*Written, error) {
	dir := filepath.Dir(jsonPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fileError(err, dir)
	}

	w := &Written{JSON: jsonPath}
	if err := writeFile(jsonPath, art.JSON); err != nil {
		return nil, err
	}
	w.Bytes += int64(len(art.JSON))

	if art.Sidecar != nil {
		w.Sidecar = filepath.Join(dir, art.BinFile)
		if err := writeFile(w.Sidecar, art.Sidecar); err != nil {
			return nil, err
		}
		w.Bytes += int64(len(art.Sidecar))
	}

	for _, p := range packed {
		path := filepath.Join(dir, p.Name)
		if _, err := os.Stat(path); err == nil {
			w.Packed = append(w.Packed, path)
			continue
		}
		if err := writeFile(path, p.Data); err != nil {
			return nil, err
		}
		w.Packed = append(w.Packed, path)
		w.Bytes += int64(len(p.Data))
	}
	return w, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fileError(err, path)
	}
	return nil
}

// fileError maps an output failure to a PERMISSION error when access was
// denied and to a WRITE error otherwise.
func fileError(err error, path string) error {
	if stderrors.Is(err, fs.ErrPermission) {
		return errors.Wrap(errors.ErrCodePermission, err, "Permission denied")
	}
	return errors.Wrap(errors.ErrCodeWrite, err, "Cannot write %s", path)
}
