package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/messages"
)

// Exported is the summary of an exported document.
type Exported struct {
	Path          string
	FormatVersion string
	BlendPath     string
	Binaries      []Binary
	Warnings      []messages.Message
	Errors        []messages.Message
	// Counts holds the number of records of every collection, keyed by
	// collection tag.
	Counts map[string]int
}

// Binary is one entry of the binaries table.
type Binary struct {
	// BinFile is the sidecar name relative to the document, empty when the
	// export produced no binary data.
	BinFile string
	Offsets blob.Offsets
}

type exportedHeader struct {
	FormatVersion string             `json:"b4w_format_version"`
	BlendPath     string             `json:"b4w_filepath_blend"`
	Binaries      []binaryEntry      `json:"binaries"`
	Warnings      []messages.Message `json:"b4w_export_warnings"`
	Errors        []messages.Message `json:"b4w_export_errors"`
}

type binaryEntry struct {
	BinFile *string `json:"binfile"`
	Int     int     `json:"int"`
	Float   int     `json:"float"`
	Short   int     `json:"short"`
	UShort  int     `json:"ushort"`
	UChar   int     `json:"uchar"`
}

// ReadDocument decodes an exported document from r.
func ReadDocument(r io.Reader) (*Exported, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read document")
	}
	var h exportedHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}

	e := &Exported{
		FormatVersion: h.FormatVersion,
		BlendPath:     h.BlendPath,
		Warnings:      h.Warnings,
		Errors:        h.Errors,
		Counts:        make(map[string]int, len(document.Tags)),
	}
	for _, b := range h.Binaries {
		bin := Binary{}
		if b.BinFile != nil {
			bin.BinFile = *b.BinFile
		}
		bin.Offsets[blob.Int32] = b.Int
		bin.Offsets[blob.Float32] = b.Float
		bin.Offsets[blob.Int16] = b.Short
		bin.Offsets[blob.Uint16] = b.UShort
		bin.Offsets[blob.Uint8] = b.UChar
		e.Binaries = append(e.Binaries, bin)
	}
	for _, tag := range document.Tags {
		var recs []json.RawMessage
		if msg, ok := raw[tag]; ok {
			if err := json.Unmarshal(msg, &recs); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", tag)
			}
		}
		e.Counts[tag] = len(recs)
	}
	return e, nil
}

// ImportDocument reads the exported document at path.
func ImportDocument(path string) (*Exported, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	e, err := ReadDocument(f)
	if err != nil {
		return nil, err
	}
	e.Path = path
	return e, nil
}

// CheckSidecar loads the sidecar named by the binaries table and verifies
// its header against the document's format version and its size against
// the offsets. It returns nil, nil for documents without binary data.
func (e *Exported) CheckSidecar() (*blob.Sidecar, error) {
	if len(e.Binaries) == 0 || e.Binaries[0].BinFile == "" {
		return nil, nil
	}
	bin := e.Binaries[0]
	path := filepath.Join(filepath.Dir(e.Path), bin.BinFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sidecar %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	sc, err := blob.ReadSidecar(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	want, err := blob.ParseVersion(e.FormatVersion)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "document format version %q", e.FormatVersion)
	}
	if sc.Header != want {
		return nil, errors.New(errors.ErrCodeInvalidVersion,
			"sidecar version %s does not match document version %s", sc.Header, want)
	}
	if err := sc.Check(bin.Offsets); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	return sc, nil
}
