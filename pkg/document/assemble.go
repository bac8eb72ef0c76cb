package document

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/messages"
)

// Binaries is the entry of the binaries table describing the sidecar.
type Binaries struct {
	// BinFile is the sidecar file name relative to the JSON, or "" when no
	// binary data exists.
	BinFile string
	Offsets blob.Offsets
}

// MarshalJSON encodes the entry with one byte offset per buffer.
func (b Binaries) MarshalJSON() ([]byte, error) {
	r := NewRecord()
	if b.BinFile == "" {
		r.Set("binfile", nil)
	} else {
		r.Set("binfile", b.BinFile)
	}
	for _, k := range blob.Kinds {
		r.Set(k.String(), b.Offsets[k])
	}
	return r.MarshalJSON()
}

// Input is everything one export produced.
type Input struct {
	Document *Document
	Blobs    *blob.Allocator
	Messages *messages.Sink
	// JSONPath is where the document will be written; the sidecar name is
	// derived from it.
	JSONPath string
	// BlendPath is the scene file path relative to the JSON.
	BlendPath string
}

// Artifacts are the two encoded outputs.
type Artifacts struct {
	JSON []byte
	// Sidecar is nil when no binary data exists.
	Sidecar []byte
	// BinFile is the sidecar file name, "" when Sidecar is nil.
	BinFile string
}

// Assembler encodes export results into artifacts.
type Assembler struct {
	FormatVersion string
	Pretty        bool
	// Strict withholds the artifacts when any message was recorded.
	Strict bool
}

// StrictError is returned by [Assembler.Assemble] in strict mode when the
// export recorded messages. The messages are carried for display.
type StrictError struct {
	Warnings []messages.Message
	Errors   []messages.Message
}

func (e *StrictError) Error() string { return e.Unwrap().Error() }

// Unwrap returns the coded STRICT error.
func (e *StrictError) Unwrap() error {
	return errors.New(errors.ErrCodeStrict,
		"export recorded %d warnings and %d errors", len(e.Warnings), len(e.Errors))
}

// Root builds the top-level record without encoding it.
func (a Assembler) Root(in Input) *Record {
	root := NewRecord()
	root.Set("b4w_format_version", a.FormatVersion)
	root.Set("b4w_filepath_blend", in.BlendPath)
	for _, tag := range Tags {
		root.Set(tag, in.Document.Collection(tag))
	}

	bin := Binaries{Offsets: in.Blobs.Offsets()}
	if !in.Blobs.Empty() {
		bin.BinFile = SidecarName(in.JSONPath)
	}
	root.Set("binaries", []Binaries{bin})
	root.Set("b4w_export_warnings", in.Messages.Warnings())
	root.Set("b4w_export_errors", in.Messages.Errors())
	return root
}

// Assemble encodes the document and the sidecar.
func (a Assembler) Assemble(in Input) (*Artifacts, error) {
	if a.Strict && !in.Messages.Empty() {
		return nil, &StrictError{Warnings: in.Messages.Warnings(), Errors: in.Messages.Errors()}
	}
	header, err := blob.ParseVersion(a.FormatVersion)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid format version %q", a.FormatVersion)
	}

	data, err := a.Root(in).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	if a.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "indent document")
		}
		data = buf.Bytes()
	}

	out := &Artifacts{JSON: data}
	if !in.Blobs.Empty() {
		var buf bytes.Buffer
		if _, err := in.Blobs.WriteTo(&buf, header); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode sidecar")
		}
		out.Sidecar = buf.Bytes()
		out.BinFile = SidecarName(in.JSONPath)
	}
	return out, nil
}

// SidecarName returns the sidecar file name for a document path: the base
// name with its extension replaced by .bin.
func SidecarName(jsonPath string) string {
	base := filepath.Base(jsonPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".bin"
}

// SidecarPath returns the full sidecar path next to the document.
func SidecarPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".bin"
}
