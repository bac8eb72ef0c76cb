// Package export walks a scene graph and produces the exported document,
// the binary buffers and the recorded messages.
//
// # Overview
//
// [Exporter.Run] owns one [ExportContext] for the whole invocation. The walk
// starts at every exported scene and follows references downwards: objects,
// their data blocks, materials, textures, images and sounds. Each block is
// serialized at most once per identity; a block reached through a second
// edge resolves to a reference to the first record.
//
// # Recovery
//
// Problems local to one block never abort the walk. A broken modifier is
// removed, a material with an unsupported construct is replaced by the
// fallback material, an object without renderable data becomes an EMPTY.
// Every such decision is recorded in the message sink.
//
// Fatal conditions (no exported scene, a resource outside the output
// volume, broken particle dupli weights, cooker failures) are returned as
// errors. The context is torn down before Run returns in both cases.
package export

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/geometry"
	"github.com/matzehuels/b4wexport/pkg/media"
	"github.com/matzehuels/b4wexport/pkg/messages"
	"github.com/matzehuels/b4wexport/pkg/observability"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Options configures one export run.
type Options struct {
	// JSONPath is where the document will be written.
	JSONPath string
	// Resolver makes resource paths relative to the document. Its JSONDir
	// defaults to the directory of JSONPath and its BlendDir to the
	// directory of the graph's scene file.
	Resolver media.Resolver
	// MediaSalt is mixed into the names of extracted packed files.
	MediaSalt []byte
}

// Exporter runs exports.
type Exporter struct {
	Logger *log.Logger
	// Cooker packs submesh geometry. Nil uses [geometry.DefaultCooker].
	Cooker geometry.Cooker
}

// Result is everything one export produced.
type Result struct {
	Document *document.Document
	Blobs    *blob.Allocator
	Messages *messages.Sink
	// Packed lists the extracted packed media files.
	Packed []media.File
	// BlendPath is the scene file path relative to the document.
	BlendPath string
	JSONPath  string
	Stats     Stats
}

// Stats summarizes a run.
type Stats struct {
	Scenes   int
	Objects  int
	Records  int
	Duration time.Duration
}

// Input returns the assembler input for the result.
func (r *Result) Input() document.Input {
	return document.Input{
		Document:  r.Document,
		Blobs:     r.Blobs,
		Messages:  r.Messages,
		JSONPath:  r.JSONPath,
		BlendPath: r.BlendPath,
	}
}

// Run exports g. Fatal errors are *errors.Error values with a file code or
// *errors.ExportError values; every other problem is recorded as a message
// in the result.
func (e *Exporter) Run(ctx context.Context, g *scene.Graph, opts Options) (res *Result, err error) {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cooker := e.Cooker
	if cooker == nil {
		cooker = geometry.DefaultCooker{}
	}
	opts.Resolver = defaultResolver(opts.Resolver, g.BlendPath, opts.JSONPath)

	start := time.Now()
	done := observability.Track(ctx, observability.StageExport, g.BlendPath)
	defer func() {
		var records int64
		msgs := 0
		if res != nil {
			records, msgs = int64(res.Stats.Records), res.Messages.Len()
		}
		done(records, msgs, err)
	}()

	blendRel, err := blendRelPath(opts.Resolver, g.BlendPath)
	if err != nil {
		return nil, err
	}

	ec := newContext(ctx, g, opts, cooker, logger)
	defer ec.teardown()

	if err := ec.walk(); err != nil {
		logger.Debug("export aborted", "scene", g.BlendPath, "err", err)
		return nil, err
	}

	res = &Result{
		Document:  ec.doc,
		Blobs:     ec.blobs,
		Messages:  ec.sink,
		Packed:    ec.packed.Files(),
		BlendPath: blendRel,
		JSONPath:  opts.JSONPath,
		Stats: Stats{
			Scenes:   len(ec.doc.Collection("scenes")),
			Objects:  len(ec.doc.Collection("objects")),
			Records:  ec.doc.Len(),
			Duration: time.Since(start),
		},
	}
	logger.Debug("walked scene graph",
		"scenes", res.Stats.Scenes,
		"objects", res.Stats.Objects,
		"records", res.Stats.Records,
		"warnings", len(ec.sink.Warnings()),
		"errors", len(ec.sink.Errors()),
		"duration", res.Stats.Duration)
	return res, nil
}

// walk runs the export stages in order: dupli group numbering, scenes,
// post-walk checks and actions.
func (ec *ExportContext) walk() error {
	ec.numberDupliGroups()

	for _, sc := range scene.All[*scene.Scene](ec.graph) {
		if !sc.Exported() {
			continue
		}
		if err := ec.exportScene(sc); err != nil {
			return err
		}
	}
	if len(ec.doc.Collection("scenes")) == 0 {
		return errors.New(errors.ErrCodeNoScene, "No exported scene found. Can't perform export.")
	}

	if err := ec.checkMainScene(); err != nil {
		return err
	}
	ec.checkVehicles()

	return ec.exportActions()
}
