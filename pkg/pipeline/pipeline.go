// Package pipeline runs a complete export: load a scene file, walk it, encode
// the artifacts and write them.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: decode the scene file into a resolved [scene.Graph]
//  2. Export: walk the graph into a document, binary buffers and messages
//  3. Assemble: encode the JSON document and the binary sidecar
//  4. Write: write the document, the sidecar and extracted packed media
//
// Each stage can be run on its own or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, cache.DefaultTTL, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "levels/intro.yaml",
//	    Output: "build/intro.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Written.JSON, result.Stats.Warnings)
//
// Run individual stages:
//
//	g, err := runner.Load(ctx, opts)
//	res, err := runner.Export(ctx, g, opts)
//	art, err := runner.Assemble(ctx, res, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/export"
	pkgio "github.com/matzehuels/b4wexport/pkg/io"
)

// DefaultFormatVersion is the document format version written when none is
// configured.
const DefaultFormatVersion = "6.02"

// Options configures one pipeline run.
type Options struct {
	// Input is the scene file to export.
	Input string
	// Output is the document path. Empty derives it from Input by replacing
	// the extension with .json.
	Output string

	FormatVersion string
	Strict        bool
	Pretty        bool
	// NoPacked skips writing extracted packed media. The document still
	// references the extracted names.
	NoPacked bool
	// MediaSalt is mixed into the names of extracted packed files.
	MediaSalt []byte

	Logger *log.Logger

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Export    *export.Result
	Artifacts *document.Artifacts
	// Written is nil when the write stage was skipped.
	Written *pkgio.Written
	Stats   Stats
}

// Stats contains timing and size information.
type Stats struct {
	Blocks   int
	Records  int
	Warnings int
	Errors   int

	// CacheHits and CacheMisses count cooked submeshes served from and
	// added to the geometry cache during this run.
	CacheHits   int
	CacheMisses int

	LoadTime     time.Duration
	ExportTime   time.Duration
	AssembleTime time.Duration
	WriteTime    time.Duration
}

// Validate checks required fields and applies defaults. It is idempotent.
func (o *Options) Validate() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input scene file is required")
	}
	o.SetDefaults()
	if err := errors.ValidateOutputPath(o.Output); err != nil {
		return err
	}
	if err := errors.ValidateFormatVersion(o.FormatVersion); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills in the output path, the format version and a discard
// logger.
func (o *Options) SetDefaults() {
	if o.Output == "" && o.Input != "" {
		o.Output = DefaultOutput(o.Input)
	}
	if o.FormatVersion == "" {
		o.FormatVersion = DefaultFormatVersion
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// DefaultOutput returns the document path for a scene file: the same path
// with a .json extension.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
}

// Assembler returns the document assembler for the options.
func (o *Options) Assembler() document.Assembler {
	return document.Assembler{
		FormatVersion: o.FormatVersion,
		Pretty:        o.Pretty,
		Strict:        o.Strict,
	}
}
