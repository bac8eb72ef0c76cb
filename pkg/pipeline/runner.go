package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/export"
	"github.com/matzehuels/b4wexport/pkg/geometry"
	pkgio "github.com/matzehuels/b4wexport/pkg/io"
	"github.com/matzehuels/b4wexport/pkg/media"
	"github.com/matzehuels/b4wexport/pkg/observability"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// Runner encapsulates pipeline execution with a cached geometry cooker.
//
// The Runner doesn't store pipeline results. Runs must not overlap: the
// cooker's hit counters are shared.
type Runner struct {
	Cache  cache.Cache
	Cooker *geometry.CachedCooker
	Logger *log.Logger
}

// NewRunner creates a runner that cooks geometry through c.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Cooker: geometry.NewCachedCooker(geometry.DefaultCooker{}, c, keyer, ttl),
		Logger: logger,
	}
}

// Execute runs the complete load → export → assemble → write pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	writeStart := time.Now()
	written, err := r.Write(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Written = written
	result.Stats.WriteTime = time.Since(writeStart)

	r.Logger.Info("wrote export",
		"json", written.JSON,
		"sidecar", written.Sidecar,
		"packed", len(written.Packed),
		"bytes", written.Bytes,
		"duration", result.Stats.WriteTime)
	return result, nil
}

// Build runs every stage except writing. The result's Written is nil.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Blocks = g.Len()
	r.Logger.Info("loaded scene",
		"scene", opts.Input,
		"blocks", g.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Export
	hits, misses := r.Cooker.Stats()
	exportStart := time.Now()
	res, err := r.Export(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	h, m := r.Cooker.Stats()
	result.Export = res
	result.Stats.ExportTime = time.Since(exportStart)
	result.Stats.Records = res.Stats.Records
	result.Stats.Warnings = len(res.Messages.Warnings())
	result.Stats.Errors = len(res.Messages.Errors())
	result.Stats.CacheHits = h - hits
	result.Stats.CacheMisses = m - misses
	r.Logger.Info("exported scene",
		"scenes", res.Stats.Scenes,
		"objects", res.Stats.Objects,
		"records", res.Stats.Records,
		"warnings", result.Stats.Warnings,
		"errors", result.Stats.Errors,
		"duration", result.Stats.ExportTime)
	r.Logger.Debug("geometry cache", "hits", result.Stats.CacheHits, "misses", result.Stats.CacheMisses)

	// Stage 3: Assemble
	assembleStart := time.Now()
	art, err := r.Assemble(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = art
	result.Stats.AssembleTime = time.Since(assembleStart)
	r.Logger.Debug("assembled document",
		"json_bytes", len(art.JSON),
		"sidecar_bytes", len(art.Sidecar),
		"duration", result.Stats.AssembleTime)

	return result, nil
}

// Load reads and resolves the scene file named by opts.Input.
func (r *Runner) Load(ctx context.Context, opts Options) (g *scene.Graph, err error) {
	done := observability.Track(ctx, observability.StageLoad, opts.Input)
	defer func() {
		var blocks int64
		if g != nil {
			blocks = int64(g.Len())
		}
		done(blocks, 0, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pkgio.ImportScene(opts.Input)
}

// Export walks g with the runner's cooker.
func (r *Runner) Export(ctx context.Context, g *scene.Graph, opts Options) (*export.Result, error) {
	opts.SetDefaults()
	e := export.Exporter{Logger: r.Logger, Cooker: r.Cooker}
	return e.Run(ctx, g, export.Options{
		JSONPath:  opts.Output,
		MediaSalt: opts.MediaSalt,
	})
}

// Assemble encodes the export result. In strict mode a result with messages
// yields a *document.StrictError and no artifacts.
func (r *Runner) Assemble(ctx context.Context, res *export.Result, opts Options) (art *document.Artifacts, err error) {
	opts.SetDefaults()
	done := observability.Track(ctx, observability.StageAssemble, opts.Output)
	defer func() {
		var n int64
		if art != nil {
			n = int64(len(art.JSON) + len(art.Sidecar))
		}
		done(n, res.Messages.Len(), err)
	}()
	return opts.Assembler().Assemble(res.Input())
}

// Write writes the assembled artifacts of result to opts.Output.
func (r *Runner) Write(ctx context.Context, result *Result, opts Options) (w *pkgio.Written, err error) {
	opts.SetDefaults()
	if result.Artifacts == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nothing assembled to write")
	}

	done := observability.Track(ctx, observability.StageWrite, opts.Output)
	defer func() {
		var n int64
		if w != nil {
			n = w.Bytes
		}
		done(n, 0, err)
	}()

	var packed []media.File
	if !opts.NoPacked && result.Export != nil {
		packed = result.Export.Packed
	}
	return pkgio.WriteArtifacts(opts.Output, result.Artifacts, packed)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
