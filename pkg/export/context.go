package export

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/b4wexport/pkg/blob"
	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/geometry"
	"github.com/matzehuels/b4wexport/pkg/identity"
	"github.com/matzehuels/b4wexport/pkg/media"
	"github.com/matzehuels/b4wexport/pkg/messages"
	"github.com/matzehuels/b4wexport/pkg/scene"
)

// ExportContext holds every piece of mutable state of one export
// invocation. It is created by [Exporter.Run], threaded through the walk
// and torn down exactly once when the run ends, successfully or not.
type ExportContext struct {
	ctx    context.Context
	graph  *scene.Graph
	logger *log.Logger
	cooker geometry.Cooker

	doc      *document.Document
	blobs    *blob.Allocator
	sink     *messages.Sink
	packed   *media.Extractor
	resolver media.Resolver

	visited identity.Visited
	records identity.Cache[*document.Record]

	// Chains of blocks currently being walked, innermost last.
	scenes    identity.Stack[*scene.Scene]
	objects   identity.Stack[*scene.Object]
	meshes    identity.Stack[*scene.Mesh]
	materials identity.Stack[*scene.Material]

	fallbacks fallbacks
	// rendered lists textures that render a scene, in export order.
	rendered []*scene.Texture
	vehicles vehicles
	// dupliIDs maps objects to the dupli group numbers they belong to.
	dupliIDs map[scene.ID][]int
	// materialVariants maps a material and mesh layer fingerprint to the
	// identity of the record exported for it.
	materialVariants map[string]string
	// curveObjects collects curve variants created by CURVE modifiers while
	// the current scene is walked.
	curveObjects []document.Ref

	mark   int
	closed bool
}

func newContext(ctx context.Context, g *scene.Graph, opts Options, cooker geometry.Cooker, logger *log.Logger) *ExportContext {
	ec := &ExportContext{
		ctx:      ctx,
		graph:    g,
		logger:   logger,
		cooker:   cooker,
		doc:      document.New(),
		blobs:    &blob.Allocator{},
		sink:     &messages.Sink{},
		packed:   &media.Extractor{Salt: opts.MediaSalt},
		resolver: opts.Resolver,
		dupliIDs: make(map[scene.ID][]int),
		mark:     g.Mark(),

		materialVariants: make(map[string]string),
	}
	ec.vehicles.init()
	if logger.GetLevel() <= log.DebugLevel {
		ec.sink.Observe(mirror(logger))
	}
	return ec
}

// mirror repeats each message in the log as it is recorded.
func mirror(logger *log.Logger) func(messages.Level, messages.Message) {
	return func(level messages.Level, m messages.Message) {
		if level == messages.LevelError {
			logger.Error(m.Text, "scope", m.Scope)
			return
		}
		logger.Warn(m.Text, "scope", m.Scope)
	}
}

// teardown drops the synthesized fallback blocks and clears the walk state.
// A second call is a no-op.
func (ec *ExportContext) teardown() {
	if ec.closed {
		return
	}
	ec.closed = true
	ec.graph.Release(ec.mark)
	ec.fallbacks = fallbacks{}
	ec.visited.Reset()
	ec.records.Reset()
	ec.scenes.Clear()
	ec.objects.Clear()
	ec.meshes.Clear()
	ec.materials.Clear()
	ec.rendered = nil
	ec.vehicles.init()
	ec.curveObjects = nil
	clear(ec.dupliIDs)
	clear(ec.materialVariants)
}

// Closed reports whether the context has been torn down.
func (ec *ExportContext) Closed() bool { return ec.closed }

func (ec *ExportContext) uuid(b scene.Block, salt string) string {
	return identity.OfBlock(ec.graph, b, salt)
}

func (ec *ExportContext) refTo(b scene.Block, salt string) document.Ref {
	return document.RefTo(ec.uuid(b, salt))
}

// register appends rec to the collection of its kind and remembers where
// it came from.
func (ec *ExportContext) register(b scene.Block, rec *document.Record) {
	d := b.Block()
	ec.doc.Add(d.Kind.Tag(), rec)
	ec.records.Register(rec.UUID(), rec, d.ID)
}

// record returns the record registered for a reference.
func (ec *ExportContext) record(ref document.Ref) (*document.Record, bool) {
	return ec.records.Record(ref.UUID)
}

func (ec *ExportContext) warn(format string, args ...any) {
	ec.sink.Warn(fmt.Sprintf(format, args...))
}

func (ec *ExportContext) err(format string, args ...any) {
	ec.sink.Err(fmt.Sprintf(format, args...))
}

// currentMesh returns the mesh whose materials are being walked, or nil
// outside of a mesh.
func (ec *ExportContext) currentMesh() *scene.Mesh {
	m, _ := ec.meshes.Top()
	return m
}

func (ec *ExportContext) currentObjectName() string {
	if o, ok := ec.objects.Top(); ok {
		return o.Name
	}
	return ""
}

// exportable reports whether the reference points at a block that takes
// part in the export.
func exportable[T scene.Block](g *scene.Graph, r scene.Ref) (T, bool) {
	b, ok := scene.Deref[T](g, r)
	if !ok || !b.Block().Exported() {
		var zero T
		return zero, false
	}
	return b, true
}

// validObject is an exportable object of a supported type.
func (ec *ExportContext) validObject(r scene.Ref) (*scene.Object, bool) {
	obj, ok := exportable[*scene.Object](ec.graph, r)
	if !ok || !obj.Type.Supported() {
		return nil, false
	}
	return obj, true
}

func setProps(rec *document.Record, props scene.Props) {
	for _, p := range props {
		rec.Set(p.Key, p.Value)
	}
}
