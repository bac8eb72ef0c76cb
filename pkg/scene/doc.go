// Package scene provides the in-memory authoring scene graph that the
// exporter walks.
//
// # Overview
//
// A modeling application keeps its data as a web of mutually referencing
// data blocks: objects point at meshes, meshes are shared between objects,
// objects parent each other, constraints and proxies point back into the
// same set. This package models that web as an arena: every data block is
// stored once in a [Graph] and addressed by a stable [ID], and every cross
// reference is a [Ref] resolved to an ID when the graph is loaded.
//
// Because references are indices rather than live pointers, cycle detection
// during export is a simple visited-index check and the exporter never has
// to write transient flags onto the blocks it reads.
//
// # Basic Usage
//
// Create a graph with [NewGraph], add blocks with [Graph.Add] and resolve
// name references with [Graph.Resolve]:
//
//	g := scene.NewGraph("/projects/demo/demo.blend")
//	g.Add(&scene.Mesh{Datablock: scene.Datablock{Name: "CubeMesh"}, Polygons: 6})
//	g.Add(&scene.Object{Datablock: scene.Datablock{Name: "Cube"},
//		Type: scene.ObjectMesh, Data: scene.RefTo("CubeMesh")})
//	if err := g.Resolve(); err != nil {
//		return err
//	}
//
// Typed access goes through the generic helpers [Get] and [All]:
//
//	cube, ok := scene.Get[*scene.Object](g, id)
//	for _, m := range scene.All[*scene.Material](g) { ... }
//
// # Properties
//
// Every block carries [Props], an ordered list of opaque key/value pairs. The
// exporter never interprets them; they are copied verbatim, in order, into
// the exported record. Only the fields the exporter branches on (object
// type, modifier targets, node links and so on) are typed.
//
// # Temporary Blocks
//
// The exporter synthesizes fallback blocks (camera, world, material,
// texture) while it runs. [Graph.Mark] and [Graph.Release] bracket such
// additions so teardown can drop them again without disturbing the IDs of
// the loaded blocks.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. One export invocation owns
// the graph for its whole duration.
package scene
